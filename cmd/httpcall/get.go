// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/gogama/httpcall"
	"github.com/gogama/httpcall/converter"
	"github.com/spf13/cobra"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	var path string
	var async bool
	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "GET a URL, absolute or relative to the base URL, and print the body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.close(); err == nil {
					err = closeErr
				}
			}()

			if path != "" {
				c := httpcall.Get(a.client, args[0], converter.GJSON(path))
				resp, err := await(cmd.Context(), c, async)
				if err != nil {
					return err
				}
				if !resp.IsSuccessful() {
					return responseError(resp)
				}
				_, err = fmt.Fprintln(a.out, resp.Body().String())
				return err
			}

			c := httpcall.Get(a.client, args[0], converter.String)
			resp, err := await(cmd.Context(), c, async)
			if err != nil {
				return err
			}
			if !resp.IsSuccessful() {
				return responseError(resp)
			}
			_, err = fmt.Fprint(a.out, resp.Body())
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "gjson path to extract from a JSON body")
	cmd.Flags().BoolVar(&async, "async", false, "run the call through Enqueue instead of Execute")
	return cmd
}
