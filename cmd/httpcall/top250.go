// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/gogama/httpcall"
	"github.com/gogama/httpcall/converter"
	"github.com/gogama/httpcall/request"
	"github.com/spf13/cobra"
)

// movieList is the top250 response document.
type movieList struct {
	Start    int     `json:"start"`
	Count    int     `json:"count"`
	Total    int     `json:"total"`
	Title    string  `json:"title"`
	Subjects []movie `json:"subjects"`
}

type movie struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Rating struct {
		Average float64 `json:"average"`
	} `json:"rating"`
}

var top250 = request.Template{
	Method: "GET",
	Path:   "top250",
	Query:  []string{"start", "count"},
}

func newTop250Cmd(opts *rootOptions) *cobra.Command {
	var start, count int
	var async bool
	cmd := &cobra.Command{
		Use:   "top250",
		Short: "List a page of the top 250 movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if start < 0 || count < 0 {
				return fmt.Errorf("start and count must not be negative")
			}
			a, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.close(); err == nil {
					err = closeErr
				}
			}()

			rf, err := a.client.Template(top250)
			if err != nil {
				return err
			}
			c := httpcall.Create(a.client, rf, converter.JSON[movieList](), start, count)
			resp, err := await(cmd.Context(), c, async)
			if err != nil {
				return err
			}
			if !resp.IsSuccessful() {
				return responseError(resp)
			}

			list := resp.Body()
			for i, m := range list.Subjects {
				line := fmt.Sprintf("%3d. %s", list.Start+i+1, m.Title)
				if m.Year != "" {
					line += fmt.Sprintf(" (%s)", m.Year)
				}
				if m.Rating.Average > 0 {
					line += fmt.Sprintf(" %.1f", m.Rating.Average)
				}
				if _, err = fmt.Fprintln(a.out, line); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(a.out, "%d of %d\n", len(list.Subjects), list.Total)
			return err
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "index of the first movie")
	cmd.Flags().IntVar(&count, "count", 10, "number of movies")
	cmd.Flags().BoolVar(&async, "async", false, "run the call through Enqueue instead of Execute")
	return cmd
}
