// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package socket

import (
	"bufio"
	"io"
	"net/http"
	"net/textproto"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
)

// readResponse reads the next final (non-1xx) response from br. The
// status line and header block are read line by line and rebuilt
// without malformed fields, then handed to http.ReadResponse, which
// takes care of body framing.
func readResponse(br *bufio.Reader, req *http.Request, logger *zap.Logger) (*http.Response, error) {
	rd := br
	for {
		head, err := readHead(rd, logger)
		if err != nil {
			return nil, err
		}
		rd = bufio.NewReader(io.MultiReader(strings.NewReader(head), rd))
		resp, err := http.ReadResponse(rd, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 || resp.StatusCode == http.StatusSwitchingProtocols {
			return resp, nil
		}
	}
}

func readHead(br *bufio.Reader, logger *zap.Logger) (string, error) {
	tp := textproto.NewReader(br)
	status, err := tp.ReadLine()
	if err != nil {
		return "", unexpectedEOF(err)
	}

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\r\n")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return "", unexpectedEOF(err)
		}
		if line == "" {
			break
		}
		name, value, ok := splitField(line)
		if !ok {
			logger.Debug("dropped malformed header field", zap.String("line", line))
			continue
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	return sb.String(), nil
}

func splitField(line string) (name, value string, ok bool) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	value = strings.Trim(value, " \t")
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		return "", "", false
	}
	return name, value, true
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
