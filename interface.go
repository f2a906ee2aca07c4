// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"net/url"

	"github.com/gogama/httpcall/converter"
	"github.com/gogama/httpcall/request"
)

// Get returns a call which issues a GET to path, resolved against the
// client's base URL, and converts the body with conv.
//
// An invalid path is reported as the call's creation failure. To make
// a request with custom headers, use a request.Template or a custom
// request.Factory with Create.
func Get[T any](c *Client, path string, conv converter.Converter[T]) Call[T] {
	return Create(c, c.shortcut("GET", path, "", nil), conv)
}

// Head returns a call which issues a HEAD to path, resolved against
// the client's base URL.
func Head(c *Client, path string) Call[struct{}] {
	return Create(c, c.shortcut("HEAD", path, "", nil), converter.Discard)
}

// Post returns a call which issues a POST to path, resolved against
// the client's base URL, and converts the body with conv.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser. A reader is consumed when Post is
// called, so that every clone of the call sends the same bytes.
func Post[T any](c *Client, path, contentType string, body interface{}, conv converter.Converter[T]) Call[T] {
	b, err := request.BodyBytes(body)
	if err != nil {
		return Create(c, failing(err), conv)
	}
	return Create(c, c.shortcut("POST", path, contentType, b), conv)
}

// PostForm returns a call which issues a POST to path, resolved
// against the client's base URL, with data's keys and values
// URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
func PostForm[T any](c *Client, path string, data url.Values, conv converter.Converter[T]) Call[T] {
	return Post(c, path, "application/x-www-form-urlencoded", data.Encode(), conv)
}

func (c *Client) shortcut(method, path, contentType string, content []byte) request.Factory {
	return func(_ ...interface{}) (*request.Request, error) {
		u, err := c.resolve(path)
		if err != nil {
			return nil, err
		}
		var body *request.Body
		if content != nil {
			if body, err = request.NewBody(contentType, content); err != nil {
				return nil, err
			}
		}
		return request.New(method, u, nil, body)
	}
}

func failing(err error) request.Factory {
	return func(_ ...interface{}) (*request.Request, error) {
		return nil, err
	}
}
