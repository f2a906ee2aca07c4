// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"errors"
	"io"

	"github.com/gogama/httpcall/converter"
	"github.com/gogama/httpcall/transport"
)

// ErrBodyConsumed is returned when reading the body of a raw response
// after the call has taken ownership of it.
var ErrBodyConsumed = errors.New("httpcall: cannot read from a converted response body")

// parseResponse turns a raw transport response into a typed one. The
// raw body is always closed before parseResponse returns.
func parseResponse[T any](raw *transport.Response, conv converter.Converter[T]) (*Response[T], error) {
	body := raw.Body
	if body == nil {
		body = transport.NewBytesBody(nil, "")
	}
	defer func() {
		_ = body.Close()
	}()

	detached := *raw
	detached.Body = &noContentBody{
		contentType:   body.ContentType(),
		contentLength: body.ContentLength(),
	}

	code := raw.StatusCode
	if !isSuccess(code) {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		return Error[T](NewErrorBody(body.ContentType(), data), &detached), nil
	}

	if code == 204 || code == 205 {
		return NoContent[T](&detached), nil
	}

	cr := &catchingReader{r: body}
	v, err := conv.Convert(cr)
	if err != nil {
		if cr.err != nil {
			return nil, cr.err
		}
		return nil, err
	}
	return Success(v, &detached), nil
}

// noContentBody stands in for a body the pipeline has consumed. It
// keeps the metadata but has no content.
type noContentBody struct {
	contentType   string
	contentLength int64
}

func (b *noContentBody) Read(_ []byte) (int, error) {
	return 0, ErrBodyConsumed
}

func (b *noContentBody) Close() error {
	return nil
}

func (b *noContentBody) ContentType() string {
	return b.contentType
}

func (b *noContentBody) ContentLength() int64 {
	return b.contentLength
}

// catchingReader records the first read error other than io.EOF, so
// the pipeline can tell an I/O failure apart from a converter failure
// the I/O failure caused.
type catchingReader struct {
	r   io.Reader
	err error
}

func (c *catchingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil && err != io.EOF && c.err == nil {
		c.err = err
	}
	return n, err
}
