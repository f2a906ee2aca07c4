// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gogama/httpcall/request"
)

// ErrCanceled is the cause wrapped into the error a transport call
// reports when it was canceled before or during its I/O. It is
// context.Canceled, so errors.Is(err, context.Canceled) holds.
var ErrCanceled = context.Canceled

// A Call performs the network I/O for exactly one Request.
//
// Execute and Enqueue are mutually exclusive and may each be called at
// most once; enforcing that is the caller's job. Cancel and IsCanceled
// may be called at any time from any goroutine.
type Call interface {
	// Request returns the request this call sends.
	Request() *request.Request

	// Execute sends the request and blocks until the response status
	// and headers are available. On success the caller owns the
	// response Body and must close it.
	//
	// Execute returns an error only if no HTTP response was obtained.
	// Any returned error has the type *url.Error.
	Execute() (*Response, error)

	// Enqueue sends the request asynchronously and invokes cb exactly
	// once with the result that Execute would have returned. Enqueue
	// never blocks.
	Enqueue(cb Callback)

	// Cancel cancels the call cooperatively: a call not yet started
	// fails without I/O, and a call in flight has its connection torn
	// down. Cancel is idempotent.
	Cancel()

	// IsCanceled reports whether Cancel has been called.
	IsCanceled() bool
}

// A Callback receives the outcome of Call.Enqueue. Exactly one of resp
// and err is non-nil.
type Callback func(resp *Response, err error)

// A Factory produces a transport Call for a request.
//
// Implementations of Factory must be safe for concurrent use by
// multiple goroutines.
type Factory interface {
	NewCall(r *request.Request) Call
}

// The FactoryFunc type is an adapter to allow the use of ordinary
// functions as transport factories.
type FactoryFunc func(r *request.Request) Call

// NewCall calls f(r).
func (f FactoryFunc) NewCall(r *request.Request) Call {
	return f(r)
}

// A Response is the raw outcome of a transport call: the status line,
// the header fields, and a body stream.
type Response struct {
	// Request is the request that was sent.
	Request *request.Request

	// Proto is the protocol version, for example "HTTP/1.1". Transports
	// fill in DefaultProto if the version cannot be determined.
	Proto string

	// StatusCode is the HTTP status code, for example 200.
	StatusCode int

	// Status is the reason phrase, for example "OK". It may be empty.
	Status string

	// Header contains the response header fields.
	Header http.Header

	// Body is the response body. It is never nil.
	Body Body
}

// DefaultProto is the protocol version assumed when a transport cannot
// report one.
const DefaultProto = "HTTP/1.1"

// A Body is a response body stream which also knows its media type and
// length.
type Body interface {
	io.ReadCloser

	// ContentType returns the media type of the body, which may be
	// empty.
	ContentType() string

	// ContentLength returns the length of the body in bytes, or -1 if
	// unknown.
	ContentLength() int64
}

// NewBody adapts rc into a Body with the given content type and
// length.
func NewBody(rc io.ReadCloser, contentType string, contentLength int64) Body {
	if rc == nil {
		panic("httpcall/transport: nil body stream")
	}
	return &streamBody{ReadCloser: rc, contentType: contentType, contentLength: contentLength}
}

// NewBytesBody returns a fully-buffered Body over b. A nil or empty b
// yields an empty body of length zero.
func NewBytesBody(b []byte, contentType string) Body {
	return &streamBody{
		ReadCloser:    io.NopCloser(bytes.NewReader(b)),
		contentType:   contentType,
		contentLength: int64(len(b)),
	}
}

type streamBody struct {
	io.ReadCloser
	contentType   string
	contentLength int64
}

func (b *streamBody) ContentType() string {
	return b.contentType
}

func (b *streamBody) ContentLength() int64 {
	return b.contentLength
}

// OnceCallback wraps cb so only the first invocation reaches it.
// Transports use it to guarantee exactly-once delivery when a result
// could race with a cancellation.
func OnceCallback(cb Callback) Callback {
	if cb == nil {
		panic("httpcall/transport: nil callback")
	}
	var once sync.Once
	return func(resp *Response, err error) {
		once.Do(func() {
			cb(resp, err)
		})
	}
}

// WrapError wraps err into a *url.Error describing r, unless it
// already is one. A nil err stays nil.
func WrapError(r *request.Request, err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && err == error(urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(r.Method()),
		URL: r.URL().String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
