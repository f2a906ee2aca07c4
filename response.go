// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gogama/httpcall/converter"
	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transport"
)

// A Response is the outcome of a call which received an HTTP response.
//
// A successful (2XX) Response carries the converted body, unless the
// status is 204 or 205, in which case HasBody reports false. Any other
// Response carries the fully-buffered ErrorBody instead.
type Response[T any] struct {
	raw       *transport.Response
	body      T
	hasBody   bool
	errorBody *ErrorBody
}

// Success returns a successful response with a converted body. It
// panics if raw is nil or its status code is not 2XX.
func Success[T any](body T, raw *transport.Response) *Response[T] {
	checkSuccess(raw)
	return &Response[T]{raw: raw, body: body, hasBody: true}
}

// NoContent returns a successful response without a body. It panics
// if raw is nil or its status code is not 2XX.
func NoContent[T any](raw *transport.Response) *Response[T] {
	checkSuccess(raw)
	return &Response[T]{raw: raw}
}

// Error returns an unsuccessful response. It panics if body or raw is
// nil, or if the status code of raw is 2XX.
func Error[T any](body *ErrorBody, raw *transport.Response) *Response[T] {
	if body == nil {
		panic("httpcall: nil error body")
	}
	if raw == nil {
		panic("httpcall: nil raw response")
	}
	if isSuccess(raw.StatusCode) {
		panic(fmt.Sprintf("httpcall: error response with successful status %d", raw.StatusCode))
	}
	return &Response[T]{raw: raw, errorBody: body}
}

func checkSuccess(raw *transport.Response) {
	if raw == nil {
		panic("httpcall: nil raw response")
	}
	if !isSuccess(raw.StatusCode) {
		panic(fmt.Sprintf("httpcall: successful response with status %d", raw.StatusCode))
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// Raw returns the transport response. Its body has been detached:
// reading it fails with ErrBodyConsumed.
func (r *Response[T]) Raw() *transport.Response {
	return r.raw
}

// Code returns the HTTP status code.
func (r *Response[T]) Code() int {
	return r.raw.StatusCode
}

// Message returns the HTTP status reason phrase, which may be empty.
func (r *Response[T]) Message() string {
	return r.raw.Status
}

// Header returns the response header.
func (r *Response[T]) Header() http.Header {
	return r.raw.Header
}

// Request returns the request which produced the response.
func (r *Response[T]) Request() *request.Request {
	return r.raw.Request
}

// IsSuccessful reports whether the status code is in the range
// [200, 300).
func (r *Response[T]) IsSuccessful() bool {
	return isSuccess(r.raw.StatusCode)
}

// Body returns the converted body of a successful response. It returns
// the zero value of T if HasBody is false.
func (r *Response[T]) Body() T {
	return r.body
}

// HasBody reports whether Body holds a converted value.
func (r *Response[T]) HasBody() bool {
	return r.hasBody
}

// ErrorBody returns the buffered body of an unsuccessful response, or
// nil for a successful one.
func (r *Response[T]) ErrorBody() *ErrorBody {
	return r.errorBody
}

// String returns the status line of the response.
func (r *Response[T]) String() string {
	return fmt.Sprintf("%s %d %s", r.raw.Proto, r.raw.StatusCode, r.raw.Status)
}

// An ErrorBody is the fully-buffered body of an unsuccessful response.
type ErrorBody struct {
	contentType string
	data        []byte
}

// NewErrorBody returns an error body holding data.
func NewErrorBody(contentType string, data []byte) *ErrorBody {
	return &ErrorBody{contentType: contentType, data: data}
}

// ContentType returns the media type of the body, which may be empty.
func (b *ErrorBody) ContentType() string {
	return b.contentType
}

// Bytes returns the body content.
func (b *ErrorBody) Bytes() []byte {
	return b.data
}

// String returns the body content as a string.
func (b *ErrorBody) String() string {
	return string(b.data)
}

// ConvertError decodes the error body of r with conv, for APIs which
// describe failures in a structured body. It panics if r is
// successful.
func ConvertError[E, T any](r *Response[T], conv converter.Converter[E]) (E, error) {
	if r.errorBody == nil {
		panic("httpcall: response has no error body")
	}
	return conv.Convert(bytes.NewReader(r.errorBody.data))
}
