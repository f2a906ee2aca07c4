// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"errors"

	"github.com/gogama/httpcall/request"
)

// ErrAlreadyExecuted is the panic value raised when Execute or Enqueue
// is called on a Call which has already been executed. Use Clone to
// make the same request again.
var ErrAlreadyExecuted = errors.New("httpcall: already executed")

// ErrNilRequest is the creation failure recorded when a request
// factory returns neither a request nor an error.
var ErrNilRequest = errors.New("httpcall: request factory returned nil request")

// ErrNilTransportCall is the creation failure recorded when the
// transport factory returns a nil call.
var ErrNilTransportCall = errors.New("httpcall: transport factory returned nil call")

// A Call is a single, possibly deferred, possibly cancelable HTTP
// request whose successful response body is converted into a T.
//
// A Call may be executed exactly once, either synchronously with
// Execute or asynchronously with Enqueue. A second attempt panics with
// ErrAlreadyExecuted. Use Clone to get a fresh Call for the same
// request.
//
// All methods of Call are safe for concurrent use by multiple
// goroutines. In particular, Cancel may be called from any goroutine
// while the call is in flight.
type Call[T any] interface {
	// Request returns the request this call sends, creating it if
	// necessary. Request does not execute the call.
	//
	// If the request cannot be created, the error is recorded and
	// returned by this and every subsequent Request, Execute or
	// Enqueue on the same Call.
	Request() (*request.Request, error)

	// Execute sends the request and blocks until the response is
	// available and converted.
	//
	// A non-2XX status code does not result in an error: the returned
	// Response holds the buffered error body instead. An error is
	// returned if the request could not be created, the transport
	// failed (always a *url.Error), or the response body could not be
	// read or converted.
	Execute() (*Response[T], error)

	// Enqueue sends the request asynchronously and reports the outcome
	// to cb. Exactly one of cb.OnResponse and cb.OnFailure is called,
	// exactly once. If the request cannot be created, cb.OnFailure is
	// called on the calling goroutine before Enqueue returns.
	Enqueue(cb Callback[T])

	// Cancel cancels the call. A call which has not yet performed any
	// I/O never will; a call in flight has its transport operation
	// torn down and fails with an error wrapping context.Canceled.
	// Cancel may be called before, during or after execution and any
	// number of times.
	Cancel()

	// IsCanceled reports whether Cancel has been called.
	IsCanceled() bool

	// IsExecuted reports whether Execute or Enqueue has been called.
	IsExecuted() bool

	// Clone returns a new, unexecuted and uncanceled Call which will
	// make the same request with the same converter.
	Clone() Call[T]
}

// A Callback receives the outcome of Call.Enqueue.
//
// Callback methods run on a transport goroutine, or on the Client's
// callback executor if one is configured. A panic raised by a Callback
// method is recovered and logged.
type Callback[T any] interface {
	// OnResponse is called when an HTTP response was received and
	// converted. The response may have a non-2XX status code.
	OnResponse(call Call[T], resp *Response[T])

	// OnFailure is called when no response could be produced.
	OnFailure(call Call[T], err error)
}

// CallbackFuncs adapts a pair of functions into a Callback. A nil
// function ignores the corresponding outcome.
type CallbackFuncs[T any] struct {
	Response func(call Call[T], resp *Response[T])
	Failure  func(call Call[T], err error)
}

// OnResponse calls f.Response, if it is not nil.
func (f CallbackFuncs[T]) OnResponse(call Call[T], resp *Response[T]) {
	if f.Response != nil {
		f.Response(call, resp)
	}
}

// OnFailure calls f.Failure, if it is not nil.
func (f CallbackFuncs[T]) OnFailure(call Call[T], err error) {
	if f.Failure != nil {
		f.Failure(call, err)
	}
}
