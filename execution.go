// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transient"
	"github.com/gogama/httpcall/transport"
)

// An Execution represents the state of a single call execution, as
// seen by event handlers.
//
// An Execution is created when a call is claimed by Execute or
// Enqueue, updated as the call progresses, and passed to the handlers
// installed in the Client at each Event.
//
// Handlers may set values on an Execution using its SetValue method and
// read them back using the Value method. However, they should treat the
// exported field values as immutable.
type Execution struct {
	// ID uniquely identifies the call instance. Clones get a new ID.
	ID string

	// Async is true if the call was started by Enqueue, false if it
	// was started by Execute.
	Async bool

	// Request is the request being sent. It is nil if the request
	// could not be created.
	Request *request.Request

	// Start is the time the execution started.
	Start time.Time

	// End is the time the execution ended. It contains the zero value
	// until the call's outcome is known.
	End time.Time

	// Raw is the transport response. It is nil until the transport
	// produces a response, and stays nil if the transport failed.
	Raw *transport.Response

	// Err is the error the call ended with, if any. It is only
	// meaningful once the execution has ended.
	Err error

	data context.Context
}

// StatusCode returns the status code of the raw response. If there is
// no raw response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.Raw == nil {
		return 0
	}

	return e.Raw.StatusCode
}

// Header returns the header of the raw response. If there is no raw
// response, the nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Raw == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Raw.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Canceled indicates whether Err indicates the call was canceled.
func (e *Execution) Canceled() bool {
	return transient.Categorize(e.Err) == transient.Canceled
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type to avoid collisions between
// different handlers.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
