// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogama/httpcall/converter"
	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type state int

const (
	unexecuted state = iota
	executed
)

// call is the Call implementation. It delegates the network I/O to a
// transport call created lazily from the request factory.
//
// The fields guarded by mu are written only while mu is held. The
// canceled flag is set before the transport call is read under mu, and
// read after the transport call is assigned under mu, so a Cancel that
// races with creation is never lost.
type call[T any] struct {
	client  *Client
	factory request.Factory
	args    []interface{}
	conv    converter.Converter[T]
	id      string
	logger  *zap.Logger

	canceled atomic.Bool

	mu          sync.Mutex
	state       state
	raw         transport.Call
	creationErr error
}

func newCall[T any](c *Client, rf request.Factory, conv converter.Converter[T], args []interface{}) *call[T] {
	id := uuid.NewString()
	return &call[T]{
		client:  c,
		factory: rf,
		args:    args,
		conv:    conv,
		id:      id,
		logger:  c.logger.With(zap.String("call_id", id)),
	}
}

func (c *call[T]) Request() (*request.Request, error) {
	c.mu.Lock()
	raw, cancelNow, err := c.rawLocked()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if cancelNow {
		raw.Cancel()
	}
	return raw.Request(), nil
}

func (c *call[T]) Execute() (*Response[T], error) {
	raw, err := c.begin()
	e := c.newExecution(false, raw)
	if err != nil {
		return nil, c.end(e, err)
	}

	c.logger.Debug("call execute", requestFields(raw.Request())...)
	c.client.handlers.run(BeforeExecutionStart, e)
	rawResp, err := raw.Execute()
	if err != nil {
		return nil, c.end(e, err)
	}
	return c.parse(e, rawResp)
}

func (c *call[T]) Enqueue(cb Callback[T]) {
	if cb == nil {
		panic("httpcall: nil callback")
	}

	raw, err := c.begin()
	e := c.newExecution(true, raw)
	if err != nil {
		c.deliver(cb, nil, c.end(e, err), true)
		return
	}

	c.logger.Debug("call enqueue", requestFields(raw.Request())...)
	c.client.handlers.run(BeforeExecutionStart, e)
	raw.Enqueue(func(rawResp *transport.Response, err error) {
		resp, err := c.complete(e, rawResp, err)
		c.deliver(cb, resp, err, false)
	})
}

func (c *call[T]) Cancel() {
	if !c.canceled.Swap(true) {
		c.logger.Debug("call cancel")
	}

	c.mu.Lock()
	raw := c.raw
	c.mu.Unlock()

	if raw != nil {
		raw.Cancel()
	}
}

func (c *call[T]) IsCanceled() bool {
	return c.canceled.Load()
}

func (c *call[T]) IsExecuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == executed
}

func (c *call[T]) Clone() Call[T] {
	clone := newCall(c.client, c.factory, c.conv, c.args)
	c.logger.Debug("call clone", zap.String("clone_id", clone.id))
	return clone
}

// begin claims the call for execution and returns its transport call,
// creating it if necessary. It panics if the call was already claimed.
func (c *call[T]) begin() (transport.Call, error) {
	c.mu.Lock()
	if c.state == executed {
		c.mu.Unlock()
		panic(ErrAlreadyExecuted)
	}
	c.state = executed
	raw, cancelNow, err := c.rawLocked()
	c.mu.Unlock()
	if cancelNow {
		raw.Cancel()
	}
	return raw, err
}

// rawLocked returns the transport call, creating it on first use. A
// creation failure is recorded and replayed on every later use. The
// caller must hold c.mu, and must cancel the returned call after
// releasing c.mu if cancelNow is set: a Cancel that ran before the
// assignment found no transport call to forward to.
func (c *call[T]) rawLocked() (raw transport.Call, cancelNow bool, err error) {
	if c.raw != nil {
		return c.raw, false, nil
	}
	if c.creationErr != nil {
		return nil, false, c.creationErr
	}

	raw, err = c.create()
	if err != nil {
		c.creationErr = err
		c.logger.Debug("call creation failed", zap.Error(err))
		return nil, false, err
	}
	c.raw = raw
	return raw, c.canceled.Load(), nil
}

func (c *call[T]) create() (transport.Call, error) {
	r, err := c.factory(c.args...)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNilRequest
	}
	raw := c.client.transport.NewCall(r)
	if raw == nil {
		return nil, ErrNilTransportCall
	}
	return raw, nil
}

func (c *call[T]) newExecution(async bool, raw transport.Call) *Execution {
	e := &Execution{
		ID:    c.id,
		Async: async,
		Start: time.Now(),
	}
	if raw != nil {
		e.Request = raw.Request()
	}
	return e
}

func (c *call[T]) parse(e *Execution, rawResp *transport.Response) (*Response[T], error) {
	e.Raw = rawResp
	c.client.handlers.run(BeforeParse, e)
	resp, err := parseResponse(rawResp, c.conv)
	if err != nil {
		return nil, c.end(e, err)
	}
	e.Raw = resp.Raw()
	c.end(e, nil)
	return resp, nil
}

func (c *call[T]) end(e *Execution, err error) error {
	e.Err = err
	e.End = time.Now()
	c.client.handlers.run(AfterExecutionEnd, e)
	return err
}

// complete finishes an asynchronous call on the transport goroutine. A
// panicking handler turns into a failure, so the callback still runs
// exactly once.
func (c *call[T]) complete(e *Execution, rawResp *transport.Response, rawErr error) (resp *Response[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked", zap.Any("panic", r), zap.Stack("stack"))
			if rawResp != nil && rawResp.Body != nil {
				_ = rawResp.Body.Close()
			}
			resp, err = nil, fmt.Errorf("httpcall: handler panic: %v", r)
		}
	}()

	if rawErr != nil {
		return nil, c.end(e, rawErr)
	}
	return c.parse(e, rawResp)
}

// deliver reports an outcome to cb, on the client's callback executor
// unless inline is set or there is no executor.
func (c *call[T]) deliver(cb Callback[T], resp *Response[T], err error, inline bool) {
	task := func() {
		defer c.recoverCallback()
		if err != nil {
			cb.OnFailure(c, err)
		} else {
			cb.OnResponse(c, resp)
		}
	}

	ex := c.client.callbackExecutor
	if inline || ex == nil {
		task()
		return
	}
	if subErr := ex.Submit(task); subErr != nil {
		c.logger.Warn("callback executor rejected callback", zap.Error(subErr))
		task()
	}
}

func (c *call[T]) recoverCallback() {
	if r := recover(); r != nil {
		c.logger.Error("callback panicked", zap.Any("panic", r), zap.Stack("stack"))
	}
}

func requestFields(r *request.Request) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method()),
		zap.Stringer("url", r.URL()),
	}
}
