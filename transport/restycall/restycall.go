// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package restycall provides a transport.Factory backed by a go-resty
// client. The client's own configuration (timeouts, proxies, TLS,
// redirect policy) applies to every call.
//
// Unlike the socket transport, the response body is not buffered: the
// transport.Response body streams directly from the connection, and
// closing it releases the call.
package restycall

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transport"
	"github.com/gogama/httpcall/workpool"
	"go.uber.org/zap"
)

// A Factory creates calls that run on a resty client. It must be
// created with NewFactory and is safe for concurrent use by multiple
// goroutines.
type Factory struct {
	client   *resty.Client
	executor workpool.Executor
	logger   *zap.Logger
}

// An Option configures a Factory.
type Option func(*Factory)

// WithExecutor sets the executor on which asynchronous calls run. The
// default is workpool.Go.
func WithExecutor(e workpool.Executor) Option {
	if e == nil {
		panic("httpcall/transport/restycall: nil executor")
	}
	return func(f *Factory) {
		f.executor = e
	}
}

// WithLogger sets the logger. If NewFactory creates its own resty
// client, the client logs through it as well.
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("httpcall/transport/restycall: nil logger")
	}
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory sending requests through client. If
// client is nil, a new client from resty.New is used.
func NewFactory(client *resty.Client, opts ...Option) *Factory {
	f := &Factory{
		client:   client,
		executor: workpool.Go,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = resty.New().SetLogger(f.logger.Sugar())
	}
	return f
}

// Client returns the underlying resty client.
func (f *Factory) Client() *resty.Client {
	return f.client
}

// NewCall returns a new, unstarted call for r.
func (f *Factory) NewCall(r *request.Request) transport.Call {
	if r == nil {
		panic("httpcall/transport/restycall: nil request")
	}
	ctx, cancel := context.WithCancel(r.Context())
	return &call{
		f:      f,
		req:    r,
		ctx:    ctx,
		cancel: cancel,
	}
}

type call struct {
	f        *Factory
	req      *request.Request
	ctx      context.Context
	cancel   context.CancelFunc
	canceled atomic.Bool
}

func (c *call) Request() *request.Request {
	return c.req
}

func (c *call) Execute() (*transport.Response, error) {
	resp, err := c.execute()
	if err != nil {
		if ctxErr := c.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.cancel()
		return nil, transport.WrapError(c.req, err)
	}
	return resp, nil
}

func (c *call) Enqueue(cb transport.Callback) {
	once := transport.OnceCallback(cb)
	err := c.f.executor.Submit(func() {
		once(c.Execute())
	})
	if err != nil {
		c.cancel()
		once(nil, transport.WrapError(c.req, err))
	}
}

func (c *call) Cancel() {
	if c.canceled.Swap(true) {
		return
	}
	c.f.logger.Debug("resty call cancel", zap.Stringer("request", c.req))
	c.cancel()
}

func (c *call) IsCanceled() bool {
	return c.canceled.Load()
}

func (c *call) execute() (*transport.Response, error) {
	if c.canceled.Load() {
		return nil, transport.ErrCanceled
	}

	rr := c.f.client.R().
		SetContext(c.ctx).
		SetDoNotParseResponse(true)
	for name, values := range c.req.Header() {
		for _, v := range values {
			rr.Header.Add(name, v)
		}
	}

	if b := c.req.Body(); b != nil {
		rc, err := b.Open()
		if err != nil {
			return nil, err
		}
		if b.ContentLength() >= 0 {
			data, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return nil, err
			}
			rr.SetBody(data)
		} else {
			rr.SetBody(rc)
		}
		if ct := b.ContentType(); ct != "" {
			rr.SetHeader("Content-Type", ct)
		}
	}

	resp, err := rr.Execute(c.req.Method(), c.req.URL().String())
	if err != nil {
		if resp != nil && resp.RawResponse != nil {
			_ = resp.RawBody().Close()
		}
		return nil, err
	}

	raw := resp.RawResponse
	proto := raw.Proto
	if proto == "" {
		proto = transport.DefaultProto
	}
	c.f.logger.Debug("resty round trip",
		zap.Stringer("request", c.req),
		zap.Int("status", raw.StatusCode),
		zap.Duration("time", resp.Time()))
	return &transport.Response{
		Request:    c.req,
		Proto:      proto,
		StatusCode: raw.StatusCode,
		Status:     strings.TrimSpace(strings.TrimPrefix(raw.Status, strconv.Itoa(raw.StatusCode))),
		Header:     raw.Header,
		Body: transport.NewBody(
			&releasingBody{ReadCloser: resp.RawBody(), release: c.cancel},
			raw.Header.Get("Content-Type"),
			raw.ContentLength),
	}, nil
}

// releasingBody cancels the call context once the body is closed.
type releasingBody struct {
	io.ReadCloser
	release context.CancelFunc
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}
