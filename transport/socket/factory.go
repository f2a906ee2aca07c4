// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package socket

import (
	"context"
	"net"

	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/timeout"
	"github.com/gogama/httpcall/transport"
	"github.com/gogama/httpcall/workpool"
	"go.uber.org/zap"
)

// A Factory creates socket transport calls. It must be created with
// NewFactory. A Factory is safe for concurrent use by multiple
// goroutines.
type Factory struct {
	executor  workpool.Executor
	ownedPool *workpool.Pool
	policy    timeout.Policy
	dialer    *net.Dialer
	logger    *zap.Logger
}

// An Option configures a Factory.
type Option func(*Factory)

// WithExecutor sets the executor on which asynchronous calls run. The
// factory does not close an executor supplied this way.
func WithExecutor(e workpool.Executor) Option {
	if e == nil {
		panic("httpcall/transport/socket: nil executor")
	}
	return func(f *Factory) {
		f.executor = e
	}
}

// WithTimeoutPolicy sets the connect and read timeout policy. The
// default is timeout.DefaultPolicy.
func WithTimeoutPolicy(p timeout.Policy) Option {
	if p == nil {
		panic("httpcall/transport/socket: nil timeout policy")
	}
	return func(f *Factory) {
		f.policy = p
	}
}

// WithDialer sets the dialer used as a template for every connection.
// The dialer's Timeout is overridden by the timeout policy.
func WithDialer(d *net.Dialer) Option {
	if d == nil {
		panic("httpcall/transport/socket: nil dialer")
	}
	return func(f *Factory) {
		f.dialer = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("httpcall/transport/socket: nil logger")
	}
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a socket transport factory. Unless WithExecutor is
// given, the factory owns a workpool.Pool with default settings.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		policy: timeout.DefaultPolicy,
		dialer: &net.Dialer{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.executor == nil {
		f.ownedPool = workpool.New(workpool.WithLogger(f.logger))
		f.executor = f.ownedPool
	}
	return f
}

// NewCall returns a new, unstarted call for r.
func (f *Factory) NewCall(r *request.Request) transport.Call {
	if r == nil {
		panic("httpcall/transport/socket: nil request")
	}
	ctx, cancel := context.WithCancel(r.Context())
	return &call{
		f:      f,
		req:    r,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close releases the factory's own worker pool, if it has one, after
// every queued call has run. Calls enqueued after Close fail.
func (f *Factory) Close() error {
	if f.ownedPool == nil {
		return nil
	}
	return f.ownedPool.Close()
}

// Stats returns a snapshot of the factory's own worker pool. It returns
// the zero value if the factory runs on an external executor.
func (f *Factory) Stats() workpool.Stats {
	if f.ownedPool == nil {
		return workpool.Stats{}
	}
	return f.ownedPool.Stats()
}
