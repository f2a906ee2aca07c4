// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gogama/httpcall/converter"
	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transport"
	"github.com/gogama/httpcall/workpool"
	"go.uber.org/zap"
)

var emptyHandlers = HandlerGroup{}

// A Client creates calls against one base URL using one transport.
//
// A Client holds no per-call state. It must be created with New and is
// safe for concurrent use by multiple goroutines. Because the
// transport may hold resources (worker pools, cached connections),
// Client instances should be reused instead of created as needed.
type Client struct {
	baseURL          *url.URL
	transport        transport.Factory
	handlers         *HandlerGroup
	logger           *zap.Logger
	callbackExecutor workpool.Executor
}

// An Option configures a Client.
type Option func(*Client)

// WithHandlers installs a handler group whose handlers run at each
// Event of every call the client creates.
func WithHandlers(g *HandlerGroup) Option {
	if g == nil {
		panic("httpcall: nil handler group")
	}
	return func(c *Client) {
		c.handlers = g
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("httpcall: nil logger")
	}
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCallbackExecutor sets the executor on which Enqueue callbacks
// run. By default callbacks run on the transport goroutine which
// completed the call. If the executor rejects a callback, it runs on
// the transport goroutine instead.
func WithCallbackExecutor(e workpool.Executor) Option {
	if e == nil {
		panic("httpcall: nil callback executor")
	}
	return func(c *Client) {
		c.callbackExecutor = e
	}
}

// New creates a client for the API rooted at baseURL, which must be an
// absolute URL whose path ends in "/". Relative request paths resolve
// against it.
func New(baseURL string, tf transport.Factory, opts ...Option) (*Client, error) {
	if tf == nil {
		panic("httpcall: nil transport factory")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("httpcall: base URL %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		return nil, fmt.Errorf("httpcall: base URL %q must end in /", baseURL)
	}

	c := &Client{
		baseURL:   u,
		transport: tf,
		handlers:  &emptyHandlers,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the client's base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Transport returns the client's transport factory.
func (c *Client) Transport() transport.Factory {
	return c.transport
}

// Template returns a request factory which builds requests from t
// against the client's base URL.
func (c *Client) Template(t request.Template) (request.Factory, error) {
	return t.Factory(c.baseURL.String())
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Create returns a new unexecuted call which, when executed, builds its
// request by invoking rf with args, sends it through c's transport,
// and converts a successful response body with conv.
//
// The request factory is invoked lazily, at most once per Call, by the
// first of Request, Execute or Enqueue.
func Create[T any](c *Client, rf request.Factory, conv converter.Converter[T], args ...interface{}) Call[T] {
	if c == nil {
		panic("httpcall: nil client")
	}
	if rf == nil {
		panic("httpcall: nil request factory")
	}
	if conv == nil {
		panic("httpcall: nil converter")
	}
	return newCall(c, rf, conv, append([]interface{}(nil), args...))
}
