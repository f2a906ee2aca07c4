// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package socket

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transport"
	"go.uber.org/zap"
)

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
	return c.roundTrip()
}

func (c *call) Enqueue(cb transport.Callback) {
	once := transport.OnceCallback(cb)
	err := c.f.executor.Submit(func() {
		once(c.roundTrip())
	})
	if err != nil {
		once(nil, transport.WrapError(c.req, err))
	}
}

func (c *call) Cancel() {
	if c.canceled.Swap(true) {
		return
	}
	c.f.logger.Debug("socket call cancel", zap.Stringer("request", c.req))
	c.cancel()
}

func (c *call) IsCanceled() bool {
	return c.canceled.Load()
}

func (c *call) roundTrip() (*transport.Response, error) {
	defer c.cancel()

	if c.canceled.Load() {
		return nil, transport.WrapError(c.req, transport.ErrCanceled)
	}

	resp, err := c.do()
	if err != nil {
		if ctxErr := c.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, transport.WrapError(c.req, err)
	}
	return resp, nil
}

func (c *call) do() (*transport.Response, error) {
	u := c.req.URL()
	addr, secure, err := hostPort(u)
	if err != nil {
		return nil, err
	}

	connectTimeout := c.f.policy.Connect(c.req)
	d := *c.f.dialer
	d.Timeout = connectTimeout
	raw, err := d.DialContext(c.ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer raw.Close()
	stop := context.AfterFunc(c.ctx, func() {
		_ = raw.Close()
	})
	defer stop()

	var conn net.Conn = raw
	if secure {
		tlsConn := tls.Client(raw, &tls.Config{ServerName: u.Hostname()})
		hctx := c.ctx
		if connectTimeout > 0 {
			var cancel context.CancelFunc
			hctx, cancel = context.WithTimeout(c.ctx, connectTimeout)
			defer cancel()
		}
		if err = tlsConn.HandshakeContext(hctx); err != nil {
			return nil, err
		}
		conn = tlsConn
	}

	hr, err := c.req.ToHTTP(c.ctx)
	if err != nil {
		return nil, err
	}
	hr.Close = true

	dc := &deadlineConn{Conn: conn, timeout: c.f.policy.Read(c.req)}
	w := bufio.NewWriter(dc)
	if err = hr.Write(w); err != nil {
		return nil, err
	}
	if err = w.Flush(); err != nil {
		return nil, err
	}

	hresp, err := readResponse(bufio.NewReader(dc), hr, c.f.logger)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(hresp.Body)
	_ = hresp.Body.Close()
	if err != nil {
		return nil, err
	}

	proto := hresp.Proto
	if proto == "" {
		proto = transport.DefaultProto
	}
	c.f.logger.Debug("socket round trip",
		zap.Stringer("request", c.req),
		zap.Int("status", hresp.StatusCode),
		zap.Int("bytes", len(data)))
	return &transport.Response{
		Request:    c.req,
		Proto:      proto,
		StatusCode: hresp.StatusCode,
		Status:     reason(hresp),
		Header:     hresp.Header,
		Body:       transport.NewBytesBody(data, hresp.Header.Get("Content-Type")),
	}, nil
}

func hostPort(u *url.URL) (addr string, secure bool, err error) {
	var port string
	switch u.Scheme {
	case "http":
		port = "80"
	case "https":
		port, secure = "443", true
	default:
		return "", false, fmt.Errorf("httpcall/transport/socket: unsupported protocol scheme %q", u.Scheme)
	}
	if p := u.Port(); p != "" {
		port = p
	}
	return net.JoinHostPort(u.Hostname(), port), secure, nil
}

func reason(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

// deadlineConn restarts the read deadline before every read.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}
