// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restycall

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gogama/httpcall/request"
	"github.com/gogama/httpcall/transient"
	"github.com/gogama/httpcall/transport"
	"github.com/gogama/httpcall/workpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hello":
			assert.Equal(t, []string{"a", "b"}, r.Header.Values("X-Multi"))
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello, world"))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("nope"))
		case "/echo":
			w.Header().Set("X-Content-Length", strconv.FormatInt(r.ContentLength, 10))
			w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
			_, _ = io.Copy(w, r.Body)
		}
	}))
	defer server.Close()
	f := NewFactory(nil)

	t.Run("ok", func(t *testing.T) {
		r, err := request.New("GET", server.URL+"/hello", http.Header{"X-Multi": {"a", "b"}}, nil)
		require.NoError(t, err)
		c := f.NewCall(r)
		assert.Same(t, r, c.Request())

		resp, err := c.Execute()

		require.NoError(t, err)
		assert.Same(t, r, resp.Request)
		assert.Equal(t, "HTTP/1.1", resp.Proto)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "OK", resp.Status)
		assert.Equal(t, "text/plain", resp.Body.ContentType())
		assert.Equal(t, int64(12), resp.Body.ContentLength())
		assert.Equal(t, "hello, world", readBody(t, resp))
	})
	t.Run("error status is a response", func(t *testing.T) {
		r, err := request.New("GET", server.URL+"/missing", nil, nil)
		require.NoError(t, err)

		resp, err := f.NewCall(r).Execute()

		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "nope", readBody(t, resp))
	})
	t.Run("known length body", func(t *testing.T) {
		b, err := request.NewBody("application/json", `{"a":1}`)
		require.NoError(t, err)
		r, err := request.New("POST", server.URL+"/echo", nil, b)
		require.NoError(t, err)

		resp, err := f.NewCall(r).Execute()

		require.NoError(t, err)
		assert.Equal(t, "7", resp.Header.Get("X-Content-Length"))
		assert.Equal(t, "application/json", resp.Body.ContentType())
		assert.Equal(t, `{"a":1}`, readBody(t, resp))
	})
	t.Run("stream body", func(t *testing.T) {
		b := request.NewStreamBody("text/plain", func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("streamed")), nil
		})
		r, err := request.New("PUT", server.URL+"/echo", nil, b)
		require.NoError(t, err)

		resp, err := f.NewCall(r).Execute()

		require.NoError(t, err)
		assert.Equal(t, "-1", resp.Header.Get("X-Content-Length"))
		assert.Equal(t, "streamed", readBody(t, resp))
	})
	t.Run("enqueue", func(t *testing.T) {
		r, err := request.New("GET", server.URL+"/missing", nil, nil)
		require.NoError(t, err)
		ch := make(chan *transport.Response, 1)

		f.NewCall(r).Enqueue(func(resp *transport.Response, err error) {
			assert.NoError(t, err)
			ch <- resp
		})

		select {
		case resp := <-ch:
			assert.Equal(t, 404, resp.StatusCode)
			_ = resp.Body.Close()
		case <-time.After(5 * time.Second):
			t.Fatal("callback not invoked")
		}
	})
}

func TestFactory_Failures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := l.Addr().String()
		require.NoError(t, l.Close())
		r, err := request.New("GET", "http://"+addr+"/", nil, nil)
		require.NoError(t, err)
		done := make(chan error, 1)

		NewFactory(resty.New()).NewCall(r).Enqueue(func(resp *transport.Response, err error) {
			assert.Nil(t, resp)
			done <- err
		})

		err = <-done
		var urlErr *url.Error
		require.ErrorAs(t, err, &urlErr)
		assert.Equal(t, transient.ConnRefused, transient.Categorize(err))
	})
	t.Run("executor rejects", func(t *testing.T) {
		p := workpool.New()
		require.NoError(t, p.Close())
		r, err := request.New("GET", "http://example.com/", nil, nil)
		require.NoError(t, err)
		var got error

		NewFactory(nil, WithExecutor(p)).NewCall(r).Enqueue(func(resp *transport.Response, err error) {
			got = err
		})

		assert.ErrorIs(t, got, workpool.ErrClosed)
	})
}

func TestFactory_Cancel(t *testing.T) {
	var hits atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		arrived <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)
	f := NewFactory(nil)

	t.Run("before execute", func(t *testing.T) {
		r, err := request.New("GET", server.URL, nil, nil)
		require.NoError(t, err)
		c := f.NewCall(r)
		c.Cancel()
		c.Cancel()

		resp, err := c.Execute()

		assert.Nil(t, resp)
		assert.True(t, c.IsCanceled())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), hits.Load())
	})
	t.Run("in flight", func(t *testing.T) {
		r, err := request.New("GET", server.URL, nil, nil)
		require.NoError(t, err)
		c := f.NewCall(r)
		done := make(chan error, 1)
		c.Enqueue(func(resp *transport.Response, err error) {
			done <- err
		})
		<-arrived

		c.Cancel()

		select {
		case err = <-done:
			assert.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, transient.Canceled, transient.Categorize(err))
		case <-time.After(5 * time.Second):
			t.Fatal("canceled call did not complete")
		}
	})
}

func TestFactory_Options(t *testing.T) {
	assert.PanicsWithValue(t, "httpcall/transport/restycall: nil executor", func() { WithExecutor(nil) })
	assert.PanicsWithValue(t, "httpcall/transport/restycall: nil logger", func() { WithLogger(nil) })
	client := resty.New()
	f := NewFactory(client, WithExecutor(workpool.Inline))
	assert.Same(t, client, f.Client())
	assert.NotNil(t, NewFactory(nil).Client())
	assert.PanicsWithValue(t, "httpcall/transport/restycall: nil request", func() { f.NewCall(nil) })
}

func readBody(t *testing.T, resp *transport.Response) string {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
