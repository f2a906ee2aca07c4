// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gogama/httpcall/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBytesBody(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		b := NewBytesBody(nil, "")
		require.NotNil(t, b)
		assert.Equal(t, int64(0), b.ContentLength())
		data, err := io.ReadAll(b)
		assert.NoError(t, err)
		assert.Empty(t, data)
		assert.NoError(t, b.Close())
	})
	t.Run("content", func(t *testing.T) {
		b := NewBytesBody([]byte("hello"), "text/plain")
		assert.Equal(t, "text/plain", b.ContentType())
		assert.Equal(t, int64(5), b.ContentLength())
		data, err := io.ReadAll(b)
		assert.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})
}

func TestNewBody(t *testing.T) {
	b := NewBody(io.NopCloser(strings.NewReader("abc")), "text/plain", -1)
	assert.Equal(t, "text/plain", b.ContentType())
	assert.Equal(t, int64(-1), b.ContentLength())
	data, err := io.ReadAll(b)
	assert.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.PanicsWithValue(t, "httpcall/transport: nil body stream", func() {
		NewBody(nil, "", 0)
	})
}

func TestOnceCallback(t *testing.T) {
	var n int
	var mu sync.Mutex
	cb := OnceCallback(func(resp *Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		n++
	})
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb(nil, errors.New("x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, n)
	assert.PanicsWithValue(t, "httpcall/transport: nil callback", func() {
		OnceCallback(nil)
	})
}

func TestWrapError(t *testing.T) {
	r, err := request.New("POST", "http://example.com/x", nil, nil)
	require.NoError(t, err)

	assert.NoError(t, WrapError(r, nil))

	cause := errors.New("boom")
	wrapped := WrapError(r, cause)
	var urlErr *url.Error
	require.ErrorAs(t, wrapped, &urlErr)
	assert.Equal(t, "Post", urlErr.Op)
	assert.Equal(t, "http://example.com/x", urlErr.URL)
	assert.Same(t, cause, urlErr.Err)

	assert.Same(t, wrapped, WrapError(r, wrapped))
}

func TestFactoryFunc(t *testing.T) {
	r, err := request.New("GET", "http://example.com", nil, nil)
	require.NoError(t, err)
	var got *request.Request
	f := FactoryFunc(func(r *request.Request) Call {
		got = r
		return nil
	})
	assert.Nil(t, f.NewCall(r))
	assert.Same(t, r, got)
}
