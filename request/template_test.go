// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://api.example.com/v2/movie/"

func TestTemplate_Factory(t *testing.T) {
	t.Run("query parameters", func(t *testing.T) {
		f, err := Template{Path: "top250", Query: []string{"start", "count"}}.Factory(baseURL)
		require.NoError(t, err)
		r, err := f(0, 10)
		require.NoError(t, err)
		assert.Equal(t, "GET", r.Method())
		assert.Equal(t, "https://api.example.com/v2/movie/top250?count=10&start=0", r.URL().String())
	})
	t.Run("nil query argument omitted", func(t *testing.T) {
		f, err := Template{Path: "top250", Query: []string{"start", "count"}}.Factory(baseURL)
		require.NoError(t, err)
		r, err := f(nil, 5)
		require.NoError(t, err)
		assert.Equal(t, "count=5", r.URL().RawQuery)
	})
	t.Run("path placeholders", func(t *testing.T) {
		f, err := Template{Method: "DELETE", Path: "subject/{id}/tags/{tag}"}.Factory(baseURL)
		require.NoError(t, err)
		r, err := f(1291546, "a b")
		require.NoError(t, err)
		assert.Equal(t, "DELETE", r.Method())
		assert.Equal(t, "/v2/movie/subject/1291546/tags/a%20b", r.URL().EscapedPath())
	})
	t.Run("absolute path", func(t *testing.T) {
		f, err := Template{Path: "/ping"}.Factory(baseURL)
		require.NoError(t, err)
		r, err := f()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/ping", r.URL().String())
	})
	t.Run("body and header", func(t *testing.T) {
		f, err := Template{
			Method:      "POST",
			Path:        "subject/{id}/rate",
			Header:      http.Header{"X-Api-Key": {"k"}},
			ContentType: "application/json",
		}.Factory(baseURL)
		require.NoError(t, err)
		r, err := f(7, `{"stars":5}`)
		require.NoError(t, err)
		assert.Equal(t, "k", r.Header().Get("X-Api-Key"))
		require.NotNil(t, r.Body())
		assert.Equal(t, "application/json", r.Body().ContentType())
		assert.Equal(t, int64(11), r.Body().ContentLength())
	})
	t.Run("prebuilt body", func(t *testing.T) {
		f, err := Template{Method: "PUT", Path: "blob", ContentType: "application/octet-stream"}.Factory(baseURL)
		require.NoError(t, err)
		b := NewStreamBody("application/octet-stream", func() (io.ReadCloser, error) { return nil, nil })
		r, err := f(b)
		require.NoError(t, err)
		assert.Same(t, b, r.Body())
	})
	t.Run("wrong argument count", func(t *testing.T) {
		f, err := Template{Path: "top250", Query: []string{"start", "count"}}.Factory(baseURL)
		require.NoError(t, err)
		r, err := f(1)
		assert.Nil(t, r)
		assert.EqualError(t, err, "httpcall/request: GET top250 expects 2 arguments, got 1")
	})
	t.Run("context", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, 1)
		f, err := Template{Path: "x"}.FactoryWithContext(ctx, baseURL)
		require.NoError(t, err)
		r, err := f()
		require.NoError(t, err)
		assert.Same(t, ctx, r.Context())
	})
}

func TestTemplate_FactoryErrors(t *testing.T) {
	testCases := []struct {
		name    string
		tmpl    Template
		base    string
		message string
	}{
		{"relative base", Template{Path: "x"}, "/relative", `httpcall/request: base URL "/relative" is not absolute`},
		{"invalid method", Template{Method: "A B"}, baseURL, `httpcall/request: invalid method "A B"`},
		{"unbalanced open", Template{Path: "a/{id"}, baseURL, `httpcall/request: unbalanced '{' in path "a/{id"`},
		{"unbalanced close", Template{Path: "a/id}"}, baseURL, `httpcall/request: unbalanced '}' in path "a/id}"`},
		{"empty placeholder", Template{Path: "a/{}"}, baseURL, `httpcall/request: empty placeholder in path "a/{}"`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			f, err := testCase.tmpl.Factory(testCase.base)
			assert.Nil(t, f)
			assert.EqualError(t, err, testCase.message)
		})
	}
	t.Run("nil context", func(t *testing.T) {
		f, err := Template{}.FactoryWithContext(nil, baseURL)
		assert.Nil(t, f)
		assert.EqualError(t, err, nilCtxMsg)
	})
}
