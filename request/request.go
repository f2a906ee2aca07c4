// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	nilCtxMsg = "httpcall/request: nil context"
	nilURLMsg = "httpcall/request: nil URL"
)

// A Request is an immutable description of a single HTTP request.
//
// A Request is normally produced by a Factory from call-site arguments
// and handed to a transport, which turns it into network traffic. All
// accessor methods which would otherwise leak a reference type (URL
// and Header) return copies, so a Request may be shared freely among
// goroutines.
//
// Like the http.Request structure, a Request has a context. Transports
// abandon in-flight I/O when the context is done.
type Request struct {
	method string
	url    *urlpkg.URL
	header http.Header
	body   *Body
	ctx    context.Context
}

// New wraps NewWithContext using the background context.
func New(method, url string, header http.Header, body *Body) (*Request, error) {
	return NewWithContext(context.Background(), method, url, header, body)
}

// NewWithContext returns a new Request given a method, URL, optional
// header, and optional body.
//
// An empty method means GET. The header is copied, and every header
// field name must be a valid HTTP token. A nil body means the request
// has no body.
func NewWithContext(ctx context.Context, method, url string, header http.Header, body *Body) (*Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	return build(ctx, method, u, header, body)
}

func build(ctx context.Context, method string, u *urlpkg.URL, header http.Header, body *Body) (*Request, error) {
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("httpcall/request: invalid method %q", method)
	}
	if u == nil {
		return nil, errors.New(nilURLMsg)
	}
	u2 := *u
	u2.Host = removeEmptyPort(u2.Host)
	h := make(http.Header, len(header))
	for name, values := range header {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("httpcall/request: invalid header field name %q", name)
		}
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return &Request{
		method: method,
		url:    &u2,
		header: h,
		body:   body,
		ctx:    ctx,
	}, nil
}

// Method returns the HTTP method (GET, POST, PUT, etc.).
func (r *Request) Method() string {
	return r.method
}

// URL returns a copy of the URL to access.
func (r *Request) URL() *urlpkg.URL {
	u := *r.url
	return &u
}

// Header returns a copy of the request header fields. Names are in
// canonical form, so lookups are case-insensitive when done through
// http.Header's Get and Values methods.
func (r *Request) Header() http.Header {
	return r.header.Clone()
}

// Body returns the request body, or nil if the request has no body.
func (r *Request) Body() *Body {
	return r.body
}

// Context returns the request's context. The returned context is
// always non-nil; it defaults to the background context.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to
// ctx, which must be non-nil.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// String returns the method and URL, for example "GET https://x/y".
func (r *Request) String() string {
	return r.method + " " + r.url.String()
}

// ToHTTP creates an HTTP request corresponding to r with its context
// set to ctx, which may not be nil.
//
// If r has a body of known length, the HTTP request gets a fixed
// Content-Length. Otherwise the request is marked for chunked transfer
// encoding.
func (r *Request) ToHTTP(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header()
	if r.body == nil {
		return req, nil
	}
	rc, err := r.body.Open()
	if err != nil {
		return nil, err
	}
	req.Body = rc
	req.GetBody = r.body.Open
	if ct := r.body.ContentType(); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if n := r.body.ContentLength(); n >= 0 {
		req.ContentLength = n
	} else {
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
	}
	return req, nil
}

// A Body is an immutable request body: a content type, a length (-1 if
// unknown), and a source of content which may be opened repeatedly.
type Body struct {
	contentType   string
	contentLength int64
	content       []byte
	open          func() (io.ReadCloser, error)
}

// NewBody returns a body of known length. Parameter content may be a
// string, []byte, io.Reader, or io.ReadCloser and is buffered using
// BodyBytes.
func NewBody(contentType string, content interface{}) (*Body, error) {
	b, err := BodyBytes(content)
	if err != nil {
		return nil, err
	}
	return &Body{
		contentType:   contentType,
		contentLength: int64(len(b)),
		content:       b,
	}, nil
}

// NewStreamBody returns a body of unknown length whose content is
// produced by open. Transports send a stream body using chunked
// framing.
func NewStreamBody(contentType string, open func() (io.ReadCloser, error)) *Body {
	if open == nil {
		panic("httpcall/request: nil open function")
	}
	return &Body{
		contentType:   contentType,
		contentLength: -1,
		open:          open,
	}
}

// ContentType returns the body's media type, which may be empty.
func (b *Body) ContentType() string {
	return b.contentType
}

// ContentLength returns the body length in bytes, or -1 if unknown.
func (b *Body) ContentLength() int64 {
	return b.contentLength
}

// Open returns a fresh reader positioned at the start of the body.
func (b *Body) Open() (io.ReadCloser, error) {
	if b.open != nil {
		return b.open()
	}
	return io.NopCloser(bytes.NewReader(b.content)), nil
}

func validMethod(method string) bool {
	/*
	     Method         = "OPTIONS"                ; Section 9.2
	                    | "GET"                    ; Section 9.3
	                    | "HEAD"                   ; Section 9.4
	                    | "POST"                   ; Section 9.5
	                    | "PUT"                    ; Section 9.6
	                    | "DELETE"                 ; Section 9.7
	                    | "TRACE"                  ; Section 9.8
	                    | "CONNECT"                ; Section 9.9
	                    | extension-method
	   extension-method = token
	     token          = 1*<any CHAR except CTLs or separators>
	*/
	return httpguts.ValidHeaderFieldName(method)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
