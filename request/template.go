// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"strings"
)

// A Factory turns call-site arguments into a Request.
//
// A Factory must be a pure function of its arguments and safe for
// concurrent use by multiple goroutines. The httpcall package invokes
// the factory at most once per call instance, and remembers any error
// it returns.
type Factory func(args ...interface{}) (*Request, error)

// A Template describes a family of requests against a base URL whose
// path, query string, and body are filled in from positional
// arguments.
//
// Arguments are bound in this order: first one argument for each
// "{name}" placeholder in Path, in order of appearance; then one
// argument for each name in Query; then, if ContentType is not empty,
// one argument for the body. A nil query argument omits the parameter.
// Path and query arguments are formatted with fmt.Sprint, and path
// arguments are escaped with url.PathEscape. The body argument may be
// anything accepted by NewBody, or a *Body.
//
// For example, the following template produces requests such as
// "GET https://api.example.com/v2/movie/top250?start=0&count=10":
//
//	t := request.Template{
//		Method: "GET",
//		Path:   "top250",
//		Query:  []string{"start", "count"},
//	}
//	f, err := t.Factory("https://api.example.com/v2/movie/")
//	...
//	r, err := f(0, 10)
type Template struct {
	// Method is the HTTP method. An empty string means GET.
	Method string

	// Path is resolved against the base URL. It may contain "{name}"
	// placeholders.
	Path string

	// Query lists the query parameter names bound from arguments.
	Query []string

	// Header contains fixed header fields sent with every request.
	Header http.Header

	// ContentType, if not empty, means the final argument is the
	// request body.
	ContentType string
}

// Factory validates t and returns a Factory which builds requests
// against baseURL using the background context.
func (t Template) Factory(baseURL string) (Factory, error) {
	return t.FactoryWithContext(context.Background(), baseURL)
}

// FactoryWithContext is like Factory but the requests produced carry
// ctx.
func (t Template) FactoryWithContext(ctx context.Context, baseURL string) (Factory, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	base, err := urlpkg.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("httpcall/request: base URL %q is not absolute", baseURL)
	}
	if !validMethod(methodOrGet(t.Method)) {
		return nil, fmt.Errorf("httpcall/request: invalid method %q", t.Method)
	}
	segments, params, err := splitPath(t.Path)
	if err != nil {
		return nil, err
	}
	query := append([]string(nil), t.Query...)
	header := t.Header.Clone()
	n := len(params) + len(query)
	if t.ContentType != "" {
		n++
	}
	return func(args ...interface{}) (*Request, error) {
		if len(args) != n {
			return nil, fmt.Errorf("httpcall/request: %s %s expects %d arguments, got %d",
				methodOrGet(t.Method), t.Path, n, len(args))
		}
		var path strings.Builder
		for i, seg := range segments {
			path.WriteString(seg)
			if i < len(params) {
				path.WriteString(urlpkg.PathEscape(fmt.Sprint(args[i])))
			}
		}
		rel, err := urlpkg.Parse(path.String())
		if err != nil {
			return nil, err
		}
		u := base.ResolveReference(rel)
		q := u.Query()
		for i, name := range query {
			arg := args[len(params)+i]
			if arg == nil {
				continue
			}
			q.Add(name, fmt.Sprint(arg))
		}
		u.RawQuery = q.Encode()
		var body *Body
		if t.ContentType != "" {
			body, err = toBody(t.ContentType, args[n-1])
			if err != nil {
				return nil, err
			}
		}
		return build(ctx, t.Method, u, header, body)
	}, nil
}

func toBody(contentType string, arg interface{}) (*Body, error) {
	if b, ok := arg.(*Body); ok {
		return b, nil
	}
	return NewBody(contentType, arg)
}

// splitPath splits path around "{name}" placeholders. The returned
// segments always number one more than the placeholder names.
func splitPath(path string) (segments, params []string, err error) {
	rest := path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, nil, fmt.Errorf("httpcall/request: unbalanced '}' in path %q", path)
			}
			segments = append(segments, rest)
			return segments, params, nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, nil, fmt.Errorf("httpcall/request: unbalanced '{' in path %q", path)
		}
		name := rest[open+1 : open+end]
		if name == "" {
			return nil, nil, fmt.Errorf("httpcall/request: empty placeholder in path %q", path)
		}
		segments = append(segments, rest[:open])
		params = append(params, name)
		rest = rest[open+end+1:]
	}
}

func methodOrGet(method string) string {
	if method == "" {
		return "GET"
	}
	return method
}
