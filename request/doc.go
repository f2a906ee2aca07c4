// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Request (an immutable HTTP
request description) and Factory (turns call-site arguments into a
Request).

A Request looks like a stripped-down, read-only http.Request: it has a
method, a URL, header fields, and an optional Body. A Body is either of
known length (sent with a fixed Content-Length) or of unknown length
(sent with chunked framing):

	body, err := request.NewBody("application/json", `{"q":1}`)
	...
	r, err := request.New("POST", "https://example.com/search", nil, body)

Transports in package transport consume a Request and turn it into
network traffic. Like http.Request, a Request has a context which
transports honor, and which may be replaced with WithContext.

A Factory is the function an httpcall.Call invokes, at most once, to
build the Request it will send. The Template type builds factories from
a method, a relative path with "{name}" placeholders, and a list of
query parameter names:

	t := request.Template{Method: "GET", Path: "top250", Query: []string{"start", "count"}}
	f, err := t.Factory("https://api.example.com/v2/movie/")
	...
	r, err := f(0, 10)
*/
package request
