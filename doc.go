// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpcall provides asynchronous, cancelable HTTP calls whose
successful response bodies are converted into typed values.

Create a Client for a base URL and a transport, then create calls:

	client, err := httpcall.New("https://api.example.com/v2/movie/", socket.NewFactory())
	...
	top250, err := client.Template(request.Template{
		Path:  "top250",
		Query: []string{"start", "count"},
	})
	...
	call := httpcall.Create(client, top250, converter.JSON[MovieList](), 0, 10)

A Call is executed exactly once, either synchronously:

	resp, err := call.Execute()

or asynchronously, with the outcome reported to a Callback:

	call.Enqueue(httpcall.CallbackFuncs[MovieList]{
		Response: func(_ httpcall.Call[MovieList], resp *httpcall.Response[MovieList]) { ... },
		Failure:  func(_ httpcall.Call[MovieList], err error) { ... },
	})

Executing a Call twice panics with ErrAlreadyExecuted; use Clone to
repeat a request. Cancel may be called at any time from any goroutine.

A non-2XX response is not an error. Its body is buffered into an
ErrorBody and the converter is not invoked. Responses with status 204
or 205 are successful but have no body. For other successful responses
the converter reads the body stream exactly once; if reading the stream
fails, the read error is returned rather than whatever the converter
made of it.

Two transports are provided. Package transport/socket dials one
connection per call and buffers every response; package
transport/restycall sends requests through a go-resty client and
streams the body into the converter.

To hook into call execution, install a handler into the appropriate
handler chain:

	handlers := &httpcall.HandlerGroup{}
	handlers.PushBack(httpcall.AfterExecutionEnd, httpcall.HandlerFunc(
		func(_ httpcall.Event, e *httpcall.Execution) {
			log.Printf("call %s took %s", e.ID, e.Duration())
		}))
	client, err := httpcall.New(base, tf, httpcall.WithHandlers(handlers))

Package metrics provides ready-made handlers which export Prometheus
metrics.
*/
package httpcall
