// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the minimal capability an httpcall.Call needs
from the layer that actually moves bytes over the network: a Call, which
executes one request synchronously (Execute) or asynchronously
(Enqueue) and can be canceled, and a Factory, which produces a Call for
a request.

Two interchangeable implementations are provided in sub-packages:
transport/socket, which dials one connection per call and speaks
HTTP/1.1 itself on a pool of worker goroutines; and transport/restycall,
which delegates to a go-resty client. Choose one when constructing an
httpcall.Client:

	c, err := httpcall.New("https://api.example.com/", socket.NewFactory())

A transport reports the raw outcome of a request as a Response, whose
Body is a stream the consumer must close. Transports never interpret
the status code: a 404 is a Response, not an error.
*/
package transport
