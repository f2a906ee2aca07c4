// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package socket provides a transport.Factory which speaks HTTP/1.1 over a
dedicated connection per call.

Each call dials its own TCP connection, bounded by the connect timeout
of the factory's timeout.Policy, writes the request with fixed-length
framing when the body length is known and chunked framing otherwise,
and reads the whole response body into memory before returning. Every
read from the connection is bounded by the policy's read timeout.

Response header fields whose names are empty or malformed, or whose
values contain illegal bytes, are dropped rather than failing the call.

Asynchronous calls run on a workpool.Pool owned by the factory unless
another executor is supplied with WithExecutor. Call Close on the
factory to release an owned pool.
*/
package socket
