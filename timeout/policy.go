// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"strings"
	"time"

	"github.com/gogama/httpcall/request"
)

// A Policy defines a timeout policy which may be plugged into a socket
// transport to direct how long to wait for a connection to be
// established, and how long to wait for each read from an established
// connection.
//
// A zero duration means no timeout.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Connect returns the timeout for establishing the connection over
	// which request r will be sent, including any TLS handshake.
	Connect(r *request.Request) time.Duration

	// Read returns the timeout for each individual read from the
	// connection over which request r was sent. The timer restarts
	// after every successful read.
	Read(r *request.Request) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed connect
// timeout of 15 seconds and a fixed read timeout of 20 seconds.
var DefaultPolicy Policy = Fixed(15*time.Second, 20*time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(0, 0)

// Fixed constructs a timeout policy that uses the same connect and
// read timeouts for every request.
//
// Both durations must be non-negative. A zero duration means no
// timeout.
func Fixed(connect, read time.Duration) Policy {
	if connect < 0 {
		panic("httpcall/timeout: connect timeout must be non-negative")
	}
	if read < 0 {
		panic("httpcall/timeout: read timeout must be non-negative")
	}
	return fixed{connect: connect, read: read}
}

type fixed struct {
	connect time.Duration
	read    time.Duration
}

func (p fixed) Connect(_ *request.Request) time.Duration {
	return p.connect
}

func (p fixed) Read(_ *request.Request) time.Duration {
	return p.read
}

// PerHost constructs a timeout policy that looks up the policy to use
// by the request URL's host name, falling back to def for host names
// without an entry in hosts. Host name matching is case-insensitive.
//
// Use PerHost when one slow upstream needs more patience than the
// rest, for example:
//
//	p := timeout.PerHost(timeout.DefaultPolicy, map[string]timeout.Policy{
//		"reports.example.com": timeout.Fixed(5*time.Second, 2*time.Minute),
//	})
func PerHost(def Policy, hosts map[string]Policy) Policy {
	if def == nil {
		panic("httpcall/timeout: nil default policy")
	}
	m := make(map[string]Policy, len(hosts))
	for host, p := range hosts {
		if p == nil {
			panic("httpcall/timeout: nil policy for host " + host)
		}
		m[strings.ToLower(host)] = p
	}
	return perHost{def: def, hosts: m}
}

type perHost struct {
	def   Policy
	hosts map[string]Policy
}

func (p perHost) policy(r *request.Request) Policy {
	if q, ok := p.hosts[strings.ToLower(r.URL().Hostname())]; ok {
		return q
	}
	return p.def
}

func (p perHost) Connect(r *request.Request) time.Duration {
	return p.policy(r).Connect(r)
}

func (p perHost) Read(r *request.Request) time.Duration {
	return p.policy(r).Read(r)
}
