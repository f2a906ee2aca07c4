// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting connect and read
// timeouts on the connections opened by a socket transport (package
// transport/socket). A generic interface for timeout policies is
// provided, Policy, along with policy generating functions and
// built-in policies.
package timeout
