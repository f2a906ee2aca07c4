// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from HTTP call execution as
// canceled, transient, or non-transient. The httpcall package uses the
// classification when logging failed calls, and package metrics uses it
// to bucket failure counts.
//
// Package transient depends only on the standard library packages
// "context", "errors", and "syscall", so it doesn't bring any
// significant dependencies when imported as a standalone package.
package transient
