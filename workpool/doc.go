// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package workpool provides the executors on which asynchronous HTTP calls
run their network I/O and deliver their callbacks.

An Executor accepts tasks without blocking the submitter. Three
executors are provided: Pool, a bounded-growth pool of worker goroutines
which reaps workers that have been idle for too long; Go, which starts a
fresh goroutine per task; and Inline, which runs each task on the
submitting goroutine.

	pool := workpool.New(workpool.WithMaxWorkers(16), workpool.WithIdleTimeout(30*time.Second))
	defer pool.Close()
	err := pool.Submit(func() { ... })

Pool workers carry the runtime/pprof label "worker" set to the pool
name, "httpcall-idle" by default, so they can be told apart from other
goroutines in profiles and goroutine dumps. A panic inside a task is
recovered and logged, and never terminates the worker.
*/
package workpool
