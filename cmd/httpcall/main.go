// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command httpcall makes HTTP calls through the httpcall library.
//
// Usage:
//
//	httpcall get URL [--path gjson-path] [--async]
//	httpcall top250 [--start N] [--count N]
//
// Settings come from HTTPCALL_* environment variables or a .env file in
// the working directory: HTTPCALL_BASE_URL, HTTPCALL_TRANSPORT (socket
// or resty), HTTPCALL_CONNECT_TIMEOUT, HTTPCALL_READ_TIMEOUT,
// HTTPCALL_MAX_WORKERS, HTTPCALL_IDLE_TIMEOUT, HTTPCALL_LOG_LEVEL and
// HTTPCALL_METRICS_ADDR.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "httpcall: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}
