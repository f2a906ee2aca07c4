// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gogama/httpcall"
	"github.com/gogama/httpcall/internal/config"
	"github.com/gogama/httpcall/internal/logger"
	"github.com/gogama/httpcall/metrics"
	"github.com/gogama/httpcall/timeout"
	"github.com/gogama/httpcall/transport"
	"github.com/gogama/httpcall/transport/restycall"
	"github.com/gogama/httpcall/transport/socket"
	"github.com/gogama/httpcall/workpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	envFile string
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "httpcall",
		Short:         "Make HTTP calls through the httpcall library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load settings from")
	cmd.AddCommand(newGetCmd(opts), newTop250Cmd(opts))
	return cmd
}

// An app is the wiring shared by every subcommand: configuration,
// logger, transport and client.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client *httpcall.Client
	out    io.Writer

	closers []func() error
}

func (opts *rootOptions) setup() (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(opts.stderr, cfg.LogLevel)
	a := &app{cfg: cfg, log: log, out: opts.stdout}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	pool := workpool.New(
		workpool.WithName(poolName(cfg.Transport)),
		workpool.WithMaxWorkers(cfg.MaxWorkers),
		workpool.WithIdleTimeout(cfg.IdleTimeout),
		workpool.WithLogger(log),
	)
	a.closers = append(a.closers, pool.Close)
	tf := newTransport(cfg, pool, log)

	g := &httpcall.HandlerGroup{}
	if cfg.MetricsAddr != "" {
		if err = a.serveMetrics(g); err != nil {
			_ = a.close()
			return nil, err
		}
	}

	a.client, err = httpcall.New(cfg.BaseURL, tf, httpcall.WithHandlers(g), httpcall.WithLogger(log))
	if err != nil {
		_ = a.close()
		return nil, err
	}
	log.Debug("httpcall ready",
		zap.String("base_url", cfg.BaseURL),
		zap.String("transport", cfg.Transport))
	return a, nil
}

// poolName labels the transport's worker goroutines in profiles.
func poolName(transport string) string {
	return workpool.DefaultName + "-" + transport
}

func newTransport(cfg *config.Config, pool *workpool.Pool, log *zap.Logger) transport.Factory {
	if cfg.Transport == config.TransportResty {
		client := resty.New().
			SetLogger(log.Sugar()).
			SetTimeout(cfg.ConnectTimeout + cfg.ReadTimeout)
		return restycall.NewFactory(client, restycall.WithExecutor(pool), restycall.WithLogger(log))
	}
	return socket.NewFactory(
		socket.WithExecutor(pool),
		socket.WithTimeoutPolicy(timeout.Fixed(cfg.ConnectTimeout, cfg.ReadTimeout)),
		socket.WithLogger(log),
	)
}

func (a *app) serveMetrics(g *httpcall.HandlerGroup) error {
	m := metrics.NewCollector("")
	reg := prometheus.NewRegistry()
	if err := reg.Register(m); err != nil {
		return err
	}
	m.Install(g)

	ln, err := net.Listen("tcp", a.cfg.MetricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.log.Info("serving metrics", zap.Stringer("addr", ln.Addr()))

	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// await runs c to completion, synchronously or through Enqueue, and
// cancels it if ctx is done first.
func await[T any](ctx context.Context, c httpcall.Call[T], async bool) (*httpcall.Response[T], error) {
	stop := context.AfterFunc(ctx, c.Cancel)
	defer stop()

	if !async {
		return c.Execute()
	}

	type result struct {
		resp *httpcall.Response[T]
		err  error
	}
	ch := make(chan result, 1)
	c.Enqueue(httpcall.CallbackFuncs[T]{
		Response: func(_ httpcall.Call[T], resp *httpcall.Response[T]) { ch <- result{resp: resp} },
		Failure:  func(_ httpcall.Call[T], err error) { ch <- result{err: err} },
	})
	r := <-ch
	return r.resp, r.err
}

func responseError[T any](resp *httpcall.Response[T]) error {
	return fmt.Errorf("%s: %s", resp, strings.TrimSpace(resp.ErrorBody().String()))
}
