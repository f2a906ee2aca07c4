// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package workpool

import (
	"context"
	"errors"
	"runtime/pprof"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by Pool.Submit after the pool has been closed.
var ErrClosed = errors.New("httpcall/workpool: pool closed")

// An Executor runs tasks, typically on some goroutine other than the
// submitter's.
//
// Submit must not block waiting for the task to finish. It returns an
// error only if the task will never run.
//
// Implementations of Executor must be safe for concurrent use by
// multiple goroutines.
type Executor interface {
	Submit(task func()) error
}

// The ExecutorFunc type is an adapter to allow the use of ordinary
// functions as executors.
type ExecutorFunc func(task func()) error

// Submit calls f(task).
func (f ExecutorFunc) Submit(task func()) error {
	return f(task)
}

// Inline is an executor that runs every task immediately on the
// submitting goroutine.
var Inline Executor = ExecutorFunc(func(task func()) error {
	task()
	return nil
})

// Go is an executor that runs every task on a new goroutine.
var Go Executor = ExecutorFunc(func(task func()) error {
	go task()
	return nil
})

const (
	// DefaultName is the default pool name, used as the value of the
	// "worker" profiler label on pool goroutines.
	DefaultName = "httpcall-idle"
	// DefaultMaxWorkers is the default maximum number of workers.
	DefaultMaxWorkers = 64
	// DefaultIdleTimeout is the default time a worker waits for a new
	// task before exiting.
	DefaultIdleTimeout = 60 * time.Second
)

// A Pool is an Executor backed by a set of worker goroutines. Workers
// are started on demand, up to a maximum; tasks submitted while every
// worker is busy wait in an unbounded queue. A worker exits after it
// has been idle for the pool's idle timeout, so an unused pool costs no
// goroutines.
//
// A Pool must be created with New. It is safe for concurrent use by
// multiple goroutines.
type Pool struct {
	name        string
	maxWorkers  int
	idleTimeout time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	queue   []func()
	workers int
	idle    int
	wakes   int // wake tokens sent and not yet claimed; never exceeds idle
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// An Option configures a Pool.
type Option func(*Pool)

// WithName sets the pool name.
func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// WithMaxWorkers sets the maximum number of concurrent workers, which
// must be positive.
func WithMaxWorkers(n int) Option {
	if n < 1 {
		panic("httpcall/workpool: max workers must be positive")
	}
	return func(p *Pool) {
		p.maxWorkers = n
	}
}

// WithIdleTimeout sets how long a worker waits for a task before
// exiting. The timeout must be positive.
func WithIdleTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("httpcall/workpool: idle timeout must be positive")
	}
	return func(p *Pool) {
		p.idleTimeout = d
	}
}

// WithLogger sets the logger used to report task panics.
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("httpcall/workpool: nil logger")
	}
	return func(p *Pool) {
		p.logger = logger
	}
}

// New creates a pool with no workers.
func New(opts ...Option) *Pool {
	p := &Pool{
		name:        DefaultName,
		maxWorkers:  DefaultMaxWorkers,
		idleTimeout: DefaultIdleTimeout,
		logger:      zap.NewNop(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.wake = make(chan struct{}, p.maxWorkers)
	return p
}

// Submit queues task for execution by a worker, starting a new worker
// if every idle worker has already been woken for an earlier task and
// the pool is below its maximum size.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		panic("httpcall/workpool: nil task")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.queue = append(p.queue, task)
	p.submitted.Add(1)
	if p.idle > p.wakes {
		p.wakes++
		p.wake <- struct{}{}
	} else if p.workers < p.maxWorkers {
		p.workers++
		p.wg.Add(1)
		go p.work()
	}
	return nil
}

// Close stops the pool from accepting new tasks and waits until every
// queued task has run and every worker has exited.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Workers   int
	Idle      int
	Queued    int
	Submitted int64
	Completed int64
	Panicked  int64
}

// Stats returns a snapshot of the pool's activity counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers:   p.workers,
		Idle:      p.idle,
		Queued:    len(p.queue),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	pprof.Do(context.Background(), pprof.Labels("worker", p.name), func(context.Context) {
		p.loop()
	})
}

func (p *Pool) loop() {
	timer := time.NewTimer(p.idleTimeout)
	defer timer.Stop()
	for {
		p.mu.Lock()
		for len(p.queue) > 0 {
			task := p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			p.mu.Unlock()
			p.run(task)
			p.mu.Lock()
		}
		if p.closed {
			p.workers--
			p.mu.Unlock()
			return
		}
		p.idle++
		p.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.idleTimeout)
		woken, expired := false, false
		select {
		case <-p.wake:
			woken = true
		case <-p.done:
		case <-timer.C:
			expired = true
		}

		p.mu.Lock()
		p.idle--
		if woken {
			p.wakes--
		} else if p.wakes > p.idle {
			// A Submit reserved this worker before it stopped waiting.
			// The unclaimed token is still buffered.
			<-p.wake
			p.wakes--
		}
		if expired && len(p.queue) == 0 {
			p.workers--
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		p.completed.Add(1)
		if r := recover(); r != nil {
			p.panicked.Add(1)
			p.logger.Error("task panicked",
				zap.String("pool", p.name),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	task()
}
