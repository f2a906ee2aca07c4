// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about the calls made by an
// httpcall.Client. A Collector observes calls through event handlers
// installed into the client's handler group:
//
//	m := metrics.NewCollector("myapp")
//	prometheus.MustRegister(m)
//	g := &httpcall.HandlerGroup{}
//	m.Install(g)
//	cl, err := httpcall.New(baseURL, tf, httpcall.WithHandlers(g))
package metrics

import (
	"strconv"

	"github.com/gogama/httpcall"
	"github.com/gogama/httpcall/transient"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values other than a status class ("2xx", "4xx", ...)
// or a transient.Category name.
const (
	OutcomeCreationFailed = "creation_failed"
	OutcomeError          = "error"
)

// DefaultBuckets are the call duration histogram buckets, in seconds.
var DefaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20}

type startedKey struct{}

// A Collector counts calls by outcome, observes their duration and
// gauges how many are in flight. It implements prometheus.Collector.
type Collector struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewCollector returns a collector whose metric names begin with
// namespace, which may be empty.
func NewCollector(namespace string) *Collector {
	return &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "httpcall",
			Name:      "calls_total",
			Help:      "Total number of completed calls by method and outcome",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "httpcall",
			Name:      "call_duration_seconds",
			Help:      "Call duration in seconds, from execution start to the end of parsing",
			Buckets:   DefaultBuckets,
		}, []string{"method"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "httpcall",
			Name:      "calls_inflight",
			Help:      "Number of calls started but not yet ended",
		}),
	}
}

// Install adds the collector's handlers to g.
func (c *Collector) Install(g *httpcall.HandlerGroup) {
	g.PushBack(httpcall.BeforeExecutionStart, httpcall.HandlerFunc(c.start))
	g.PushBack(httpcall.AfterExecutionEnd, httpcall.HandlerFunc(c.end))
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.calls.Describe(ch)
	c.duration.Describe(ch)
	c.inflight.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.calls.Collect(ch)
	c.duration.Collect(ch)
	c.inflight.Collect(ch)
}

func (c *Collector) start(_ httpcall.Event, e *httpcall.Execution) {
	c.inflight.Inc()
	e.SetValue(startedKey{}, true)
}

func (c *Collector) end(_ httpcall.Event, e *httpcall.Execution) {
	started, _ := e.Value(startedKey{}).(bool)
	if started {
		c.inflight.Dec()
	}

	method := "unknown"
	if e.Request != nil {
		method = e.Request.Method()
	}
	c.calls.WithLabelValues(method, Outcome(e)).Inc()
	if started {
		c.duration.WithLabelValues(method).Observe(e.Duration().Seconds())
	}
}

// Outcome returns the outcome label for a finished execution: the
// status class for a response, OutcomeCreationFailed if the request
// could not be built, the transient.Category name for a transient
// failure, and OutcomeError for any other failure.
func Outcome(e *httpcall.Execution) string {
	if e.Err == nil {
		return strconv.Itoa(e.StatusCode()/100) + "xx"
	}
	if e.Request == nil {
		return OutcomeCreationFailed
	}
	if cat := transient.Categorize(e.Err); cat != transient.Not {
		return cat.String()
	}
	return OutcomeError
}
