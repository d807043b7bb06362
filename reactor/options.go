// File: reactor/options.go
// Package reactor defines functional options for the Reactor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/webserv/control"
	"github.com/momentics/webserv/poller"
)

// DefaultPollTimeout bounds each readiness wait.
const DefaultPollTimeout = time.Second

// defaultReadyBuffer is the readiness slots filled per wait.
const defaultReadyBuffer = 256

// Option customizes reactor initialization.
type Option func(*Reactor)

// WithPoller sets the readiness backend. The reactor takes ownership and
// closes it on drain.
func WithPoller(p poller.Poller) Option {
	return func(r *Reactor) {
		r.poller = p
	}
}

// WithPollTimeout overrides the wait timeout. Non-positive values are ignored.
func WithPollTimeout(d time.Duration) Option {
	return func(r *Reactor) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithShutdownFlag sets the flag observed at the top of every poll cycle.
func WithShutdownFlag(f *ShutdownFlag) Option {
	return func(r *Reactor) {
		if f != nil {
			r.flag = f
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reactor) {
		r.log = l
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *control.Metrics) Option {
	return func(r *Reactor) {
		r.metrics = m
	}
}

// WithProbes publishes reactor probes into dp.
func WithProbes(dp *control.DebugProbes) Option {
	return func(r *Reactor) {
		r.probes = dp
	}
}

// WithAcceptBatch caps accepts per listener readiness. n <= 0 accepts until
// the listener reports would-block.
func WithAcceptBatch(n int) Option {
	return func(r *Reactor) {
		r.acceptBatch = n
	}
}

// WithReadyBuffer sets how many ready descriptors one wait may report.
func WithReadyBuffer(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.ready = make([]poller.Readiness, n)
		}
	}
}
