// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor lifecycle: construction, the polling loop and draining.

package reactor

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/webserv/api"
	"github.com/momentics/webserv/control"
	"github.com/momentics/webserv/poller"
	"github.com/momentics/webserv/transport/tcp"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("reactor already running")

// Listener is the listening endpoint the reactor takes ownership of.
// *tcp.ListenSocket implements it.
type Listener interface {
	FD() int
	Accept() (tcp.Accepted, bool, error)
	Close() error
}

var _ Listener = (*tcp.ListenSocket)(nil)

// State is the reactor's position in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateDispatching
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateDispatching:
		return "dispatching"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Reactor multiplexes a listener and its accepted clients over one
// readiness-wait loop. All descriptor state is confined to the goroutine
// executing Run.
type Reactor struct {
	ln          Listener
	lfd         int
	registered  bool // listener is in the poller
	handler     api.Handler
	poller      poller.Poller
	timeout     time.Duration
	flag        *ShutdownFlag
	acceptBatch int
	closeFD     func(int) error

	log     zerolog.Logger
	metrics *control.Metrics
	probes  *control.DebugProbes

	conns  []*conn       // live clients in accept order
	byFD   map[int]*conn // fd -> entry
	ready  []poller.Readiness
	reaped *queue.Queue // entries marked dead during the current pass

	// published for observers on other goroutines
	state  atomic.Int32
	live   atomic.Int64
	passes atomic.Uint64
	wakes  atomic.Uint64
}

// New builds a Reactor that owns ln. A nil handler selects DrainHandler.
func New(ln Listener, h api.Handler, opts ...Option) (*Reactor, error) {
	if ln == nil {
		return nil, api.NewError(api.KindSocket, "reactor", "nil listener")
	}
	r := &Reactor{
		ln:          ln,
		lfd:         tcp.InvalidFD,
		handler:     h,
		timeout:     DefaultPollTimeout,
		flag:        DefaultShutdownFlag,
		acceptBatch: 1,
		closeFD:     sysClose,
		log:         zerolog.Nop(),
		byFD:        make(map[int]*conn),
		ready:       make([]poller.Readiness, defaultReadyBuffer),
		reaped:      queue.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = DrainHandler{Log: r.log}
	}
	if r.poller == nil {
		p, err := poller.New(poller.BackendPoll)
		if err != nil {
			return nil, api.Wrap(api.KindPoll, "poller", err)
		}
		r.poller = p
	}
	r.registerProbes()
	return r, nil
}

// Run registers the listener and loops until shutdown is requested or the
// readiness wait fails. Either way every descriptor is closed before it
// returns. A wait failure is returned as a KindPoll error.
func (r *Reactor) Run() error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StatePolling)) {
		return ErrAlreadyRunning
	}

	r.lfd = r.ln.FD()
	if err := r.poller.Add(r.lfd, poller.EventRead); err != nil {
		r.log.Error().Err(err).Int("fd", r.lfd).Msg("failed to register listening socket")
		r.drain()
		return api.Wrap(api.KindSocket, "register listener", err)
	}
	r.registered = true
	r.publish()
	r.log.Info().Int("fd", r.lfd).Dur("timeout", r.timeout).Msg("reactor started")

	var runErr error
	for {
		if r.flag.Requested() {
			r.log.Info().Msg("shutdown requested")
			break
		}
		r.setState(StatePolling)

		n, err := r.poller.Wait(r.ready, r.timeout)
		r.wakes.Add(1)
		if err != nil {
			if errors.Is(err, poller.ErrInterrupted) {
				r.metrics.Wakeup(control.WakeInterrupted)
				r.log.Debug().Msg("poll interrupted by signal")
				continue
			}
			r.log.Error().Err(err).Msg("poll error")
			runErr = api.Wrap(api.KindPoll, "wait", err)
			break
		}
		if n == 0 {
			r.metrics.Wakeup(control.WakeTimeout)
			continue
		}

		r.metrics.Wakeup(control.WakeReady)
		r.setState(StateDispatching)
		r.dispatch(r.ready[:n])
		r.reap()
	}

	r.drain()
	return runErr
}

// Shutdown requests a graceful stop; Run notices it within one timeout.
func (r *Reactor) Shutdown() { r.flag.Request() }

var _ api.GracefulShutdown = (*Reactor)(nil)

// State returns the lifecycle state. Safe from any goroutine.
func (r *Reactor) State() State { return State(r.state.Load()) }

// Len returns the live descriptors including the listener. Only meaningful
// on the loop goroutine (hooks, the poller) or after Run returns.
func (r *Reactor) Len() int {
	n := len(r.conns)
	if r.registered {
		n++
	}
	return n
}

// LiveConnections returns the published client count. Safe from any goroutine.
func (r *Reactor) LiveConnections() int { return int(r.live.Load()) }

// Passes returns how many dispatch passes ran. Safe from any goroutine.
func (r *Reactor) Passes() uint64 { return r.passes.Load() }

func (r *Reactor) setState(s State) { r.state.Store(int32(s)) }

func (r *Reactor) publish() {
	r.live.Store(int64(len(r.conns)))
	r.metrics.SetLive(len(r.conns))
}

func (r *Reactor) registerProbes() {
	if r.probes == nil {
		return
	}
	r.probes.RegisterProbe("reactor.state", func() any { return r.State().String() })
	r.probes.RegisterProbe("reactor.live_connections", func() any { return r.LiveConnections() })
	r.probes.RegisterProbe("reactor.dispatch_passes", func() any { return r.Passes() })
	r.probes.RegisterProbe("reactor.wakeups", func() any { return r.wakes.Load() })
	r.probes.RegisterProbe("reactor.shutdown_flag", func() any { return r.flag.State().String() })
}

// drain closes every client, the listener and the poller. Terminal.
func (r *Reactor) drain() {
	r.setState(StateDraining)
	closing := len(r.conns)
	for _, c := range r.conns {
		if !c.dead {
			c.dead = true
			c.reason = reasonShutdown
		}
		r.release(c)
	}
	for r.reaped.Length() > 0 {
		r.release(r.reaped.Remove().(*conn))
	}
	clear(r.conns)
	r.conns = r.conns[:0]
	clear(r.byFD)

	if r.registered {
		if err := r.poller.Remove(r.lfd); err != nil {
			r.log.Warn().Err(err).Int("fd", r.lfd).Msg("failed to unregister listening socket")
		}
		r.registered = false
	}
	if err := r.ln.Close(); err != nil {
		r.log.Warn().Err(err).Msg("failed to close listening socket")
	}
	if err := r.poller.Close(); err != nil {
		r.log.Warn().Err(err).Msg("failed to close poller")
	}
	r.publish()
	r.setState(StateStopped)
	r.log.Info().Int("clients", closing).Msg("reactor drained")
}
