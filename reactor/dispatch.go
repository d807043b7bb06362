// File: reactor/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One dispatch pass over the descriptors reported ready.
//
// Entries closed during a pass are only marked dead and queued; their
// descriptors are released after the pass. Until then the fd number stays
// allocated, so an accept in the same pass can never receive a number that
// still has stale readiness further down the ready list.

package reactor

import (
	"errors"
	"time"

	"github.com/momentics/webserv/api"
	"github.com/momentics/webserv/poller"
)

func (r *Reactor) dispatch(ready []poller.Readiness) {
	start := time.Now()
	r.passes.Add(1)

	for _, rd := range ready {
		if rd.FD == r.lfd {
			r.onListener(rd.Events)
			continue
		}
		c, ok := r.byFD[rd.FD]
		if !ok || c.dead {
			continue
		}
		c.seen = rd.Events

		// Error takes priority: a descriptor can be flagged error and
		// readable/writable at once.
		switch {
		case rd.Events.Any(poller.EventError):
			r.log.Debug().Int("fd", c.fd).Str("events", rd.Events.String()).Msg("error on client")
			r.markDead(c, reasonError)
		case rd.Events.Any(poller.EventHangup):
			r.log.Debug().Int("fd", c.fd).Msg("client disconnected")
			r.markDead(c, reasonHangup)
		case rd.Events.Any(poller.EventRead):
			r.log.Debug().Int("fd", c.fd).Msg("data available to read")
			r.invoke(c, reasonRead, r.handler.OnReadable)
		case rd.Events.Any(poller.EventWrite):
			r.log.Debug().Int("fd", c.fd).Msg("ready to write")
			r.invoke(c, reasonWrite, r.handler.OnWritable)
		}
	}

	r.metrics.ObserveDispatch(time.Since(start))
}

// onListener accepts pending connections. Error flags on the listener are
// reported but never remove it.
func (r *Reactor) onListener(ev poller.Events) {
	if ev.Any(poller.EventError | poller.EventHangup) {
		r.log.Warn().Str("events", ev.String()).Msg("error condition on listening socket")
	}
	if !ev.Any(poller.EventRead) {
		return
	}
	for i := 0; r.acceptBatch <= 0 || i < r.acceptBatch; i++ {
		a, ok, err := r.ln.Accept()
		if err != nil {
			r.log.Warn().Err(err).Msg("accept failed")
			return
		}
		if !ok {
			return
		}
		c := newConn(a)
		if err := r.poller.Add(c.fd, c.interest); err != nil {
			r.log.Error().Err(err).Int("fd", c.fd).Msg("failed to register client")
			if err := r.closeFD(c.fd); err != nil {
				r.log.Warn().Err(err).Int("fd", c.fd).Msg("failed to close client")
			}
			continue
		}
		r.conns = append(r.conns, c)
		r.byFD[c.fd] = c
		r.metrics.Accepted()
		r.log.Debug().Int("fd", c.fd).Str("peer", c.peer).Msg("new client connected")
	}
}

// invoke runs one hook and retires the connection: single-shot lifecycle.
func (r *Reactor) invoke(c *conn, reason string, hook func(api.Conn)) {
	defer func() {
		if v := recover(); v != nil {
			r.metrics.HandlerPanic()
			r.log.Error().Interface("panic", v).Int("fd", c.fd).Msg("handler panic")
			reason = reasonPanic
		}
		r.markDead(c, reason)
	}()
	hook(c)
}

func (r *Reactor) markDead(c *conn, reason string) {
	if c.dead {
		return
	}
	c.dead = true
	c.reason = reason
	r.reaped.Add(c)
}

// reap releases the entries marked during the pass and compacts the live set.
func (r *Reactor) reap() {
	if r.reaped.Length() == 0 {
		return
	}
	for r.reaped.Length() > 0 {
		r.release(r.reaped.Remove().(*conn))
	}
	live := r.conns[:0]
	for _, c := range r.conns {
		if !c.dead {
			live = append(live, c)
		}
	}
	clear(r.conns[len(live):])
	r.conns = live
	r.publish()
}

// release unregisters and closes c. Idempotent.
func (r *Reactor) release(c *conn) {
	if c.fd < 0 {
		return
	}
	fd := c.fd
	c.fd = -1
	delete(r.byFD, fd)
	if err := r.poller.Remove(fd); err != nil && !errors.Is(err, poller.ErrNotRegistered) {
		r.log.Warn().Err(err).Int("fd", fd).Msg("failed to unregister client")
	}
	if err := r.closeFD(fd); err != nil {
		r.log.Warn().Err(err).Int("fd", fd).Msg("failed to close client")
	}
	r.metrics.Closed(c.reason)
	r.log.Debug().Int("fd", fd).Str("reason", c.reason).Msg("client closed")
}
