// File: poller/poller.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness wait used by the reactor. Backends are
// level-triggered: a descriptor left unserviced is reported again on the
// next Wait.

package poller

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Events is a readiness/interest bitmask.
type Events uint32

const (
	// EventRead indicates the descriptor is readable (or has a pending accept).
	EventRead Events = 1 << iota
	// EventWrite indicates the descriptor is writable.
	EventWrite
	// EventError indicates an error condition (POLLERR/POLLNVAL, EPOLLERR).
	EventError
	// EventHangup indicates the peer hung up.
	EventHangup
)

// Has reports whether all bits of f are set.
func (e Events) Has(f Events) bool { return e&f == f && f != 0 }

// Any reports whether any bit of f is set.
func (e Events) Any(f Events) bool { return e&f != 0 }

func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		bit  Events
		name string
	}{{EventRead, "read"}, {EventWrite, "write"}, {EventError, "error"}, {EventHangup, "hangup"}} {
		if e&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Readiness is one descriptor reported by Wait.
type Readiness struct {
	FD     int
	Events Events
}

// Poller multiplexes readiness over a set of descriptors. Implementations are
// not safe for concurrent use; the reactor is the single owner.
type Poller interface {
	// Add registers fd with the given interest.
	Add(fd int, interest Events) error
	// Modify replaces the interest of a registered fd.
	Modify(fd int, interest Events) error
	// Remove unregisters fd. It does not close it.
	Remove(fd int) error
	// Wait blocks up to timeout (negative = forever) and fills ready.
	// It returns ErrInterrupted when a signal cut the wait short.
	Wait(ready []Readiness, timeout time.Duration) (int, error)
	// Len returns the number of registered descriptors.
	Len() int
	// Close releases backend resources. Registered descriptors stay open.
	Close() error
}

// Backend names a Poller implementation.
type Backend string

const (
	BackendPoll  Backend = "poll"
	BackendEpoll Backend = "epoll"
)

// Standard errors.
var (
	ErrInterrupted       = errors.New("poller: wait interrupted by signal")
	ErrAlreadyRegistered = errors.New("poller: fd already registered")
	ErrNotRegistered     = errors.New("poller: fd not registered")
	ErrInvalidFD         = errors.New("poller: invalid fd")
	ErrClosed            = errors.New("poller: closed")
	ErrUnsupported       = errors.New("poller: backend not supported on this platform")
	ErrEmptyBuffer       = errors.New("poller: empty readiness buffer")
)

// New constructs the named backend. The empty name selects poll(2).
func New(b Backend) (Poller, error) {
	switch b {
	case "", BackendPoll:
		return NewPoll()
	case BackendEpoll:
		return NewEpoll()
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, string(b))
}

// timeoutMillis converts d for poll(2)/epoll_wait(2). Sub-millisecond
// positive timeouts round up so they never turn into a busy poll.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms == 0 && d > 0 {
		ms = 1
	}
	if ms > math.MaxInt32 {
		ms = math.MaxInt32
	}
	return int(ms)
}
