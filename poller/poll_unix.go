//go:build linux || darwin

// File: poller/poll_unix.go
// Author: momentics <momentics@gmail.com>
//
// poll(2) backend.

package poller

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type pollPoller struct {
	fds    []unix.PollFd
	index  map[int]int // fd -> position in fds
	closed bool
}

// NewPoll constructs a poll(2) backed Poller.
func NewPoll() (Poller, error) {
	return &pollPoller{index: make(map[int]int)}, nil
}

func (p *pollPoller) Add(fd int, interest Events) error {
	if p.closed {
		return ErrClosed
	}
	if fd < 0 {
		return ErrInvalidFD
	}
	if _, ok := p.index[fd]; ok {
		return ErrAlreadyRegistered
	}
	p.index[fd] = len(p.fds)
	p.fds = append(p.fds, unix.PollFd{Fd: int32(fd), Events: eventsToPoll(interest)})
	return nil
}

func (p *pollPoller) Modify(fd int, interest Events) error {
	if p.closed {
		return ErrClosed
	}
	i, ok := p.index[fd]
	if !ok {
		return ErrNotRegistered
	}
	p.fds[i].Events = eventsToPoll(interest)
	return nil
}

// Remove moves the last slot into the hole.
func (p *pollPoller) Remove(fd int) error {
	if p.closed {
		return ErrClosed
	}
	i, ok := p.index[fd]
	if !ok {
		return ErrNotRegistered
	}
	last := len(p.fds) - 1
	if i != last {
		p.fds[i] = p.fds[last]
		p.index[int(p.fds[i].Fd)] = i
	}
	p.fds[last] = unix.PollFd{}
	p.fds = p.fds[:last]
	delete(p.index, fd)
	return nil
}

func (p *pollPoller) Wait(ready []Readiness, timeout time.Duration) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if len(ready) == 0 {
		return 0, ErrEmptyBuffer
	}
	n, err := unix.Poll(p.fds, timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, ErrInterrupted
		}
		return 0, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	out := 0
	for i := range p.fds {
		if out == len(ready) {
			break
		}
		if p.fds[i].Revents == 0 {
			continue
		}
		ready[out] = Readiness{FD: int(p.fds[i].Fd), Events: eventsFromPoll(p.fds[i].Revents)}
		out++
	}
	return out, nil
}

func (p *pollPoller) Len() int { return len(p.fds) }

func (p *pollPoller) Close() error {
	p.closed = true
	p.fds = nil
	p.index = nil
	return nil
}

func eventsToPoll(e Events) int16 {
	var ev int16
	if e&EventRead != 0 {
		ev |= unix.POLLIN
	}
	if e&EventWrite != 0 {
		ev |= unix.POLLOUT
	}
	return ev
}

func eventsFromPoll(rev int16) Events {
	var e Events
	if rev&unix.POLLIN != 0 {
		e |= EventRead
	}
	if rev&unix.POLLOUT != 0 {
		e |= EventWrite
	}
	if rev&(unix.POLLERR|unix.POLLNVAL) != 0 {
		e |= EventError
	}
	if rev&unix.POLLHUP != 0 {
		e |= EventHangup
	}
	return e
}
