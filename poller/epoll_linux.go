//go:build linux
// +build linux

// File: poller/epoll_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) backend, level-triggered.

package poller

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

const maxEvents = 128

type epollPoller struct {
	epfd     int
	events   []unix.EpollEvent
	interest map[int]Events
	closed   bool
}

// NewEpoll creates a new epoll instance.
func NewEpoll() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPoller{
		epfd:     epfd,
		events:   make([]unix.EpollEvent, maxEvents),
		interest: make(map[int]Events),
	}, nil
}

func (p *epollPoller) Add(fd int, interest Events) error {
	if p.closed {
		return ErrClosed
	}
	if fd < 0 {
		return ErrInvalidFD
	}
	if _, ok := p.interest[fd]; ok {
		return ErrAlreadyRegistered
	}
	ev := unix.EpollEvent{Events: eventsToEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		if errors.Is(err, unix.EEXIST) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	p.interest[fd] = interest
	return nil
}

func (p *epollPoller) Modify(fd int, interest Events) error {
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.interest[fd]; !ok {
		return ErrNotRegistered
	}
	ev := unix.EpollEvent{Events: eventsToEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	p.interest[fd] = interest
	return nil
}

func (p *epollPoller) Remove(fd int) error {
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.interest[fd]; !ok {
		return ErrNotRegistered
	}
	delete(p.interest, fd)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		// Already gone from the interest list if the fd was closed first.
		if errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENOENT) {
			return nil
		}
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

func (p *epollPoller) Wait(ready []Readiness, timeout time.Duration) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if len(ready) == 0 {
		return 0, ErrEmptyBuffer
	}
	if len(ready) > len(p.events) {
		p.events = make([]unix.EpollEvent, len(ready))
	}
	n, err := unix.EpollWait(p.epfd, p.events[:len(ready)], timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, ErrInterrupted
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		ready[i] = Readiness{FD: int(p.events[i].Fd), Events: eventsFromEpoll(p.events[i].Events)}
	}
	return n, nil
}

func (p *epollPoller) Len() int { return len(p.interest) }

// Close releases the epoll file descriptor.
func (p *epollPoller) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.interest = nil
	return unix.Close(p.epfd)
}

func eventsToEpoll(e Events) uint32 {
	var ev uint32
	if e&EventRead != 0 {
		ev |= unix.EPOLLIN
	}
	if e&EventWrite != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func eventsFromEpoll(ev uint32) Events {
	var e Events
	if ev&unix.EPOLLIN != 0 {
		e |= EventRead
	}
	if ev&unix.EPOLLOUT != 0 {
		e |= EventWrite
	}
	if ev&unix.EPOLLERR != 0 {
		e |= EventError
	}
	if ev&unix.EPOLLHUP != 0 {
		e |= EventHangup
	}
	return e
}
