//go:build !linux
// +build !linux

// File: poller/epoll_stub.go
// Author: momentics <momentics@gmail.com>

package poller

// NewEpoll returns an error outside Linux.
func NewEpoll() (Poller, error) {
	return nil, ErrUnsupported
}
