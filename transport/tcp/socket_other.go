//go:build !unix

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - stub for platforms without BSD sockets through x/sys/unix.

package tcp

import "github.com/momentics/webserv/api"

var errUnsupported = api.NewError(api.KindSocket, "listen", "unsupported platform")

// ListenSocket is unavailable on this platform.
type ListenSocket struct{}

// Listen always fails on this platform.
func Listen(port int, opts ...ListenOption) (*ListenSocket, error) {
	return nil, errUnsupported
}

func (s *ListenSocket) StartListening(backlog int) error { return errUnsupported }
func (s *ListenSocket) Accept() (Accepted, bool, error) { return Accepted{}, false, errUnsupported }
func (s *ListenSocket) Close() error { return nil }
func (s *ListenSocket) FD() int { return InvalidFD }
func (s *ListenSocket) Port() int { return 0 }
