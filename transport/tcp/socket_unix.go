//go:build unix

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - unix socket implementation over golang.org/x/sys/unix.

package tcp

import (
	"errors"
	"net/netip"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/momentics/webserv/api"
)

// setNonblock is swapped in tests to exercise the cleanup paths.
var setNonblock = unix.SetNonblock

// ListenSocket owns one non-blocking IPv4 stream socket. It is not safe for
// concurrent use; exactly one owner operates and closes it.
type ListenSocket struct {
	fd   int
	port int
	log  zerolog.Logger
}

// Listen creates a stream socket, sets it non-blocking and binds it to port.
// On failure the partially created descriptor is closed before returning.
func Listen(port int, opts ...ListenOption) (*ListenSocket, error) {
	o := defaultListenOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if port < 0 || port > 0xffff {
		return nil, api.NewError(api.KindSocket, "listen", "port out of range")
	}

	fd, err := newSocket()
	if err != nil {
		o.log.Error().Err(err).Msg("failed to create socket")
		return nil, api.Wrap(api.KindSocket, "socket", err)
	}

	fail := func(op string, err error) (*ListenSocket, error) {
		_ = unix.Close(fd)
		o.log.Error().Err(err).Str("op", op).Int("port", port).Msg("failed to initialize listening socket")
		return nil, api.Wrap(api.KindSocket, op, err)
	}

	if o.reuseAddr {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			return fail("setsockopt", err)
		}
	}
	if err := setNonblock(fd, true); err != nil {
		return fail("nonblock", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: o.addr}); err != nil {
		return fail("bind", err)
	}

	bound := port
	if sa, err := unix.Getsockname(fd); err == nil {
		if in4, ok := sa.(*unix.SockaddrInet4); ok {
			bound = in4.Port
		}
	}

	o.log.Debug().Int("fd", fd).Int("port", bound).Msg("socket bound")
	return &ListenSocket{fd: fd, port: bound, log: o.log}, nil
}

// StartListening marks the socket passive. backlog <= 0 selects SOMAXCONN.
func (s *ListenSocket) StartListening(backlog int) error {
	if s.fd == InvalidFD {
		return api.Wrap(api.KindSocket, "listen", api.ErrClosed)
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(s.fd, backlog); err != nil {
		s.log.Error().Err(err).Int("fd", s.fd).Msg("failed to listen on socket")
		return api.Wrap(api.KindSocket, "listen", err)
	}
	s.log.Info().Int("port", s.port).Int("backlog", backlog).Msg("socket listening for incoming connections")
	return nil
}

// Accept takes one pending connection. ok is false, with a nil error, when
// the accept would block or the pending connection vanished before it could
// be taken (EINTR, ECONNABORTED); the next readiness pass retries.
func (s *ListenSocket) Accept() (Accepted, bool, error) {
	if s.fd == InvalidFD {
		return Accepted{}, false, api.Wrap(api.KindSocket, "accept", api.ErrClosed)
	}
	nfd, sa, err := acceptConn(s.fd)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) ||
			errors.Is(err, unix.EINTR) || errors.Is(err, unix.ECONNABORTED) {
			return Accepted{}, false, nil
		}
		s.log.Error().Err(err).Int("fd", s.fd).Msg("failed to accept client")
		return Accepted{}, false, api.Wrap(api.KindSocket, "accept", err)
	}
	if !acceptSetsFlags {
		if err := setNonblock(nfd, true); err != nil {
			_ = unix.Close(nfd)
			s.log.Error().Err(err).Int("fd", nfd).Msg("failed to set client socket non-blocking")
			return Accepted{}, false, api.Wrap(api.KindSocket, "nonblock", err)
		}
	}
	a := Accepted{FD: nfd, Peer: sockaddrString(sa)}
	s.log.Debug().Int("fd", nfd).Str("peer", a.Peer).Msg("client accepted")
	return a, true, nil
}

// Close releases the descriptor. Later calls are no-ops.
func (s *ListenSocket) Close() error {
	if s.fd == InvalidFD {
		return nil
	}
	fd := s.fd
	s.fd = InvalidFD
	if err := unix.Close(fd); err != nil {
		return api.Wrap(api.KindSocket, "close", err)
	}
	s.log.Info().Int("fd", fd).Msg("listening socket closed")
	return nil
}

// FD returns the descriptor for readiness registration, or InvalidFD.
func (s *ListenSocket) FD() int { return s.fd }

// Port returns the bound port, resolved after bind so port 0 reports the
// kernel-chosen one.
func (s *ListenSocket) Port() int { return s.port }

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)).String()
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)).String()
	}
	return ""
}
