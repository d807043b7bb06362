// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp provides the non-blocking IPv4 listening socket the reactor
// multiplexes. Platform code lives in socket_unix.go / socket_other.go.

package tcp

import (
	"net/netip"

	"github.com/rs/zerolog"
)

// InvalidFD is the descriptor value of a closed or never-opened socket.
const InvalidFD = -1

// DefaultBacklog selects the platform maximum (SOMAXCONN) in StartListening.
const DefaultBacklog = 0

// Accepted describes one connection taken off the accept queue.
type Accepted struct {
	FD   int    // non-blocking, close-on-exec; owned by the caller
	Peer string // remote "ip:port"
}

// ListenOption customizes Listen.
type ListenOption func(*listenOptions)

type listenOptions struct {
	reuseAddr bool
	addr      [4]byte
	log       zerolog.Logger
}

func defaultListenOptions() listenOptions {
	return listenOptions{
		reuseAddr: true,
		log:       zerolog.Nop(),
	}
}

// WithReuseAddr toggles SO_REUSEADDR (enabled by default).
func WithReuseAddr(on bool) ListenOption {
	return func(o *listenOptions) {
		o.reuseAddr = on
	}
}

// WithBindAddr binds a specific IPv4 address instead of INADDR_ANY.
// Non-IPv4 addresses are ignored.
func WithBindAddr(ip netip.Addr) ListenOption {
	return func(o *listenOptions) {
		if ip.Is4() {
			o.addr = ip.As4()
		}
	}
}

// WithLogger sets the logger for socket lifecycle diagnostics.
func WithLogger(l zerolog.Logger) ListenOption {
	return func(o *listenOptions) {
		o.log = l
	}
}
