// File: api/handler.go
// Package api defines the connection handle and the readiness hooks.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Conn is the handle passed to readiness hooks. It is only valid for the
// duration of the hook; the reactor closes it afterwards.
type Conn interface {
	// FD returns the underlying non-blocking descriptor.
	FD() int
	// Peer returns the remote address as "ip:port", or "" if unknown.
	Peer() string
	// Read reads available bytes. It returns ErrWouldBlock when none are pending.
	Read(p []byte) (int, error)
	// Write writes as much of p as the socket accepts without blocking.
	Write(p []byte) (int, error)
}

// Handler receives readiness notifications for client connections.
// Hooks run on the reactor's execution context and must not block.
type Handler interface {
	OnReadable(c Conn)
	OnWritable(c Conn)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are no-ops.
type HandlerFuncs struct {
	Readable func(Conn)
	Writable func(Conn)
}

func (h HandlerFuncs) OnReadable(c Conn) {
	if h.Readable != nil {
		h.Readable(c)
	}
}

func (h HandlerFuncs) OnWritable(c Conn) {
	if h.Writable != nil {
		h.Writable(c)
	}
}

var _ Handler = HandlerFuncs{}
