// File: reactor/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Live-set entry for one accepted client.

package reactor

import (
	"io"

	"github.com/momentics/webserv/api"
	"github.com/momentics/webserv/poller"
	"github.com/momentics/webserv/transport/tcp"
)

// Close reasons, also used as metric labels.
const (
	reasonHangup   = "hangup"
	reasonError    = "error"
	reasonRead     = "read"
	reasonWrite    = "write"
	reasonPanic    = "panic"
	reasonShutdown = "shutdown"
)

// conn is owned by the reactor. Hooks see it as api.Conn.
type conn struct {
	fd       int
	peer     string
	interest poller.Events
	seen     poller.Events // last observed readiness
	dead     bool          // marked for release at the end of the pass
	reason   string
}

func newConn(a tcp.Accepted) *conn {
	return &conn{
		fd:       a.FD,
		peer:     a.Peer,
		interest: poller.EventRead | poller.EventWrite,
	}
}

func (c *conn) FD() int      { return c.fd }
func (c *conn) Peer() string { return c.peer }

// Interest returns the registered interest flags.
func (c *conn) Interest() poller.Events { return c.interest }

// Readiness returns the flags observed in the current pass.
func (c *conn) Readiness() poller.Events { return c.seen }

// Read reads without blocking. A clean peer close yields io.EOF.
func (c *conn) Read(p []byte) (int, error) {
	if c.fd == tcp.InvalidFD {
		return 0, api.ErrClosed
	}
	n, err := sysRead(c.fd, p)
	switch {
	case err == nil && n == 0 && len(p) > 0:
		return 0, io.EOF
	case err == nil:
		return n, nil
	case isWouldBlock(err):
		return 0, api.ErrWouldBlock
	}
	return 0, api.Wrap(api.KindIO, "read", err)
}

// Write writes without blocking. A short write reports ErrWouldBlock.
func (c *conn) Write(p []byte) (int, error) {
	if c.fd == tcp.InvalidFD {
		return 0, api.ErrClosed
	}
	n, err := sysWrite(c.fd, p)
	switch {
	case err == nil && n < len(p):
		return n, api.ErrWouldBlock
	case err == nil:
		return n, nil
	case isWouldBlock(err):
		return 0, api.ErrWouldBlock
	}
	return 0, api.Wrap(api.KindIO, "write", err)
}

var _ api.Conn = (*conn)(nil)
