// Package api
// Author: momentics
//
// In-memory Conn for exercising handlers without sockets.

package api

import "sync"

// MockConn is a Conn backed by byte slices.
type MockConn struct {
	mu      sync.Mutex
	Desc    int
	Addr    string
	Inbound []byte
	Written []byte
	// ReadErr, when set, is returned once Inbound is exhausted instead of ErrWouldBlock.
	ReadErr error
}

func (m *MockConn) FD() int      { return m.Desc }
func (m *MockConn) Peer() string { return m.Addr }

func (m *MockConn) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Inbound) == 0 {
		if m.ReadErr != nil {
			return 0, m.ReadErr
		}
		return 0, ErrWouldBlock
	}
	n := copy(p, m.Inbound)
	m.Inbound = m.Inbound[n:]
	return n, nil
}

func (m *MockConn) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Written = append(m.Written, p...)
	return len(p), nil
}

var _ Conn = (*MockConn)(nil)
