//go:build !linux && !darwin
// +build !linux,!darwin

// File: poller/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package poller

// NewPoll returns an error for unsupported platforms.
func NewPoll() (Poller, error) {
	return nil, ErrUnsupported
}
