// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that stop on request.
type GracefulShutdown interface {
	// Shutdown asks the component to stop. It must be safe to call from any
	// goroutine and must not block.
	Shutdown()
}
