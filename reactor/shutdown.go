// File: reactor/shutdown.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide shutdown request flag and termination signal wiring.

package reactor

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// FlagState is the value of a ShutdownFlag.
type FlagState int32

const (
	// FlagIdle means no signal handler has armed the flag yet.
	FlagIdle FlagState = iota
	// FlagRunning means the handler is installed and no stop was requested.
	FlagRunning
	// FlagShutdownRequested is terminal.
	FlagShutdownRequested
)

func (s FlagState) String() string {
	switch s {
	case FlagIdle:
		return "idle"
	case FlagRunning:
		return "running"
	case FlagShutdownRequested:
		return "shutdown-requested"
	}
	return "unknown"
}

// ShutdownFlag is a lock-free tri-state. Signal delivery only ever stores
// FlagShutdownRequested; the loop only loads it.
type ShutdownFlag struct {
	v atomic.Int32
}

// DefaultShutdownFlag is the process-wide flag used when no other is given.
var DefaultShutdownFlag = &ShutdownFlag{}

// State returns the current value.
func (f *ShutdownFlag) State() FlagState { return FlagState(f.v.Load()) }

// Requested reports whether shutdown was requested.
func (f *ShutdownFlag) Requested() bool { return f.State() == FlagShutdownRequested }

// Request marks shutdown requested. Safe from any goroutine.
func (f *ShutdownFlag) Request() { f.v.Store(int32(FlagShutdownRequested)) }

// arm moves Idle to Running; a pending request is left untouched.
func (f *ShutdownFlag) arm() { f.v.CompareAndSwap(int32(FlagIdle), int32(FlagRunning)) }

// InstallSignalHandler arms f and maps sigs (default SIGINT and SIGTERM) to a
// shutdown request. The returned func stops delivery; it is idempotent.
func InstallSignalHandler(f *ShutdownFlag, sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	f.arm()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				f.Request()
			case <-done:
				return
			}
		}
	}()

	return sync.OnceFunc(func() {
		signal.Stop(ch)
		close(done)
	})
}
