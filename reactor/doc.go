// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-context event loop that owns the
// listening socket and every accepted client. One goroutine waits for
// readiness, dispatches hooks and mutates the descriptor set; the only state
// shared with other goroutines is the ShutdownFlag and a few published
// counters.
package reactor
