// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named debug probes, dumped by the control surface at /debug/state.

package control

import (
	"sort"
	"sync"
)

// ProbeFunc returns a point-in-time value. It runs on the caller's goroutine,
// so it must only read data that is safe to read concurrently.
type ProbeFunc func() any

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]ProbeFunc
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]ProbeFunc),
	}
}

// RegisterProbe inserts or replaces a named probe. Nil registries ignore it.
func (dp *DebugProbes) RegisterProbe(name string, fn ProbeFunc) {
	if dp == nil || fn == nil {
		return
	}
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// Names returns the registered probe names in sorted order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
