// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Default hooks.

package reactor

import (
	"errors"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/valyala/bytebufferpool"

	"github.com/momentics/webserv/api"
)

const (
	defaultDrainChunk  = 4096
	defaultDrainBudget = 64 << 10
)

var drainPool bytebufferpool.Pool

// DrainHandler reads what the client sent without blocking, hands it to Sink
// and logs the byte count. At most MaxBytes are consumed per hook; the rest
// is dropped with the connection. Writable readiness is only logged.
type DrainHandler struct {
	Log      zerolog.Logger
	BufSize  int // read size per call, defaults to 4096
	MaxBytes int // per-hook budget, defaults to 64 KiB
	// Sink receives the drained bytes. data is pooled and only valid for
	// the duration of the call.
	Sink func(fd int, data []byte)
}

// OnReadable consumes pending input until the socket would block, closes, or
// the budget is spent.
func (h DrainHandler) OnReadable(c api.Conn) {
	chunk, budget := h.BufSize, h.MaxBytes
	if chunk <= 0 {
		chunk = defaultDrainChunk
	}
	if budget <= 0 {
		budget = defaultDrainBudget
	}
	bb := drainPool.Get()
	defer drainPool.Put(bb)

	var err error
	for len(bb.B) < budget {
		want := min(chunk, budget-len(bb.B))
		bb.B = slices.Grow(bb.B, want)
		var n int
		n, err = c.Read(bb.B[len(bb.B) : len(bb.B)+want])
		bb.B = bb.B[:len(bb.B)+n]
		if err != nil || n == 0 {
			break
		}
	}

	if h.Sink != nil && bb.Len() > 0 {
		h.Sink(c.FD(), bb.B)
	}
	ev := h.Log.Debug().Int("fd", c.FD()).Int("bytes", bb.Len()).Bool("truncated", bb.Len() >= budget)
	if err != nil && !errors.Is(err, api.ErrWouldBlock) && !errors.Is(err, io.EOF) {
		ev = ev.AnErr("read_err", err)
	}
	ev.Msg("drained client input")
}

// OnWritable does nothing beyond logging.
func (h DrainHandler) OnWritable(c api.Conn) {
	h.Log.Debug().Int("fd", c.FD()).Msg("client writable")
}

var _ api.Handler = DrainHandler{}
