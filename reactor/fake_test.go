//go:build unix

package reactor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/webserv/api"
	"github.com/momentics/webserv/poller"
	"github.com/momentics/webserv/transport/tcp"
)

// step is one scripted Wait result.
type step struct {
	ready []poller.Readiness
	err   error
	do    func() // runs inside Wait before it returns
}

// scriptPoller replays steps and requests shutdown once they run out.
type scriptPoller struct {
	flag     *ShutdownFlag
	steps    []step
	interest map[int]poller.Events
	removed  []int
	failAdd  map[int]error
	timeouts []time.Duration
	closed   int
}

func newScriptPoller(flag *ShutdownFlag, steps ...step) *scriptPoller {
	return &scriptPoller{
		flag:     flag,
		steps:    steps,
		interest: make(map[int]poller.Events),
		failAdd:  make(map[int]error),
	}
}

func (p *scriptPoller) Add(fd int, ev poller.Events) error {
	if err, ok := p.failAdd[fd]; ok {
		return err
	}
	if _, ok := p.interest[fd]; ok {
		return poller.ErrAlreadyRegistered
	}
	p.interest[fd] = ev
	return nil
}

func (p *scriptPoller) Modify(fd int, ev poller.Events) error {
	if _, ok := p.interest[fd]; !ok {
		return poller.ErrNotRegistered
	}
	p.interest[fd] = ev
	return nil
}

func (p *scriptPoller) Remove(fd int) error {
	if _, ok := p.interest[fd]; !ok {
		return poller.ErrNotRegistered
	}
	delete(p.interest, fd)
	p.removed = append(p.removed, fd)
	return nil
}

func (p *scriptPoller) Wait(ready []poller.Readiness, timeout time.Duration) (int, error) {
	if p.closed > 0 {
		return 0, poller.ErrClosed
	}
	p.timeouts = append(p.timeouts, timeout)
	if len(p.steps) == 0 {
		p.flag.Request()
		return 0, nil
	}
	s := p.steps[0]
	p.steps = p.steps[1:]
	if s.do != nil {
		s.do()
	}
	return copy(ready, s.ready), s.err
}

func (p *scriptPoller) Len() int { return len(p.interest) }

func (p *scriptPoller) Close() error {
	p.closed++
	return nil
}

// fakeListener hands out queued connections. Its descriptor is a real pipe
// end so closure can be checked.
type fakeListener struct {
	fd        int
	peer      int
	pending   []tcp.Accepted
	acceptErr error
	accepts   int
	closes    int
}

func newFakeListener(t *testing.T) *fakeListener {
	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe(p[:]))
	t.Cleanup(func() {
		_ = unix.Close(p[1])
		if fdOpen(p[0]) {
			_ = unix.Close(p[0])
		}
	})
	return &fakeListener{fd: p[0], peer: p[1]}
}

func (l *fakeListener) FD() int { return l.fd }

func (l *fakeListener) Accept() (tcp.Accepted, bool, error) {
	l.accepts++
	if l.acceptErr != nil {
		return tcp.Accepted{}, false, l.acceptErr
	}
	if len(l.pending) == 0 {
		return tcp.Accepted{}, false, nil
	}
	a := l.pending[0]
	l.pending = l.pending[1:]
	return a, true, nil
}

func (l *fakeListener) Close() error {
	l.closes++
	if l.closes == 1 {
		return unix.Close(l.fd)
	}
	return nil
}

// queue adds a fresh socketpair; the returned int is the far end, kept by
// the test.
func (l *fakeListener) queue(t *testing.T) (client, far int) {
	t.Helper()
	sp, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(sp[0], true))
	t.Cleanup(func() {
		_ = unix.Close(sp[1])
		if fdOpen(sp[0]) {
			_ = unix.Close(sp[0])
		}
	})
	l.pending = append(l.pending, tcp.Accepted{FD: sp[0], Peer: "test"})
	return sp[0], sp[1]
}

func fdOpen(fd int) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == nil
}

// recorder logs hook calls and fails on re-entrant dispatch.
type recorder struct {
	t      *testing.T
	mu     sync.Mutex
	depth  int
	calls  []string
	fds    []int
	before func(kind string, c api.Conn)
}

func (h *recorder) hook(kind string, c api.Conn) {
	h.mu.Lock()
	h.depth++
	require.Equal(h.t, 1, h.depth, "hook invoked re-entrantly")
	h.calls = append(h.calls, kind)
	h.fds = append(h.fds, c.FD())
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.depth--
		h.mu.Unlock()
	}()
	if h.before != nil {
		h.before(kind, c)
	}
}

func (h *recorder) OnReadable(c api.Conn) { h.hook("read", c) }
func (h *recorder) OnWritable(c api.Conn) { h.hook("write", c) }

func ready(fd int, ev poller.Events) poller.Readiness {
	return poller.Readiness{FD: fd, Events: ev}
}

type harness struct {
	flag *ShutdownFlag
	ln   *fakeListener
	p    *scriptPoller
	h    *recorder
	reg  *prometheus.Registry
}

func newHarness(t *testing.T) *harness {
	flag := &ShutdownFlag{}
	return &harness{
		flag: flag,
		ln:   newFakeListener(t),
		p:    newScriptPoller(flag),
		h:    &recorder{t: t},
		reg:  prometheus.NewRegistry(),
	}
}

// counter reads a counter from the registry, optionally filtering by one
// label value. Missing series read as zero.
func counter(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

var errBoom = errors.New("boom")
