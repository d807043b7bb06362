package poller

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// A signal landing on the thread blocked in Wait must surface as
// ErrInterrupted. SIGURG is handled by the runtime and ignored otherwise,
// and tgkill targets the waiting thread directly.
func TestWaitInterruptedBySignal(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p Poller) {
		r, _ := pipe(t)
		require.NoError(t, p.Add(r, EventRead))

		tids := make(chan int, 1)
		result := make(chan error, 1)
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			tids <- unix.Gettid()
			n, err := p.Wait(make([]Readiness, 4), 10*time.Second)
			if err == nil && n > 0 {
				t.Errorf("pipe reported ready without data: %d", n)
			}
			result <- err
		}()
		tid := <-tids

		tick := time.NewTicker(5 * time.Millisecond)
		defer tick.Stop()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case err := <-result:
				assert.ErrorIs(t, err, ErrInterrupted)
				return
			case <-tick.C:
				// early signals arrive before the thread enters the wait; keep sending
				_ = unix.Tgkill(unix.Getpid(), tid, unix.SIGURG)
			case <-deadline:
				t.Fatal("Wait was not interrupted")
			}
		}
	})
}
