package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventsString(t *testing.T) {
	assert.Equal(t, "none", Events(0).String())
	assert.Equal(t, "read|write", (EventRead | EventWrite).String())
	assert.Equal(t, "error|hangup", (EventHangup | EventError).String())
}

func TestEventsHasAny(t *testing.T) {
	e := EventRead | EventHangup
	assert.True(t, e.Has(EventRead))
	assert.False(t, e.Has(EventRead|EventWrite))
	assert.True(t, e.Any(EventWrite|EventHangup))
	assert.False(t, e.Has(0))
}

func TestTimeoutMillis(t *testing.T) {
	assert.Equal(t, -1, timeoutMillis(-time.Second))
	assert.Equal(t, 0, timeoutMillis(0))
	assert.Equal(t, 1, timeoutMillis(time.Microsecond))
	assert.Equal(t, 1500, timeoutMillis(1500*time.Millisecond))
}
