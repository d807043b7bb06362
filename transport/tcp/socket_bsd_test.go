//go:build unix && !linux

package tcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/webserv/api"
)

func TestAcceptNonblockFailureClosesClient(t *testing.T) {
	s := listening(t)
	dial(t, s.Port())

	var client int
	setNonblock = func(fd int, nonblocking bool) error {
		client = fd
		return unix.EINVAL
	}
	t.Cleanup(func() { setNonblock = unix.SetNonblock })

	deadline := time.Now().Add(2 * time.Second)
	var err error
	for time.Now().Before(deadline) {
		var ok bool
		_, ok, err = s.Accept()
		if ok || err != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, api.KindSocket)
	assert.NotZero(t, client)
	assert.False(t, fdOpen(client), "accepted descriptor leaked")
}
