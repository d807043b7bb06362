package tcp

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustAddr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}

func TestListenOptions(t *testing.T) {
	o := defaultListenOptions()
	assert.True(t, o.reuseAddr)
	assert.Equal(t, [4]byte{}, o.addr)

	WithReuseAddr(false)(&o)
	WithBindAddr(mustAddr("10.1.2.3"))(&o)
	assert.False(t, o.reuseAddr)
	assert.Equal(t, [4]byte{10, 1, 2, 3}, o.addr)

	WithBindAddr(mustAddr("::1"))(&o)
	assert.Equal(t, [4]byte{10, 1, 2, 3}, o.addr, "IPv6 address must be ignored")
}
