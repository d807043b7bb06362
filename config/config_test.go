package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/webserv/api"
	"github.com/momentics/webserv/control"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(DebugEnv, "")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv(DebugEnv, "")
	path := writeConfig(t, "webserv.yaml", `
Port: 9090
Backlog: 64
PollTimeout: 250ms
Backend: epoll
AcceptBatch: 0
Log:
  Level: warn
  Format: json
Control:
  Addr: 127.0.0.1:9100
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, 64, c.Backlog)
	assert.Equal(t, 250*time.Millisecond, c.PollTimeout)
	assert.Equal(t, "epoll", c.Backend)
	assert.Equal(t, 0, c.AcceptBatch)
	assert.True(t, c.ReuseAddr)
	assert.Equal(t, control.LogConfig{Level: "warn", Format: "json"}, c.Log)
	assert.Equal(t, "127.0.0.1:9100", c.Control.Addr)
}

func TestLoadDebugEnv(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.KindConfig)
}

func TestCheck(t *testing.T) {
	cases := map[string]func(*Config){
		"port":      func(c *Config) { c.Port = 70000 },
		"backlog":   func(c *Config) { c.Backlog = -1 },
		"timeout":   func(c *Config) { c.PollTimeout = 0 },
		"backend":   func(c *Config) { c.Backend = "select" },
		"bind":      func(c *Config) { c.BindAddr = "::1" },
		"level":     func(c *Config) { c.Log.Level = "trace-ish" },
		"logformat": func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(&c)
			err := c.Check()
			require.Error(t, err)
			assert.ErrorIs(t, err, api.KindConfig)
		})
	}

	c := DefaultConfig()
	c.BindAddr = "127.0.0.1"
	assert.NoError(t, c.Check())
}

func TestLoadPortOnlyFileKeepsDefaults(t *testing.T) {
	t.Setenv(DebugEnv, "")
	c, err := Load(writeConfig(t, "webserv.yaml", "Port: 9000\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Port = 9000
	assert.Equal(t, want, c)
}

func TestLoadPartialLogSection(t *testing.T) {
	t.Setenv(DebugEnv, "")
	c, err := Load(writeConfig(t, "webserv.json", `{"Log": {"Level": "error"}}`))
	require.NoError(t, err)
	assert.Equal(t, control.LogConfig{Level: "error", Format: "console"}, c.Log)
}
