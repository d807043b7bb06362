// config/config.go
// Author: momentics <momentics@gmail.com>
//
// Process configuration, loaded with go-zero conf from YAML/JSON/TOML files.
// Only the command imports this package; go-zero's conf pulls in its proc
// package, which installs process-wide signal handlers on init.

package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"

	"github.com/momentics/webserv/api"
	"github.com/momentics/webserv/control"
)

// DebugEnv forces debug logging when set to any non-empty value.
const DebugEnv = "DEBUG"

// Config holds the server configuration.
type Config struct {
	Port        int               `json:",default=8080"`
	BindAddr    string            `json:",optional"`
	Backlog     int               `json:",default=0"` // 0 selects SOMAXCONN
	ReuseAddr   bool              `json:",default=true"`
	PollTimeout time.Duration     `json:",default=1s"`
	Backend     string            `json:",default=poll,options=poll|epoll"`
	AcceptBatch int               `json:",default=1"` // <= 0 accepts until would-block
	Log         control.LogConfig `json:",optional"`
	Control     ControlConfig     `json:",optional"`
}

// ControlConfig configures the HTTP control surface. Empty Addr disables it.
type ControlConfig struct {
	Addr string `json:",optional"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:        8080,
		ReuseAddr:   true,
		PollTimeout: time.Second,
		Backend:     "poll",
		AcceptBatch: 1,
		Log:         control.LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path into a Config. An empty path yields the defaults.
// The DEBUG environment variable is applied and the result checked.
func Load(path string) (Config, error) {
	var c Config
	var err error
	if path == "" {
		err = conf.LoadFromJsonBytes([]byte("{}"), &c)
	} else {
		err = conf.Load(path, &c, conf.UseEnv())
	}
	if err != nil {
		return Config{}, api.Wrap(api.KindConfig, "load", err)
	}
	c.fillDefaults()
	c.ApplyEnv()
	if err := c.Check(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// fillDefaults covers the optional nested sections, which conf leaves zeroed
// when the section is absent.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if os.Getenv(DebugEnv) != "" {
		c.Log.Level = "debug"
	}
}

// Check reports the first invalid setting as a KindConfig error. It is not
// named Validate: conf calls Validate right after unmarshalling, before the
// nested defaults are filled.
func (c *Config) Check() error {
	switch {
	case c.Port < 0 || c.Port > 0xffff:
		return configError("Port", fmt.Sprintf("%d out of range", c.Port))
	case c.Backlog < 0:
		return configError("Backlog", "must not be negative")
	case c.PollTimeout <= 0:
		return configError("PollTimeout", "must be positive")
	}
	switch c.Backend {
	case "poll", "epoll":
	default:
		return configError("Backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.BindAddr != "" {
		ip, err := netip.ParseAddr(c.BindAddr)
		if err != nil || !ip.Is4() {
			return configError("BindAddr", fmt.Sprintf("%q is not an IPv4 address", c.BindAddr))
		}
	}
	if _, err := control.ParseLevel(c.Log.Level); err != nil {
		return configError("Log.Level", err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return configError("Log.Format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}

func configError(field, msg string) error {
	return api.NewError(api.KindConfig, "validate", field+": "+msg)
}
