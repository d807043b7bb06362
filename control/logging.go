// control/logging.go
// Author: momentics <momentics@gmail.com>
//
// Leveled zerolog construction.

package control

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/webserv/api"
)

// LogConfig selects log level and output format. The tags are read by the
// config loader.
type LogConfig struct {
	Level  string `json:",default=info"`
	Format string `json:",default=console,options=console|json"`
}

// ParseLevel accepts debug, info, warn/warning and error.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds the process logger. A nil w writes to stderr.
func NewLogger(cfg LogConfig, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), api.Wrap(api.KindConfig, "logger", err)
	}
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
