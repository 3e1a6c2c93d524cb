// Package logging builds the zerolog loggers used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the level, format and sinks of a logger.
type Options struct {
	Level  string    // trace, debug, info, warn, error; anything else is info
	Format string    // "console" (default) or "json"
	Out    io.Writer // defaults to stderr
	File   io.Writer // optional second sink, written without colour
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger from o. Timestamps are RFC3339 in UTC.
func New(o Options) zerolog.Logger {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	json := strings.EqualFold(o.Format, "json")

	var w io.Writer = out
	if !json {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if o.File != nil {
		var fw io.Writer = o.File
		if !json {
			fw = zerolog.ConsoleWriter{Out: o.File, TimeFormat: time.RFC3339, NoColor: true}
		}
		w = zerolog.MultiLevelWriter(w, fw)
	}

	return zerolog.New(w).Level(ParseLevel(o.Level)).With().Timestamp().Logger()
}

// FilePath names a per-session log file inside dir.
func FilePath(dir, tool string, start time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%s.log", tool, start.Format("20060102_150405")))
}
