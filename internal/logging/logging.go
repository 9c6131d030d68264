// Package logging builds the JSON line logger shared by the service.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a JSON logger writing one object per line to w.
// Timestamps are RFC3339Nano in loc. Unknown levels fall back to info.
func New(w io.Writer, level string, loc *time.Location) *log.Logger {
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		TimeFunction: func(t time.Time) time.Time {
			return t.In(loc)
		},
		Formatter: log.JSONFormatter,
	})
}

// Setup builds the process logger on stdout and installs it as the package default
// so that log.Info and friends from charmbracelet/log emit the same format.
func Setup(level, timezone string) (*log.Logger, *time.Location) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	l := New(os.Stdout, level, loc)
	log.SetDefault(l)
	if err != nil {
		l.Warn("unknown timezone, using UTC", "component", "logging", "timezone", timezone)
	}
	return l, loc
}

// Component returns a child logger tagged with the component name.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		l = log.Default()
	}
	return l.With("component", name)
}
