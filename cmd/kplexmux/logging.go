package main

import (
	"log/slog"
	"os"
	"strings"
)

// setupLogger builds the process logger, ported from the teacher's
// setupLogger with the JSON-vs-text split kept, at a fixed Info level, and
// its "syslog" format routed to the platform syslog handler when available.
func setupLogger(format, facility string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "syslog":
		h, err := newSyslogHandler(facility, opts)
		if err != nil {
			handler = slog.NewTextHandler(os.Stderr, opts)
			slog.New(handler).Warn("syslog logging unavailable, falling back to stderr", "error", err)
		} else {
			handler = h
		}
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", appName, "version", Version, "pid", os.Getpid())
}
