//go:build !linux && !darwin

package main

import (
	"fmt"
	"log/slog"
)

// newSyslogHandler reports unavailability on platforms without log/syslog;
// setupLogger falls back to a stderr text handler.
func newSyslogHandler(facility string, opts *slog.HandlerOptions) (slog.Handler, error) {
	return nil, fmt.Errorf("syslog logging is not supported on this platform")
}
