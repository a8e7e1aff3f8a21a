//go:build linux || darwin

package main

import (
	"log/slog"
	"log/syslog"

	"github.com/kplex-io/kplexmux/config"
)

// newSyslogHandler opens a syslog writer at the given facility and wraps it
// in a text slog.Handler. Severity is fixed at LOG_INFO; slog's own level
// carries through the formatted message body instead, since log/syslog's
// Writer ties one priority to the whole connection rather than per message.
func newSyslogHandler(facility string, opts *slog.HandlerOptions) (slog.Handler, error) {
	fac, err := config.StringToFacility(facility)
	if err != nil {
		fac = syslog.LOG_USER
	}
	w, err := syslog.New(fac|syslog.LOG_INFO, appName)
	if err != nil {
		return nil, err
	}
	return slog.NewTextHandler(w, opts), nil
}
