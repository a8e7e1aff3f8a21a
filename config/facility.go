package config

import (
	"fmt"
	"log/syslog"
	"strings"
)

// facilities maps the syslog facility names kplex.conf accepts to their
// syslog.Priority facility value. Ported from string2facility, but the
// local0..local7 mapping is re-derived from the actual LOG_LOCAL* constants
// rather than carrying over serial.c's "((int)*fac+5)-32" arithmetic, which
// produces the wrong facility for several of the eight local values.
var facilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"mail":     syslog.LOG_MAIL,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"lpr":      syslog.LOG_LPR,
	"news":     syslog.LOG_NEWS,
	"uucp":     syslog.LOG_UUCP,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

// StringToFacility resolves a config-file "logto" facility name into a
// syslog.Priority facility value.
func StringToFacility(name string) (syslog.Priority, error) {
	f, ok := facilities[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unrecognised syslog facility %q", name)
	}
	return f, nil
}
