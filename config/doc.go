// Package config turns a kplexmux configuration file and its command-line
// flags into the in-memory Config the supervisor builds endpoints from.
//
// # File format
//
// The configuration file is an INI-like grammar: an optional [global]
// section followed by any number of typed interface sections ([tcp],
// [serial], [file], [broadcast], [pty], [seatalk], [nats], [websocket]).
// Each section holds "key=value" lines; values may be single- or
// double-quoted to contain literal whitespace, and '#' starts a comment
// that runs to end of line. The grammar is ported line-for-line from
// options.c's next_config/get_interface_section/parse_file state machines.
//
//	[global]
//	qsize=128
//	logto=local0
//
//	[tcp]
//	direction=out
//	port=10110
//
// A missing [global] section gets DefaultGlobal(); a second one is a fatal
// configuration error, matching parse_file's duplicate check. Every
// non-global section must set direction=in, direction=out, or
// direction=both.
//
// # Command line
//
// Flags are parsed by ParseFlags: -f selects the configuration file (or
// disables file loading with "-f -"), -q overrides the central queue size,
// -l sets the syslog facility, -b runs detached from the controlling
// terminal. Ambient flags -log-format, -health-port, -version and -help
// follow the rest of the kplex-io command-line convention. Any positional
// arguments after the flags are parsed by ParseArg as "type:key=value,..."
// endpoint specs and appended after the config file's own interfaces,
// matching main()'s argv handling.
//
// ResolveConfigPath reproduces get_def_config's fallback chain when -f is
// not given: $KPLEXCONF, then $HOME/.kplex.conf, then /etc/kplex.conf.
package config
