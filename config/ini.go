package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kplex-io/kplexmux/errors"
	"github.com/kplex-io/kplexmux/iface"
)

// sectionTypes maps a config-file section name or CLI type prefix to its
// iface.Type, the Go equivalent of options.c's name2type/iftypes table.
var sectionTypes = map[string]iface.Type{
	"global":    iface.Global,
	"file":      iface.FileIO,
	"serial":    iface.Serial,
	"tcp":       iface.TCP,
	"broadcast": iface.Broadcast,
	"pty":       iface.PTY,
	"seatalk":   iface.SeaTalk,
	"nats":      iface.NATS,
	"websocket": iface.WebSocket,
}

func typeFromName(name string) (iface.Type, bool) {
	t, ok := sectionTypes[strings.ToLower(name)]
	return t, ok
}

// ParseFile reads an entire kplex-style INI configuration file: an optional
// leading [global] section followed by any number of interface sections.
// Ported from parse_file; a missing [global] section gets DefaultGlobal(),
// matching get_default_global's fallback. A second [global] section is a
// fatal configuration error, matching parse_file's duplicate-global check.
func ParseFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "config", "ParseFile", "failed to open config file")
	}
	defer f.Close()

	return parse(f, path)
}

func parse(r io.Reader, source string) (*Config, error) {
	sc := newScanner(r)

	cfg := &Config{Global: DefaultGlobal()}
	sawGlobal := false

	for {
		name, line, err := sc.nextSection()
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "parse",
				fmt.Sprintf("%s: syntax error at line %d", source, line))
		}
		if name == "" {
			break // end of file
		}

		typ, ok := typeFromName(name)
		if !ok {
			return nil, errors.WrapInvalid(
				fmt.Errorf("unrecognised section type %q", name),
				"config", "parse", fmt.Sprintf("%s: line %d", source, line))
		}

		opts, err := sc.readOptions()
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "parse",
				fmt.Sprintf("%s: syntax error reading section %q", source, name))
		}

		if typ == iface.Global {
			if sawGlobal {
				return nil, errors.WrapInvalid(
					fmt.Errorf("duplicate [global] section"),
					"config", "parse", fmt.Sprintf("%s: line %d", source, line))
			}
			sawGlobal = true
			cfg.Global = globalFromOptions(opts, cfg.Global)
			continue
		}

		ifc, err := interfaceFromOptions(typ, opts)
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "parse",
				fmt.Sprintf("%s: interface at line %d", source, line))
		}
		cfg.Interfaces = append(cfg.Interfaces, ifc)
	}

	return cfg, nil
}

func interfaceFromOptions(typ iface.Type, opts map[string]string) (Interface, error) {
	ifc := Interface{Type: typ, Direction: iface.NONE, Options: map[string]string{}}

	for k, v := range opts {
		switch strings.ToLower(k) {
		case "direction":
			d, err := parseDirection(v)
			if err != nil {
				return Interface{}, err
			}
			ifc.Direction = d
		case "name":
			ifc.Name = v
		default:
			ifc.Options[k] = v
		}
	}

	if ifc.Direction == iface.NONE {
		return Interface{}, fmt.Errorf("must specify direction (in/out/both) for interface")
	}

	return ifc, nil
}

func globalFromOptions(opts map[string]string, base Global) Global {
	g := base
	for k, v := range opts {
		switch strings.ToLower(k) {
		case "qsize", "q", "queuesize":
			if n, err := strconv.Atoi(v); err == nil {
				g.QueueSize = n
			}
		case "logto":
			g.LogTo = v
			g.LogFacility = v
		case "mode":
			g.Background = strings.EqualFold(v, "background")
		}
	}
	return g
}

func parseDirection(s string) (iface.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return iface.IN, nil
	case "out":
		return iface.OUT, nil
	case "both":
		return iface.BOTH, nil
	default:
		return iface.NONE, fmt.Errorf("unrecognised direction %q", s)
	}
}

// ParseArg parses one positional CLI endpoint specification of the form
// "type:key=value,key=value,...", ported from parse_arg. As with config-file
// sections, a direction is required; a CLI spec gives it inline as one of the
// comma-separated key=value pairs.
func ParseArg(arg string) (Interface, error) {
	idx := strings.IndexByte(arg, ':')
	if idx < 0 {
		return Interface{}, fmt.Errorf("malformed interface spec %q: missing ':'", arg)
	}

	typeName, rest := arg[:idx], arg[idx+1:]
	typ, ok := typeFromName(typeName)
	if !ok || typ == iface.Global {
		return Interface{}, fmt.Errorf("unrecognised interface type %q", typeName)
	}

	opts := map[string]string{}
	for _, kv := range splitArgList(rest) {
		if kv == "" {
			continue
		}
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return Interface{}, fmt.Errorf("malformed option %q in interface spec %q", kv, arg)
		}
		opts[k] = v
	}

	return interfaceFromOptions(typ, opts)
}

// splitArgList splits a comma-separated key=value list, matching parse_arg's
// ARGDELIM (',') field separator.
func splitArgList(s string) []string {
	return strings.Split(s, ",")
}

// scanner is a line-oriented reader implementing next_config's and
// get_interface_section's grammar: '#' starts a comment that runs to end of
// line, leading/trailing whitespace around var/val pairs is discarded, and
// values may be single- or double-quoted to contain literal whitespace.
type scanner struct {
	br   *bufio.Reader
	line int
}

func newScanner(r io.Reader) *scanner {
	return &scanner{br: bufio.NewReader(r)}
}

// nextSection discards blank/comment lines until it finds a "[name]"
// section header, returning the bracketed name (lower/upper preserved) and
// the line it was found on. It returns ("", line, nil) at end of file.
func (s *scanner) nextSection() (string, int, error) {
	for {
		raw, err := s.readLine()
		if err == io.EOF {
			return "", s.line, nil
		}
		if err != nil {
			return "", s.line, err
		}

		l := stripComment(raw)
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if !strings.HasPrefix(l, "[") {
			return "", s.line, fmt.Errorf("expected section header, found %q", l)
		}
		closeIdx := strings.IndexByte(l, ']')
		if closeIdx < 0 {
			return "", s.line, fmt.Errorf("unterminated section header %q", l)
		}
		name := strings.TrimSpace(l[1:closeIdx])
		if name == "" {
			return "", s.line, fmt.Errorf("empty section header")
		}
		return name, s.line, nil
	}
}

// readOptions reads var=val pairs until a blank-before-section boundary: a
// line starting with '[' terminates the section without being consumed (the
// next nextSection call will see it), matching next_config's "var=NULL,
// return(0)" section-header lookahead.
func (s *scanner) readOptions() (map[string]string, error) {
	opts := map[string]string{}

	for {
		peeked, err := s.br.Peek(1)
		if err == io.EOF {
			return opts, nil
		}
		if len(peeked) > 0 && peeked[0] == '[' {
			return opts, nil
		}

		raw, err := s.readLine()
		if err == io.EOF {
			return opts, nil
		}
		if err != nil {
			return nil, err
		}

		l := stripComment(raw)
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}

		k, v, err := parseVarVal(l)
		if err != nil {
			return nil, err
		}
		opts[k] = v
	}
}

func (s *scanner) readLine() (string, error) {
	line, err := s.br.ReadString('\n')
	if line != "" {
		s.line++
	}
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

func stripComment(s string) string {
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			inQuote = c
			continue
		}
		if c == '#' {
			return s[:i]
		}
	}
	return s
}

// parseVarVal splits a single config line into its var/val pair, supporting
// quoted values, matching next_config's grammar.
func parseVarVal(l string) (string, string, error) {
	eq := strings.IndexByte(l, '=')
	if eq < 0 {
		return "", "", fmt.Errorf("malformed config line %q: missing '='", l)
	}

	key := strings.TrimSpace(l[:eq])
	if key == "" {
		return "", "", fmt.Errorf("malformed config line %q: empty key", l)
	}

	val := strings.TrimSpace(l[eq+1:])
	if len(val) >= 2 && (val[0] == '\'' || val[0] == '"') {
		quote := val[0]
		if val[len(val)-1] != quote {
			return "", "", fmt.Errorf("malformed config line %q: unterminated quote", l)
		}
		val = val[1 : len(val)-1]
	}

	return key, val, nil
}
