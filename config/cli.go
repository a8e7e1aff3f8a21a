package config

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds the parsed command-line flags, ported from kplex.c's
// getopt loop (-f, -q, -l, -b) and extended with the ambient flags every
// kplex-io command carries (log format, health port, version/help).
type CLIConfig struct {
	ConfigPath string
	QueueSize  int
	Facility   string
	Background bool

	LogFormat  string
	HealthPort int

	ShowVersion bool
	ShowHelp    bool

	// Args is the set of positional "type:key=value,..." endpoint specs
	// following the flags, appended after the config file's interfaces.
	Args []string
}

// ParseFlags parses args (typically os.Args[1:]) into a CLIConfig, falling
// back to environment variables for anything not given on the command line,
// matching the teacher's flags.go convention.
func ParseFlags(args []string) (*CLIConfig, error) {
	fs := flag.NewFlagSet("kplexmux", flag.ContinueOnError)

	cfg := &CLIConfig{}

	fs.StringVar(&cfg.ConfigPath, "f", getEnv("KPLEXCONF", ""),
		"path to configuration file (use \"-\" for none)")
	fs.IntVar(&cfg.QueueSize, "q", getEnvInt("KPLEX_QSIZE", 0),
		"central queue size override")
	fs.StringVar(&cfg.Facility, "l", getEnv("KPLEX_FACILITY", ""),
		"syslog facility to log to")
	fs.BoolVar(&cfg.Background, "b", getEnvBool("KPLEX_BACKGROUND", false),
		"run detached from the controlling terminal")

	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"),
		"log output format: text, json, or syslog")
	fs.IntVar(&cfg.HealthPort, "health-port", getEnvInt("HEALTH_PORT", 0),
		"port to serve /health and /metrics on (0 disables)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "print usage and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: kplexmux [flags] [type:key=value,... ...]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Args = fs.Args()
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}

// defaultConfigPaths mirrors get_def_config's fallback chain: $KPLEXCONF,
// then $HOME/.kplex.conf, then /etc/kplex.conf.
func defaultConfigPaths() []string {
	var paths []string
	if v := os.Getenv("KPLEXCONF"); v != "" {
		paths = append(paths, v)
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, home+"/.kplex.conf")
	}
	paths = append(paths, "/etc/kplex.conf")
	return paths
}

// ResolveConfigPath picks the configuration file to load: an explicit -f
// value if given (and not "-", which disables file loading), otherwise the
// first of defaultConfigPaths that exists.
func ResolveConfigPath(explicit string) (string, bool) {
	if explicit == "-" {
		return "", false
	}
	if explicit != "" {
		return explicit, true
	}
	for _, p := range defaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
