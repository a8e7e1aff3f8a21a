// Package main implements kplexmux, an any-to-any NMEA-0183 sentence
// multiplexer. It reads an INI-style configuration file and/or positional
// type:key=value,... endpoint specifications, brings up one endpoint per
// configured interface, and fans sentences received on any input out to
// every output, until a shutdown signal tears the topology back down.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/metric"
	"github.com/kplex-io/kplexmux/supervisor"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, buf[:n])
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("kplexmux exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cli, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	if cli.ShowVersion {
		fmt.Printf("%s version %s (built %s)\n", appName, Version, BuildTime)
		return nil
	}
	if cli.ShowHelp {
		printUsage()
		return nil
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if len(cfg.Interfaces) == 0 {
		return fmt.Errorf("no interfaces configured: supply a config file (-f) or positional type:key=value specs")
	}

	logger := setupLogger(cli.LogFormat, facilityFor(cli, cfg))
	slog.SetDefault(logger)
	logger.Info("starting kplexmux", "version", Version, "interfaces", len(cfg.Interfaces), "queue_size", cfg.Global.QueueSize)

	if cfg.Global.Background {
		silenceStdin()
	}

	metricsRegistry := metric.NewMetricsRegistry()

	if cli.HealthPort > 0 {
		srv := metric.NewServer(cli.HealthPort, "/metrics", metricsRegistry, "", "")
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sup := supervisor.New(cfg, buildRegistry(), metricsRegistry.CoreMetrics(), logger)
	if err := sup.Run(ctx); err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	logger.Info("kplexmux shutdown complete")
	return nil
}

// loadConfig resolves and parses the configuration file (if any), applies
// CLI overrides (-q/-l/-b win over the file, matching kplex.c's precedence
// of command-line options over config-file [global] values), then appends
// any positional endpoint specs after the file's interfaces.
func loadConfig(cli *config.CLIConfig) (*config.Config, error) {
	var cfg *config.Config

	if path, ok := config.ResolveConfigPath(cli.ConfigPath); ok {
		parsed, err := config.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = parsed
	} else {
		cfg = &config.Config{Global: config.DefaultGlobal()}
	}

	if cli.QueueSize > 0 {
		cfg.Global.QueueSize = cli.QueueSize
	}
	if cli.Facility != "" {
		cfg.Global.LogFacility = cli.Facility
	}
	if cli.Background {
		cfg.Global.Background = true
	}

	for _, spec := range cli.Args {
		ifc, err := config.ParseArg(spec)
		if err != nil {
			return nil, fmt.Errorf("parse interface spec %q: %w", spec, err)
		}
		cfg.Interfaces = append(cfg.Interfaces, ifc)
	}

	return cfg, nil
}

func facilityFor(cli *config.CLIConfig, cfg *config.Config) string {
	if cli.Facility != "" {
		return cli.Facility
	}
	return cfg.Global.LogFacility
}

// silenceStdin approximates kplex.c's -b detach-from-terminal behavior.
// True daemonization (double fork, setsid) is left to the service manager
// running kplexmux, which is the idiomatic Go answer to backgrounding a
// process; this only drops the controlling terminal's stdin.
func silenceStdin() {
	f, err := os.Open(os.DevNull)
	if err != nil {
		return
	}
	os.Stdin.Close()
	os.Stdin = f
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `%s - any-to-any NMEA-0183 sentence multiplexer

Usage: %s [flags] [type:key=value,... ...]

Flags:
  -f <path>        configuration file (default: $KPLEXCONF, ~/.kplex.conf, /etc/kplex.conf)
  -q <n>           central queue size override
  -l <facility>    syslog facility to log to
  -b               run detached from the controlling terminal
  -log-format      log output format: text, json, or syslog
  -health-port     port to serve /metrics and /health on (0 disables)
  -version         print version and exit
  -help            print this message and exit

Positional arguments are additional endpoint specs appended after the
config file's interfaces, e.g. tcp:direction=out,address=127.0.0.1:10110

Version: %s
Build: %s
`, appName, appName, Version, BuildTime)
}
