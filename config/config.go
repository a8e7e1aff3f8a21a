// Package config parses kplexmux's INI-style configuration file and
// command-line interface specifications into the in-memory shape the
// supervisor builds endpoints from. The grammar is ported from
// options.c's next_config/get_interface_section/parse_file/parse_arg state
// machines; no example repo carries an INI parser and gopkg.in/yaml.v3
// cannot express kplex's quoting/section/comma-list grammar, so this one
// piece of the ambient stack is built on the standard library rather than a
// third-party dependency.
package config

import (
	"sync"

	"github.com/kplex-io/kplexmux/iface"
)

// Global holds the settings that apply to the whole process rather than to
// any one interface: the central queue size, the syslog facility to log to,
// and whether to run detached from its controlling terminal.
type Global struct {
	QueueSize   int
	LogFacility string
	Background  bool
	LogTo       string
}

// DefaultQueueSize matches kplex's built-in default central queue depth.
const DefaultQueueSize = 64

// DefaultGlobal returns the built-in defaults used when no [global] section
// is present, mirroring get_default_global.
func DefaultGlobal() Global {
	return Global{QueueSize: DefaultQueueSize, LogFacility: "user"}
}

// Interface is one parsed [section] of the config file, or one parsed
// positional CLI endpoint spec. Options not recognized as common keys
// (direction, name) are left in Options, opaque to the core and resolved by
// the matching transport package.
type Interface struct {
	Type      iface.Type
	Direction iface.Direction
	Name      string
	Options   map[string]string
}

// Config is the fully parsed configuration: global settings plus the
// ordered list of interfaces to bring up, config-file entries first,
// followed by any positional CLI endpoint specs appended after them,
// exactly as kplex.c's main() appends argv endpoints after e_info->next.
type Config struct {
	Global     Global
	Interfaces []Interface
}

// SafeConfig is an atomically swappable, read-mostly handle to a Config.
// Readers call Get(); the supervisor calls Update after a reload. It is
// the teacher's immutable-snapshot-under-RWMutex idiom, rewired here to
// guard a parsed INI Config rather than a JSON service config.
type SafeConfig struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewSafeConfig wraps an already-parsed Config for safe concurrent access.
func NewSafeConfig(cfg *Config) *SafeConfig {
	return &SafeConfig{cfg: cfg}
}

// Get returns the current configuration snapshot.
func (s *SafeConfig) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update atomically replaces the configuration snapshot.
func (s *SafeConfig) Update(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}
