// Package config loads the project configuration: which language servers
// to launch and how aggressively to re-pull diagnostics.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up at the workspace
// root.
const FileName = "quill.toml"

// Config is the root of quill.toml.
type Config struct {
	Editor  Editor         `toml:"editor"`
	Servers []ServerConfig `toml:"language-server"`
}

// Editor holds the diagnostics timing knobs, in milliseconds. Zero
// values mean "use the default".
type Editor struct {
	DiagnosticsDebounceMS int `toml:"diagnostics-debounce-ms"`
	DiagnosticsSweepMS    int `toml:"diagnostics-sweep-ms"`
	DiagnosticsRetryMS    int `toml:"diagnostics-retry-ms"`
}

// ServerConfig describes one language server to launch.
type ServerConfig struct {
	Name      string   `toml:"name"`
	Command   string   `toml:"command"`
	Args      []string `toml:"args"`
	Languages []string `toml:"languages"`
}

// Load reads the configuration file at path. A missing file yields the
// zero configuration, which is valid and runs with defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects server entries that cannot be launched.
func (c Config) Validate() error {
	seen := make(map[string]struct{})
	for _, server := range c.Servers {
		if server.Name == "" {
			return fmt.Errorf("language-server entry without a name")
		}
		if server.Command == "" {
			return fmt.Errorf("language-server %q has no command", server.Name)
		}
		if _, dup := seen[server.Name]; dup {
			return fmt.Errorf("duplicate language-server name %q", server.Name)
		}
		seen[server.Name] = struct{}{}
	}
	return nil
}

// DebounceDelay returns the per-document debounce, or zero when unset.
func (e Editor) DebounceDelay() time.Duration {
	return time.Duration(e.DiagnosticsDebounceMS) * time.Millisecond
}

// SweepDelay returns the workspace sweep debounce, or zero when unset.
func (e Editor) SweepDelay() time.Duration {
	return time.Duration(e.DiagnosticsSweepMS) * time.Millisecond
}

// RetryDelay returns the server-requested retrigger delay, or zero when
// unset.
func (e Editor) RetryDelay() time.Duration {
	return time.Duration(e.DiagnosticsRetryMS) * time.Millisecond
}

// ServersForLanguage returns the configured servers claiming a language.
// An entry without a languages list claims everything.
func (c Config) ServersForLanguage(languageID string) []ServerConfig {
	var matched []ServerConfig
	for _, server := range c.Servers {
		if len(server.Languages) == 0 {
			matched = append(matched, server)
			continue
		}
		for _, lang := range server.Languages {
			if lang == languageID {
				matched = append(matched, server)
				break
			}
		}
	}
	return matched
}
