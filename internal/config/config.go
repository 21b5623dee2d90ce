// Package config loads the optional mondot.toml configuration file
// that tunes the watcher and production dump behavior beyond what the
// command line exposes. Grounded on the teacher repo's use of
// BurntSushi/toml for its own settings file.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable knobs a MonDot deployment may want to set
// once and forget, rather than repeat on every invocation.
type Config struct {
	// WatchIntervalMS is the poll period the watcher uses between
	// directory scans. Defaults to 250ms.
	WatchIntervalMS int `toml:"watch_interval_ms"`

	// Extensions overrides the default script-file suffix set
	// (.mdot, .mondot, .mon).
	Extensions []string `toml:"extensions"`

	// ProductionDumpPath, if set, is where `--production` writes its
	// msgpack bytecode snapshot (spec §9 external interfaces).
	ProductionDumpPath string `toml:"production_dump_path"`

	// LiveReloadAddr, if set, is the address watch mode serves the
	// live-reload WebSocket broadcaster on (e.g. "127.0.0.1:7337").
	// Left empty, watch mode never starts that listener.
	LiveReloadAddr string `toml:"live_reload_addr"`
}

// Default returns the configuration a deployment gets with no
// mondot.toml present.
func Default() Config {
	return Config{
		WatchIntervalMS: 250,
		Extensions:      []string{".mdot", ".mondot", ".mon"},
	}
}

// Load reads mondot.toml from dir if present, overlaying it onto
// Default. A missing file is not an error — most deployments never
// need one.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, "mondot.toml")
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.WatchIntervalMS <= 0 {
		cfg.WatchIntervalMS = 250
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".mdot", ".mondot", ".mon"}
	}
	return cfg, nil
}
