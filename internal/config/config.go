// Package config loads hlintls settings from hlintls.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the working directory and in
// the user config directory.
const FileName = "hlintls.toml"

// DefaultDebounce is the quiet period collapsing a burst of edits into a
// single lint cycle.
const DefaultDebounce = 200 * time.Millisecond

// Config is the resolved configuration.
type Config struct {
	Tools Tools `toml:"tools"`
	Lint  Lint  `toml:"lint"`
}

// Tools names the external executables.
type Tools struct {
	// HLint is the linter executable path or name.
	HLint string `toml:"hlint"`
	// Refactor is the apply-refact executable path or name.
	Refactor string `toml:"refactor"`
	// TimeoutMs bounds one tool invocation. 0 disables the bound, which
	// matches the historical behavior of letting a hung tool hang its
	// document's pending cycle.
	TimeoutMs int `toml:"timeout_ms"`
	// StdinLint disables stdin streaming when false, for hlint versions
	// that can only lint saved files.
	StdinLint *bool `toml:"stdin_lint"`
}

// Lint tunes the lint loop.
type Lint struct {
	// DebounceMs is the per-document quiet period in milliseconds.
	DebounceMs int `toml:"debounce_ms"`
	// Flags are extra hlint arguments, e.g. ["--hint=relaxed"].
	Flags []string `toml:"flags"`
	// Cache toggles the on-disk lint result cache.
	Cache *bool `toml:"cache"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tools: Tools{HLint: "hlint", Refactor: "refactor"},
	}
}

// Load reads path and merges it over the defaults. A missing file is not
// an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Tools.HLint == "" {
		cfg.Tools.HLint = "hlint"
	}
	if cfg.Tools.Refactor == "" {
		cfg.Tools.Refactor = "refactor"
	}
	return cfg, nil
}

// Discover finds a config file next to the working directory or under the
// user config dir, returning "" when none exists.
func Discover() string {
	if wd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(wd, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "hlintls", FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Debounce returns the configured debounce window.
func (c Config) Debounce() time.Duration {
	if c.Lint.DebounceMs <= 0 {
		return DefaultDebounce
	}
	return time.Duration(c.Lint.DebounceMs) * time.Millisecond
}

// ToolTimeout returns the configured per-invocation bound, 0 for none.
func (c Config) ToolTimeout() time.Duration {
	if c.Tools.TimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.Tools.TimeoutMs) * time.Millisecond
}

// StdinLint reports whether buffers may be streamed on stdin.
func (c Config) StdinLint() bool {
	return c.Tools.StdinLint == nil || *c.Tools.StdinLint
}

// CacheEnabled reports whether the lint result cache is on.
func (c Config) CacheEnabled() bool {
	return c.Lint.Cache == nil || *c.Lint.Cache
}
