// Package config loads and validates davtidy runtime configuration from a
// YAML file. Flags may override individual fields after loading; validation
// runs on the final merged values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"davtidy/pkg/sanitizer"
)

// WebDAV holds the remote endpoint settings.
type WebDAV struct {
	// Address is the WebDAV base URL, e.g.
	// https://cloud.example.com/remote.php/dav/files/alice/
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
}

// Config holds all runtime settings.
type Config struct {
	WebDAV WebDAV `yaml:"webdav"`

	// ReplaceWith substitutes invalid characters. Exactly one character.
	ReplaceWith string `yaml:"replace_with"`

	// Journal is the default path for the rename journal. Empty disables
	// journaling unless --journal is passed.
	Journal string `yaml:"journal"`
}

// Default returns a Config with defaults applied.
func Default() Config {
	return Config{ReplaceWith: string(sanitizer.DefaultSubstitute)}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "davtidy", "config.yaml"), nil
}

// Load reads and validates the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ReplaceWith == "" {
		cfg.ReplaceWith = string(sanitizer.DefaultSubstitute)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}

// Validate checks the merged configuration. Failures here are fatal setup
// errors; nothing remote has happened yet.
func (c Config) Validate() error {
	if c.WebDAV.Address == "" {
		return errors.New("webdav.address is required")
	}
	if c.WebDAV.Username == "" {
		return errors.New("webdav.username is required")
	}

	if utf8.RuneCountInString(c.ReplaceWith) != 1 {
		return fmt.Errorf("replace_with must be exactly one character, got %q", c.ReplaceWith)
	}
	if err := sanitizer.ValidateSubstitute(c.Substitute()); err != nil {
		return err
	}

	return nil
}

// Substitute returns the replacement character as a rune.
func (c Config) Substitute() rune {
	r, _ := utf8.DecodeRuneInString(c.ReplaceWith)
	return r
}
