// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds the tunable settings of the packaging tools. Every field has
// a working default; a config file only needs to name what it overrides.
type Config struct {
	// Location is the Artifact Registry location used for generic uploads.
	Location string `yaml:"location"`

	// DockerHost is the registry host whose credential helper gets
	// configured before artifact pushes.
	DockerHost string `yaml:"docker_host"`

	// NpmHost is the registry host configured before npm operations.
	NpmHost string `yaml:"npm_host"`

	// DefaultScope is the npm scope applied when a package name carries none.
	DefaultScope string `yaml:"default_scope"`

	// TimeoutSeconds bounds each external CLI invocation.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// GcloudBinary and NpmBinary name the external executables.
	GcloudBinary string `yaml:"gcloud_binary"`
	NpmBinary    string `yaml:"npm_binary"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Location:       "us-central1",
		DockerHost:     "us-central1-docker.pkg.dev",
		NpmHost:        "us-central1-npm.pkg.dev",
		DefaultScope:   "@observability",
		TimeoutSeconds: 300,
		GcloudBinary:   "gcloud",
		NpmBinary:      "npm",
	}
}

// Load reads a YAML config file and overlays it on the defaults. A missing
// file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- config path supplied by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Location == "" {
		return fmt.Errorf("location must not be empty")
	}
	return nil
}

// ConfigPath returns the config file path within the given config home
// directory. This is the injectable, testable form. For the standard XDG
// location, use DefaultPath.
func ConfigPath(configHome string) string {
	return filepath.Join(configHome, "packlane", "config.yaml")
}

// DefaultPath returns the default config file path using XDG base directory
// conventions.
func DefaultPath() string {
	return ConfigPath(xdg.ConfigHome)
}
