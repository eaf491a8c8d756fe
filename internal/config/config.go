// Package config loads the user's strapi-github configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside DefaultConfigDir.
const FileName = "config.yaml"

// Config represents the user's configuration file.
type Config struct {
	// Templates is the default template source: a local directory or a
	// go-getter URL. Empty means the templates built into the binary.
	Templates string `yaml:"templates"`
	// Events is the selection used with --defaults.
	Events []string `yaml:"events"`
	// Install controls dependency installation after setup.
	Install InstallConfig `yaml:"install"`
	// Env holds default values written to new .env entries.
	Env map[string]string `yaml:"env"`
}

// InstallConfig controls the dependency installation step.
type InstallConfig struct {
	Disabled       bool     `yaml:"disabled"`
	PackageManager string   `yaml:"package_manager"`
	Packages       []string `yaml:"packages"`
}

// DefaultConfigDir returns the default configuration directory, respecting XDG_CONFIG_HOME.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "strapi-github")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "strapi-github")
	}

	return filepath.Join(home, ".config", "strapi-github")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(DefaultConfigDir(), FileName)
}

// Load reads the config from the given path.
// If the file doesn't exist, it returns a zero-value config (no error).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}

		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return &cfg, nil
}
