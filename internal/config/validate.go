package config

import (
	"fmt"
	"strings"

	"github.com/donaldgifford/strapi-github/internal/events"
)

// validPackageManagers are the allowed install.package_manager values.
var validPackageManagers = map[string]bool{
	"npm":  true,
	"yarn": true,
	"pnpm": true,
}

// Validate checks a Config for unknown events and package managers.
func Validate(cfg *Config) error {
	for i, e := range cfg.Events {
		if !events.IsCandidate(e) {
			return fmt.Errorf("events[%d]: unknown event %q, must be one of: %s", i, e, strings.Join(events.Candidates(), ", "))
		}
	}

	pm := cfg.Install.PackageManager
	if pm != "" && !validPackageManagers[pm] {
		return fmt.Errorf("install.package_manager: invalid value %q, must be one of: npm, yarn, pnpm", pm)
	}

	for i, p := range cfg.Install.Packages {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("install.packages[%d]: package name is required", i)
		}
	}

	for k := range cfg.Env {
		if strings.TrimSpace(k) == "" || strings.ContainsAny(k, "= \t") {
			return fmt.Errorf("env: invalid variable name %q", k)
		}
	}

	return nil
}
