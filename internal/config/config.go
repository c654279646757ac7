// Package config loads the sdc CLI configuration file. The file is HCL
// and holds named connection profiles so operators can switch between
// datacenters and accounts without retyping credentials.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config represents the parsed CLI configuration.
type Config struct {
	// DefaultProfile names the profile used when -profile is not given.
	DefaultProfile string `hcl:"default_profile,optional"`

	Profiles []Profile `hcl:"profile,block"`
}

// Profile is one named set of connection settings.
type Profile struct {
	Name string `hcl:"name,label"`

	// Location selects a datacenter by name; URL overrides it with an
	// explicit endpoint.
	Location string `hcl:"location,optional"`
	URL      string `hcl:"url,optional"`

	Login       string `hcl:"login,optional"`
	KeyID       string `hcl:"key_id,optional"`
	KeyPath     string `hcl:"key_path,optional"`
	Fingerprint string `hcl:"fingerprint,optional"`
	AllowAgent  bool   `hcl:"allow_agent,optional"`
	Insecure    bool   `hcl:"insecure,optional"`
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path is required")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate profile %q in %s", p.Name, path)
		}
		seen[p.Name] = true
	}
	if cfg.DefaultProfile != "" && !seen[cfg.DefaultProfile] {
		return nil, fmt.Errorf("default_profile %q not defined in %s", cfg.DefaultProfile, path)
	}

	return &cfg, nil
}

// Profile returns the named profile. An empty name falls back to
// default_profile, and then to the lone profile when only one exists.
func (c *Config) Profile(name string) (*Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" {
		if len(c.Profiles) == 1 {
			return &c.Profiles[0], nil
		}
		return nil, fmt.Errorf("no profile selected and no default_profile set")
	}
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile %q not found", name)
}
