package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a pipeline configuration from the given YAML file
// path, then applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches standard locations and loads the first config found.
// Search order: ./rfab.yaml, ~/.rfab/config.yaml
func LoadDefault() (*Config, error) {
	candidates := []string{"rfab.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".rfab", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no pipeline config found (searched: %v)", candidates)
}

// Default returns an empty config with defaults applied, for callers that
// assemble the design entirely from command-line flags.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in tool paths and stage timeouts left unset.
func applyDefaults(cfg *Config) {
	if cfg.Tools.Python == "" {
		cfg.Tools.Python = "python3"
	}
	if cfg.Tools.RFdiffusion == "" {
		cfg.Tools.RFdiffusion = "/home/src/rfantibody/scripts/rfdiffusion_inference.py"
	}
	if cfg.Tools.ProteinMPNN == "" {
		cfg.Tools.ProteinMPNN = "/home/src/rfantibody/scripts/proteinmpnn_interface_design.py"
	}
	if cfg.Tools.RF2 == "" {
		cfg.Tools.RF2 = "/home/src/rfantibody/scripts/rf2_predict.py"
	}
	if cfg.StageDefaults.Timeout == "" {
		cfg.StageDefaults.Timeout = "2h"
	}
	if cfg.Design.SeqsPerStruct <= 0 {
		cfg.Design.SeqsPerStruct = 1
	}
}

// Resolve converts every file path in the config to absolute form. The
// config for a run is fixed at this point: all stages see the same resolved
// paths regardless of the working directory they are launched from.
func (c *Config) Resolve() error {
	if c.resolved {
		return nil
	}

	paths := []*string{
		&c.Design.FrameworkPDB,
		&c.Design.TargetPDB,
		&c.OutputDir,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve path %q: %w", *p, err)
		}
		*p = abs
	}

	c.resolved = true
	return nil
}
