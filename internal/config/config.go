package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models pitchline.yml: where the backing service lives and the
// defaults the CLI fills into new posts and searches.
type Config struct {
	Server struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"server"`
	Defaults struct {
		Region    string `yaml:"region"`
		SubRegion string `yaml:"sub_region"`
		Position  string `yaml:"position"`
		PageSize  int    `yaml:"page_size"`
	} `yaml:"defaults"`
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "pitchline.yml")
}

// Default returns the default config.
func Default() *Config {
	var cfg Config
	cfg.Server.URL = "http://127.0.0.1:8080/v0"
	cfg.Server.Timeout = 10 * time.Second
	cfg.Defaults.PageSize = 20
	return &cfg
}

// Load reads config from the workspace, falling back to defaults when the
// file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Unset fields
// keep their defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("config.server.url is required")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("config.server.timeout must not be negative")
	}
	if c.Defaults.PageSize < 0 {
		return fmt.Errorf("config.defaults.page_size must not be negative")
	}
	return nil
}
