package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the user-tunable behavior of the tracker.
type Config struct {
	File FileConfig `json:"file" yaml:"file"`
	Save SaveConfig `json:"save" yaml:"save"`
}

// FileConfig controls filenames and the fallback download location.
type FileConfig struct {
	// DefaultName is the suggested filename for new files.
	DefaultName string `json:"default_name" yaml:"default_name"`
	// DownloadDir receives one-shot copies when no direct file binding
	// is available.
	DownloadDir string `json:"download_dir" yaml:"download_dir"`
}

// SaveConfig controls persistence behavior.
type SaveConfig struct {
	// AutoSave runs a quiet save after every mutation, but only through
	// an already-bound file; it never prompts. Off by default: saving is
	// an explicit action, decoupled from editing.
	AutoSave bool `json:"auto_save" yaml:"auto_save"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on
// extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.File.DefaultName == "" {
		return fmt.Errorf("file.default_name is required")
	}
	if filepath.Ext(c.File.DefaultName) != ".db" {
		return fmt.Errorf("file.default_name must end in .db")
	}
	if filepath.Base(c.File.DefaultName) != c.File.DefaultName {
		return fmt.Errorf("file.default_name must be a bare filename")
	}
	if c.File.DownloadDir == "" {
		return fmt.Errorf("file.download_dir is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		File: FileConfig{
			DefaultName: "my_bonds.db",
			DownloadDir: ".",
		},
		Save: SaveConfig{
			AutoSave: false,
		},
	}
}
