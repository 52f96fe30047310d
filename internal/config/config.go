// Package config provides configuration loading and structs for the katalog server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog source kinds.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Search  SearchConfig  `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig selects where products are loaded from.
type CatalogConfig struct {
	// Source is one of "embedded", "file" or "sqlite".
	Source string `yaml:"source"`
	// Path is the catalog file (.yaml, .yml, .json, .xlsx) or SQLite database.
	Path string `yaml:"path"`
	// Watch reloads the catalog when a file source changes on disk.
	Watch bool `yaml:"watch"`
}

// SearchConfig holds search and rendering settings.
type SearchConfig struct {
	ParseCacheSize    int    `yaml:"parse_cache_size"`
	DefaultMode       string `yaml:"default_mode"`
	DescriptionLength int    `yaml:"description_length"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Catalog.Path != "" {
		cfg.Catalog.Path = expandPath(cfg.Catalog.Path, filepath.Dir(path))
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks settings that have no sensible default.
func Validate(cfg *Config) error {
	switch cfg.Catalog.Source {
	case SourceEmbedded:
	case SourceFile, SourceSQLite:
		if cfg.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for source %q", cfg.Catalog.Source)
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", cfg.Catalog.Source)
	}
	switch cfg.Search.DefaultMode {
	case "natural", "facet", "combined":
	default:
		return fmt.Errorf("unknown search.default_mode %q", cfg.Search.DefaultMode)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
