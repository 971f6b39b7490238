// Package config handles reading and writing .llpm/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .llpm/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	Project   ProjectConfig   `yaml:"project"`
	Storage   StorageConfig   `yaml:"storage"`
	Documents DocumentsConfig `yaml:"documents"`
}

// ProjectConfig identifies the project elicitation sessions belong to.
type ProjectConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"` // default domain for new sessions
}

// StorageConfig controls where session records are persisted.
type StorageConfig struct {
	Path string `yaml:"path"` // relative to the project root
}

// DocumentsConfig controls requirements document output.
type DocumentsConfig struct {
	OutputDir string `yaml:"output_dir"` // relative to the project root
}

// configFileName is the path relative to the project root.
const configDir = ".llpm"
const configFile = "config.yaml"

// ReadConfig reads .llpm/config.yaml from the given project directory.
// dir is the project root (not .llpm/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .llpm/config.yaml in the given project directory.
// Creates the .llpm/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Project: ProjectConfig{
			Domain: "general",
		},
		Storage: StorageConfig{
			Path: filepath.Join(configDir, "sessions.db"),
		},
		Documents: DocumentsConfig{
			OutputDir: filepath.Join(configDir, "docs"),
		},
	}
}

// StoragePath resolves the session database path against the project root.
func (c *Config) StoragePath(projectRoot string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(projectRoot, c.Storage.Path)
}

// DocumentsDir resolves the document output directory against the project root.
func (c *Config) DocumentsDir(projectRoot string) string {
	if filepath.IsAbs(c.Documents.OutputDir) {
		return c.Documents.OutputDir
	}
	return filepath.Join(projectRoot, c.Documents.OutputDir)
}
