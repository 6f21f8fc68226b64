package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the project configuration.
type Config struct {
	Environments map[string]map[string]any `yaml:"environments,omitempty"`
	Defaults     Defaults                  `yaml:"defaults,omitempty"`
	History      History                   `yaml:"history,omitempty"`
}

// Defaults are option defaults applied when neither the file's
// [Options] section nor a CLI flag sets a value.
type Defaults struct {
	Insecure    *bool `yaml:"insecure,omitempty"`
	Location    *bool `yaml:"location,omitempty"`
	MaxRedirect *int  `yaml:"max_redirect,omitempty"`
	Repeat      *int  `yaml:"repeat,omitempty"`
	Timeout     int   `yaml:"timeout,omitempty"` // milliseconds
}

// History configures the run-history store. An empty path disables
// recording.
type History struct {
	Path string `yaml:"path,omitempty"`
}

// ConfigFilenames contains the possible config file names, in lookup
// order.
var ConfigFilenames = []string{
	".volley.yml",
	".volley.yaml",
	"volley.yml",
	"volley.yaml",
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from the specified path, or searches
// the current directory when the path is empty.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory.
// A missing file is not an error; defaults are returned.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	return config, nil
}

// Environment returns the variable map for a named environment. The
// empty name selects no environment and returns an empty map.
func (c *Config) Environment(name string) (map[string]any, error) {
	if name == "" {
		return map[string]any{}, nil
	}
	vars, ok := c.Environments[name]
	if !ok {
		return nil, fmt.Errorf("environment %q is not defined in the config", name)
	}
	result := make(map[string]any, len(vars))
	for k, v := range vars {
		result[k] = v
	}
	return result, nil
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func getInt(i *int, defaultVal int) int {
	if i == nil {
		return defaultVal
	}
	return *i
}

// GetInsecure returns the insecure setting, defaulting to false.
func (d Defaults) GetInsecure() bool {
	return getBool(d.Insecure, false)
}

// GetLocation returns the follow-redirects setting, defaulting to false.
func (d Defaults) GetLocation() bool {
	return getBool(d.Location, false)
}

// GetMaxRedirect returns the redirect limit, defaulting to 10.
func (d Defaults) GetMaxRedirect() int {
	return getInt(d.MaxRedirect, 10)
}

// GetRepeat returns the repeat count, defaulting to 1.
func (d Defaults) GetRepeat() int {
	return getInt(d.Repeat, 1)
}

// GetTimeout returns the request timeout, defaulting to 30 seconds.
func (d Defaults) GetTimeout() time.Duration {
	if d.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(d.Timeout) * time.Millisecond
}
