package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by hdviz.
const (
	EnvConfig     = "HDVIZ_CONFIG"
	EnvResultsDir = "HDVIZ_RESULTS_DIR"
	EnvAssetsDir  = "HDVIZ_ASSETS_DIR"
	EnvStateDir   = "HDVIZ_STATE_DIR"
	EnvViewer     = "HDVIZ_VIEWER"
)

// LoadEnv loads .env from the working directory if present.
// Variables already set in the environment take precedence.
func LoadEnv() {
	_ = godotenv.Load()
}

// Resolve returns the config file to use: the explicit path if given, then
// $HDVIZ_CONFIG, then ./hdviz.yml. An empty result means "use defaults".
func Resolve(explicit string) string {
	if explicit != "" {
		return ExpandPath(explicit)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return ExpandPath(env)
	}
	if _, err := os.Stat(ConfigFile); err == nil {
		return ConfigFile
	}
	return ""
}

// LoadEffective resolves, loads and applies environment overrides.
// An explicitly named file must exist; otherwise a missing file means defaults.
func LoadEffective(explicit string) (*Config, error) {
	path := Resolve(explicit)

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			if explicit == "" && os.Getenv(EnvConfig) == "" && errors.Is(err, os.ErrNotExist) {
				loaded = Default()
			} else {
				return nil, err
			}
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides directory and viewer settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvResultsDir); v != "" {
		c.ResultsDir = ExpandPath(v)
	}
	if v := os.Getenv(EnvAssetsDir); v != "" {
		c.AssetsDir = ExpandPath(v)
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		c.StateDir = ExpandPath(v)
	}
	if v := os.Getenv(EnvViewer); v != "" {
		c.Viewer = v
	}
}
