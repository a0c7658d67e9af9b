// Package config provides configuration loading for filedex.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML config
// file, FILEDEX_* environment variables, command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	dexerrors "github.com/filedex/filedex/internal/errors"
	"github.com/filedex/filedex/internal/logging"
)

// DefaultSearchLimit is the top-K cap when a search gives no limit.
const DefaultSearchLimit = 100_000

// Config represents the complete filedex configuration.
type Config struct {
	// DataDir is the directory holding the index, the state store,
	// the lock file and logs. Required.
	DataDir string `yaml:"data_dir"`

	// SearchLimit is the default maximum number of hits per search.
	SearchLimit int `yaml:"search_limit"`

	// Logging configures the structured log output.
	Logging logging.Config `yaml:"logging"`
}

// Default returns the built-in defaults. DataDir stays empty and must be
// supplied by the caller.
func Default() *Config {
	return &Config{
		SearchLimit: DefaultSearchLimit,
		Logging:     logging.DefaultConfig(),
	}
}

// Load builds a Config from defaults, an optional YAML file, and
// environment overrides. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, dexerrors.New(dexerrors.ErrCodeConfigRead,
				fmt.Sprintf("failed to read config file %s: %v", path, err), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, dexerrors.New(dexerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("failed to parse config file %s: %v", path, err), err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv applies FILEDEX_* environment variable overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FILEDEX_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FILEDEX_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SearchLimit = n
		}
	}
	if v := os.Getenv("FILEDEX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return dexerrors.New(dexerrors.ErrCodeConfigInvalid,
			"data directory is required (--dir or FILEDEX_DATA_DIR)", nil)
	}
	if c.SearchLimit <= 0 {
		return dexerrors.New(dexerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("search_limit must be positive, got %d", c.SearchLimit), nil)
	}
	return nil
}
