// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads paper-index settings from a YAML config file, a
// .env file, and PAPER_INDEX_* environment variables, in increasing order
// of precedence. Command-line flags bound by the caller override all three.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-index/pkg/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PAPER_INDEX_PAPER_DIR.
	EnvPrefix = "PAPER_INDEX"

	configName     = "paper-index"
	catalogFile    = "catalog.db"
	defaultBaseURL = "https://export.arxiv.org/api/query"
)

// SetDefaults registers every key with its default value. Registering all
// keys also lets AutomaticEnv resolve them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("paper_dir", ".")
	v.SetDefault("max_results", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("arxiv.base_url", defaultBaseURL)
	v.SetDefault("arxiv.user_agent", "paper-index/0.1")
	v.SetDefault("arxiv.timeout", 30*time.Second)
	v.SetDefault("arxiv.request_interval", 3*time.Second)
	v.SetDefault("arxiv.max_retries", 3)
	v.SetDefault("catalog.path", "")
}

// New returns a viper instance with defaults and environment binding. When
// cfgFile is empty it looks for paper-index.yaml in the working directory
// and then in ~/.config/paper-index/config.yaml. It returns the config file
// used, or "" if none was found.
func New(cfgFile string) (*viper.Viper, string, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return v, v.ConfigFileUsed(), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, "", nil
		}
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return v, v.ConfigFileUsed(), nil
}

// LoadDotEnv loads KEY=value pairs from each existing file into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config, fills derived defaults, and validates.
func Decode(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.PaperDir == "" {
		cfg.PaperDir = "."
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = filepath.Join(cfg.PaperDir, catalogFile)
	}

	if cfg.MaxResults < 1 {
		return cfg, fmt.Errorf("max_results must be at least 1, got %d", cfg.MaxResults)
	}
	if cfg.Arxiv.MaxRetries < 0 {
		return cfg, fmt.Errorf("arxiv.max_retries cannot be negative, got %d", cfg.Arxiv.MaxRetries)
	}
	if cfg.Arxiv.RequestInterval < 0 {
		return cfg, fmt.Errorf("arxiv.request_interval cannot be negative, got %s", cfg.Arxiv.RequestInterval)
	}
	return cfg, nil
}
