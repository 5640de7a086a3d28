// Package config loads the application configuration from a YAML file,
// falling back to defaults when the file is missing.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

// DefaultConfigPath is where the tracker looks for its config file.
const DefaultConfigPath = "~/.go-cost-tracker/config.yaml"

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// PricingConfig selects the rate card source.
type PricingConfig struct {
	Source   string `yaml:"source"` // "default" or "litellm"
	Offline  bool   `yaml:"offline"`
	CacheDir string `yaml:"cacheDir"`
}

// Config is the full application configuration.
type Config struct {
	Storage         StorageConfig          `yaml:"storage"`
	DefaultCurrency string                 `yaml:"defaultCurrency"`
	Timezone        string                 `yaml:"timezone"`
	Log             LogConfig              `yaml:"log"`
	Pricing         PricingConfig          `yaml:"pricing"`
	Providers       []model.ProviderConfig `yaml:"providers"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Path:    "~/.go-cost-tracker/data",
		},
		DefaultCurrency: model.CurrencyUSD,
		Timezone:        "Local",
		Log: LogConfig{
			Level: "info",
			File:  "~/.go-cost-tracker/logs/app.log",
		},
		Pricing: PricingConfig{
			Source:   "default",
			CacheDir: "~/.go-cost-tracker/cache",
		},
	}
}

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	expanded := util.ExpandPath(path)
	data, err := os.ReadFile(expanded)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", expanded, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q (expected file or sqlite)", c.Storage.Backend)
	}
	switch c.Pricing.Source {
	case "", "default", "litellm":
	default:
		return fmt.Errorf("unknown pricing source %q (expected default or litellm)", c.Pricing.Source)
	}
	return nil
}

// EnabledProviders returns only the provider configs marked enabled.
func (c *Config) EnabledProviders() []model.ProviderConfig {
	var enabled []model.ProviderConfig
	for _, p := range c.Providers {
		if p.IsEnabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}
