package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, model.CurrencyUSD, cfg.DefaultCurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "default", cfg.Pricing.Source)
	assert.Empty(t, cfg.Providers)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
defaultCurrency: EUR
storage:
  backend: sqlite
  path: /tmp/tracker.db
log:
  level: debug
providers:
  - provider: openai
    apiKey: sk-test
    isEnabled: true
  - provider: anthropic
    apiKey: sk-ant-test
    isEnabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.CurrencyEUR, cfg.DefaultCurrency)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/tracker.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults.
	assert.Equal(t, "default", cfg.Pricing.Source)
	assert.Equal(t, "Local", cfg.Timezone)

	require.Len(t, cfg.Providers, 2)
	enabled := cfg.EnabledProviders()
	require.Len(t, enabled, 1)
	assert.Equal(t, "openai", enabled[0].Provider)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: redis\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage backend")
}

func TestLoadRejectsUnknownPricingSource(t *testing.T) {
	path := writeConfig(t, "pricing:\n  source: openrouter\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing source")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "storage: [not: a map\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnabledProvidersEmpty(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.EnabledProviders())
}
