package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/core/pricing"
	"github.com/penwyp/go-cost-tracker/internal/provider"
	"github.com/penwyp/go-cost-tracker/internal/storage"
)

func newTestService(t *testing.T, adapters ...provider.Adapter) (*Service, storage.Store) {
	t.Helper()

	st, err := storage.NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	registry := provider.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	return NewService(registry, st, pricing.NewDefaultProvider()), st
}

func enabledConfig(name string) model.ProviderConfig {
	return model.ProviderConfig{Provider: name, APIKey: "test-key", IsEnabled: true}
}

func TestSyncUsageFanOut(t *testing.T) {
	openai := provider.NewMockAdapter("openai")
	openai.Usage = []model.NormalizedUsage{
		{ID: "u1", ModelID: "gpt-4o", ModelName: "gpt-4o", Provider: "openai", InputTokens: 1000, OutputTokens: 500, TotalTokens: 1500, Currency: model.CurrencyUSD},
	}
	anthropic := provider.NewMockAdapter("anthropic")
	anthropic.Usage = []model.NormalizedUsage{
		{ID: "u2", ModelID: "claude-sonnet-4", ModelName: "claude-sonnet-4", Provider: "anthropic", InputTokens: 2000, OutputTokens: 1000, TotalTokens: 3000, Currency: model.CurrencyUSD},
	}

	service, _ := newTestService(t, openai, anthropic)
	result := service.SyncUsage(context.Background(),
		[]model.ProviderConfig{enabledConfig("openai"), enabledConfig("anthropic")},
		time.Now().AddDate(0, 0, -7), time.Now())

	require.Len(t, result.Usage, 2)
	assert.Equal(t, openai.Usage, result.Usage["openai"])
	assert.Equal(t, anthropic.Usage, result.Usage["anthropic"])
	assert.Empty(t, result.Errors)
	assert.False(t, result.SyncedAt.IsZero())
}

func TestSyncUsageIsolatesFailures(t *testing.T) {
	healthy := provider.NewMockAdapter("openai")
	healthy.Usage = []model.NormalizedUsage{
		{ID: "u1", ModelID: "gpt-4o", Provider: "openai", TotalTokens: 100},
	}
	broken := provider.NewMockAdapter("anthropic")
	broken.FailMessage = "key revoked"

	service, _ := newTestService(t, healthy, broken)
	result := service.SyncUsage(context.Background(),
		[]model.ProviderConfig{enabledConfig("openai"), enabledConfig("anthropic")},
		time.Now().AddDate(0, 0, -1), time.Now())

	assert.Len(t, result.Usage, 1)
	assert.Contains(t, result.Usage, "openai")
	require.Contains(t, result.Errors, "anthropic")
	assert.Contains(t, result.Errors["anthropic"], "key revoked")
}

func TestSyncUsageSkipsDisabledAndUnknown(t *testing.T) {
	adapter := provider.NewMockAdapter("openai")
	service, _ := newTestService(t, adapter)

	disabled := enabledConfig("openai")
	disabled.IsEnabled = false

	result := service.SyncUsage(context.Background(),
		[]model.ProviderConfig{disabled, enabledConfig("no-such-vendor")},
		time.Now().AddDate(0, 0, -1), time.Now())

	assert.Empty(t, result.Usage)
	require.Contains(t, result.Errors, "no-such-vendor")
}

func TestSyncUsagePersistsCache(t *testing.T) {
	adapter := provider.NewMockAdapter("openai")
	adapter.Usage = []model.NormalizedUsage{
		{ID: "u1", ModelID: "gpt-4o", Provider: "openai", TotalTokens: 50},
	}

	service, st := newTestService(t, adapter)
	configs := []model.ProviderConfig{enabledConfig("openai")}
	result := service.SyncUsage(context.Background(), configs, time.Now().AddDate(0, 0, -1), time.Now())

	var cached []model.NormalizedUsage
	found, err := st.Get(storage.KeyUsage, &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, adapter.Usage, cached)

	var cachedConfigs []model.ProviderConfig
	found, err = st.Get(storage.KeyConfig, &cachedConfigs)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, configs, cachedConfigs)

	fromService, err := service.CachedUsage()
	require.NoError(t, err)
	assert.Equal(t, adapter.Usage, fromService)

	last := service.LastSync()
	assert.False(t, last.IsZero())
	assert.WithinDuration(t, result.SyncedAt, last, time.Second)
}

func TestSyncUsagePricesKnownModels(t *testing.T) {
	adapter := provider.NewMockAdapter("openai")
	adapter.Usage = []model.NormalizedUsage{
		// gpt-4o: $2.50/M input, $10.00/M output on the built-in rate card.
		{ID: "u1", ModelID: "gpt-4o", ModelName: "gpt-4o", Provider: "openai", InputTokens: 1_000_000, OutputTokens: 1_000_000},
		{ID: "u2", ModelID: "model-nobody-prices", ModelName: "model-nobody-prices", Provider: "openai", InputTokens: 1_000_000},
	}

	service, _ := newTestService(t, adapter)
	result := service.SyncUsage(context.Background(),
		[]model.ProviderConfig{enabledConfig("openai")},
		time.Now().AddDate(0, 0, -1), time.Now())

	assert.InDelta(t, 12.50, result.Costs.ByModel["gpt-4o"], 0.0001)
	assert.Zero(t, result.Costs.ByModel["model-nobody-prices"])
	assert.InDelta(t, 12.50, result.Costs.Total, 0.0001)
}

func TestSyncUsageEmptyResultZeroCosts(t *testing.T) {
	adapter := provider.NewMockAdapter("openai")
	adapter.FailMessage = "down"

	service, _ := newTestService(t, adapter)
	result := service.SyncUsage(context.Background(),
		[]model.ProviderConfig{enabledConfig("openai")},
		time.Now().AddDate(0, 0, -1), time.Now())

	assert.NotNil(t, result.Costs.ByModel)
	assert.Zero(t, result.Costs.Total)
}

func TestLastSyncMissing(t *testing.T) {
	service, _ := newTestService(t)
	assert.True(t, service.LastSync().IsZero())
}

func TestTestConnections(t *testing.T) {
	healthy := provider.NewMockAdapter("openai")
	broken := provider.NewMockAdapter("anthropic")
	broken.FailMessage = "unreachable"

	service, _ := newTestService(t, healthy, broken)
	results := service.TestConnections(context.Background(), []model.ProviderConfig{
		{Provider: "openai", APIKey: "k"},
		{Provider: "anthropic", APIKey: "k"},
		{Provider: "ghost", APIKey: "k"},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results["openai"])

	var provErr *provider.Error
	require.True(t, errors.As(results["anthropic"], &provErr))
	assert.Equal(t, provider.CodeMockError, provErr.Code)

	assert.Error(t, results["ghost"])
}
