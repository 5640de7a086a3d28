package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

func TestDefaultProviderGetPricing(t *testing.T) {
	p := NewDefaultProvider()

	card, err := p.GetPricing(context.Background(), "claude-sonnet-4")
	require.NoError(t, err)
	assert.Equal(t, 3.0, card.InputPricePerMillion)
	assert.Equal(t, 15.0, card.OutputPricePerMillion)
	assert.Equal(t, "anthropic", card.Provider)

	_, err = p.GetPricing(context.Background(), "model-from-the-future")
	assert.ErrorIs(t, err, ErrPricingNotFound)
}

func TestDefaultProviderGetAllPricings(t *testing.T) {
	p := NewDefaultProvider()

	all, err := p.GetAllPricings(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, all)
	assert.Contains(t, all, "gpt-4o")

	// Callers get their own map; mutating it must not leak into the table.
	delete(all, "gpt-4o")
	again, err := p.GetAllPricings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, again, "gpt-4o")
}

const liteLLMFixture = `{
	"gpt-4o": {"input_cost_per_token": 0.0000025, "output_cost_per_token": 0.00001, "litellm_provider": "openai"},
	"anthropic/claude-sonnet-4": {"input_cost_per_token": 0.000003, "output_cost_per_token": 0.000015, "litellm_provider": "anthropic"},
	"some-embedding-model": {"litellm_provider": "openai"}
}`

func newLiteLLMTestProvider(t *testing.T, handler http.HandlerFunc) *LiteLLMProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewLiteLLMProvider()
	p.url = server.URL
	return p
}

func TestLiteLLMProviderConvertsPerTokenRates(t *testing.T) {
	p := newLiteLLMTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(liteLLMFixture))
	})

	card, err := p.GetPricing(context.Background(), "gpt-4o")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, card.InputPricePerMillion, 0.0001)
	assert.InDelta(t, 10.0, card.OutputPricePerMillion, 0.0001)
	assert.Equal(t, model.CurrencyUSD, card.Currency)
}

func TestLiteLLMProviderPrefixAndPartialMatch(t *testing.T) {
	p := newLiteLLMTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(liteLLMFixture))
	})

	// Bare id resolves through the provider-prefixed variant.
	card, err := p.GetPricing(context.Background(), "claude-sonnet-4")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, card.InputPricePerMillion, 0.0001)

	// Dated release ids fall back to substring matching.
	card, err = p.GetPricing(context.Background(), "claude-sonnet-4-20250514")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, card.InputPricePerMillion, 0.0001)

	_, err = p.GetPricing(context.Background(), "totally-unknown")
	assert.ErrorIs(t, err, ErrPricingNotFound)
}

func TestLiteLLMProviderSkipsModelsWithoutRates(t *testing.T) {
	p := newLiteLLMTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(liteLLMFixture))
	})

	all, err := p.GetAllPricings(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotContains(t, all, "some-embedding-model")
}

func TestLiteLLMProviderUnavailable(t *testing.T) {
	p := newLiteLLMTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.GetAllPricings(context.Background())
	assert.ErrorIs(t, err, ErrPricingUnavailable)
}

// stubProvider is a scriptable base for the cache wrapper tests.
type stubProvider struct {
	pricings map[string]model.ModelPricing
	err      error
	calls    int
}

func (s *stubProvider) GetPricing(ctx context.Context, modelID string) (model.ModelPricing, error) {
	if s.err != nil {
		return model.ModelPricing{}, s.err
	}
	if card, ok := s.pricings[modelID]; ok {
		return card, nil
	}
	return model.ModelPricing{}, ErrPricingNotFound
}

func (s *stubProvider) GetAllPricings(ctx context.Context) (map[string]model.ModelPricing, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.pricings, nil
}

func (s *stubProvider) RefreshPricing(ctx context.Context) error { return s.err }

func (s *stubProvider) GetProviderName() string { return "stub" }

func stubCards() map[string]model.ModelPricing {
	return map[string]model.ModelPricing{
		"gpt-4o": {ModelID: "gpt-4o", InputPricePerMillion: 2.5, OutputPricePerMillion: 10, Currency: model.CurrencyUSD},
	}
}

func TestCachedProviderServesAndMemoizes(t *testing.T) {
	base := &stubProvider{pricings: stubCards()}
	cached, err := NewCachedProvider(base, t.TempDir(), false)
	require.NoError(t, err)

	card, err := cached.GetPricing(context.Background(), "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, 2.5, card.InputPricePerMillion)

	_, err = cached.GetPricing(context.Background(), "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, 1, base.calls, "second lookup served from memory")
}

func TestCachedProviderSurvivesRestartOffline(t *testing.T) {
	cacheDir := t.TempDir()

	online, err := NewCachedProvider(&stubProvider{pricings: stubCards()}, cacheDir, false)
	require.NoError(t, err)
	_, err = online.GetAllPricings(context.Background())
	require.NoError(t, err)

	// A fresh offline instance with a dead base must read the disk cache.
	offline, err := NewCachedProvider(&stubProvider{err: errors.New("no network")}, cacheDir, true)
	require.NoError(t, err)

	all, err := offline.GetAllPricings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, all, "gpt-4o")
}

func TestCachedProviderFallsBackToDiskOnRemoteFailure(t *testing.T) {
	cacheDir := t.TempDir()

	online, err := NewCachedProvider(&stubProvider{pricings: stubCards()}, cacheDir, false)
	require.NoError(t, err)
	_, err = online.GetAllPricings(context.Background())
	require.NoError(t, err)

	degraded, err := NewCachedProvider(&stubProvider{err: errors.New("remote down")}, cacheDir, false)
	require.NoError(t, err)

	all, err := degraded.GetAllPricings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, all, "gpt-4o")
}

func TestCachedProviderNothingAvailable(t *testing.T) {
	cached, err := NewCachedProvider(&stubProvider{err: errors.New("remote down")}, t.TempDir(), false)
	require.NoError(t, err)

	_, err = cached.GetAllPricings(context.Background())
	assert.ErrorIs(t, err, ErrPricingUnavailable)
}

func TestCreateProvider(t *testing.T) {
	cacheDir := t.TempDir()

	p, err := CreateProvider(&SourceConfig{PricingSource: "default"}, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "default", p.GetProviderName())

	p, err = CreateProvider(&SourceConfig{PricingSource: "litellm"}, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "litellm+cache", p.GetProviderName())

	p, err = CreateProvider(&SourceConfig{PricingSource: "default", PricingOfflineMode: true}, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "default+cache", p.GetProviderName())

	_, err = CreateProvider(&SourceConfig{PricingSource: "made-up"}, cacheDir)
	assert.Error(t, err)
}
