package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

const (
	liteLLMPricingURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"
	refreshInterval   = 24 * time.Hour
)

// LiteLLMProvider implements Provider by fetching rate cards from LiteLLM's
// public pricing dataset, which covers far more models than the built-in set.
type LiteLLMProvider struct {
	mu            sync.RWMutex
	pricing       map[string]model.ModelPricing
	lastFetchTime time.Time
	httpClient    *http.Client
	url           string
}

// liteLLMModel is the subset of LiteLLM's per-model record we care about.
// Costs are per token; rate cards are per million tokens.
type liteLLMModel struct {
	InputCostPerToken  *float64 `json:"input_cost_per_token"`
	OutputCostPerToken *float64 `json:"output_cost_per_token"`
	LiteLLMProvider    string   `json:"litellm_provider"`
}

// NewLiteLLMProvider creates a new LiteLLM pricing provider
func NewLiteLLMProvider() *LiteLLMProvider {
	return &LiteLLMProvider{
		pricing: make(map[string]model.ModelPricing),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		url: liteLLMPricingURL,
	}
}

// GetPricing returns the rate card for a specific model id
func (p *LiteLLMProvider) GetPricing(ctx context.Context, modelID string) (model.ModelPricing, error) {
	if err := p.ensurePricingLoaded(ctx); err != nil {
		return model.ModelPricing{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if pricing, ok := p.pricing[modelID]; ok {
		return pricing, nil
	}

	// Try provider-prefixed variants before giving up
	variations := []string{
		fmt.Sprintf("openai/%s", modelID),
		fmt.Sprintf("anthropic/%s", modelID),
		fmt.Sprintf("gemini/%s", modelID),
		fmt.Sprintf("deepseek/%s", modelID),
	}
	for _, variant := range variations {
		if pricing, ok := p.pricing[variant]; ok {
			return pricing, nil
		}
	}

	// Fall back to partial matches
	modelLower := strings.ToLower(modelID)
	for key, pricing := range p.pricing {
		keyLower := strings.ToLower(key)
		if strings.Contains(keyLower, modelLower) || strings.Contains(modelLower, keyLower) {
			return pricing, nil
		}
	}

	return model.ModelPricing{}, fmt.Errorf("%w: %s", ErrPricingNotFound, modelID)
}

// GetAllPricings returns all fetched rate cards keyed by model id
func (p *LiteLLMProvider) GetAllPricings(ctx context.Context) (map[string]model.ModelPricing, error) {
	if err := p.ensurePricingLoaded(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string]model.ModelPricing, len(p.pricing))
	for k, v := range p.pricing {
		result[k] = v
	}
	return result, nil
}

// RefreshPricing forces a refresh of pricing data
func (p *LiteLLMProvider) RefreshPricing(ctx context.Context) error {
	return p.fetchPricing(ctx)
}

// GetProviderName returns the name of this pricing provider
func (p *LiteLLMProvider) GetProviderName() string {
	return "litellm"
}

func (p *LiteLLMProvider) ensurePricingLoaded(ctx context.Context) error {
	p.mu.RLock()
	needsRefresh := time.Since(p.lastFetchTime) > refreshInterval || len(p.pricing) == 0
	p.mu.RUnlock()

	if needsRefresh {
		return p.fetchPricing(ctx)
	}
	return nil
}

func (p *LiteLLMProvider) fetchPricing(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("create pricing request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrPricingUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read pricing response: %w", err)
	}

	var raw map[string]liteLLMModel
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("decode pricing response: %w", err)
	}

	pricing := make(map[string]model.ModelPricing, len(raw))
	for id, m := range raw {
		if m.InputCostPerToken == nil && m.OutputCostPerToken == nil {
			continue
		}
		card := model.ModelPricing{
			ModelID:   id,
			ModelName: id,
			Provider:  m.LiteLLMProvider,
			Currency:  model.CurrencyUSD,
		}
		if m.InputCostPerToken != nil {
			card.InputPricePerMillion = *m.InputCostPerToken * 1_000_000
		}
		if m.OutputCostPerToken != nil {
			card.OutputPricePerMillion = *m.OutputCostPerToken * 1_000_000
		}
		pricing[id] = card
	}

	p.mu.Lock()
	p.pricing = pricing
	p.lastFetchTime = time.Now()
	p.mu.Unlock()

	util.LogDebugf("Loaded %d rate cards from LiteLLM", len(pricing))
	return nil
}
