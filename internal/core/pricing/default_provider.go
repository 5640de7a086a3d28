package pricing

import (
	"context"
	"fmt"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// DefaultProvider implements Provider using the static built-in rate cards
type DefaultProvider struct{}

// NewDefaultProvider creates a new default pricing provider
func NewDefaultProvider() Provider {
	return &DefaultProvider{}
}

// GetPricing returns the rate card for a specific model id
func (p *DefaultProvider) GetPricing(ctx context.Context, modelID string) (model.ModelPricing, error) {
	if pricing, ok := GetDefaultPricing(modelID); ok {
		return pricing, nil
	}
	return model.ModelPricing{}, fmt.Errorf("%w: %s", ErrPricingNotFound, modelID)
}

// GetAllPricings returns all built-in rate cards
func (p *DefaultProvider) GetAllPricings(ctx context.Context) (map[string]model.ModelPricing, error) {
	return GetDefaultPricings(), nil
}

// RefreshPricing is a no-op for the default provider
func (p *DefaultProvider) RefreshPricing(ctx context.Context) error {
	return nil
}

// GetProviderName returns the name of this pricing provider
func (p *DefaultProvider) GetProviderName() string {
	return "default"
}
