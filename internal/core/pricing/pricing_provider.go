package pricing

import (
	"context"
	"errors"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// Provider defines the interface for fetching model pricing information
type Provider interface {
	// GetPricing returns the rate card for a specific model id
	GetPricing(ctx context.Context, modelID string) (model.ModelPricing, error)

	// GetAllPricings returns all available rate cards keyed by model id
	GetAllPricings(ctx context.Context) (map[string]model.ModelPricing, error)

	// RefreshPricing forces a refresh of pricing data (for remote providers)
	RefreshPricing(ctx context.Context) error

	// GetProviderName returns the name of this pricing provider
	GetProviderName() string
}

// ErrPricingNotFound is returned when pricing for a model is not found
var ErrPricingNotFound = errors.New("pricing not found for model")

// ErrPricingUnavailable is returned when pricing data is temporarily unavailable
var ErrPricingUnavailable = errors.New("pricing data temporarily unavailable")
