package pricing

import "github.com/penwyp/go-cost-tracker/internal/core/model"

// SourceConfig selects where rate cards come from.
type SourceConfig struct {
	PricingSource      string `json:"pricingSource"`
	PricingOfflineMode bool   `json:"pricingOfflineMode"`
}

// defaultPricings is the built-in rate card set, prices per million tokens
// in USD. It is intentionally small; the litellm source covers the long tail.
var defaultPricings = []model.ModelPricing{
	{ModelID: "gpt-4o", ModelName: "GPT-4o", Provider: "openai", InputPricePerMillion: 2.5, OutputPricePerMillion: 10, Currency: model.CurrencyUSD},
	{ModelID: "gpt-4o-mini", ModelName: "GPT-4o mini", Provider: "openai", InputPricePerMillion: 0.15, OutputPricePerMillion: 0.6, Currency: model.CurrencyUSD},
	{ModelID: "gpt-4.1", ModelName: "GPT-4.1", Provider: "openai", InputPricePerMillion: 2, OutputPricePerMillion: 8, Currency: model.CurrencyUSD},
	{ModelID: "o3", ModelName: "o3", Provider: "openai", InputPricePerMillion: 10, OutputPricePerMillion: 40, Currency: model.CurrencyUSD},
	{ModelID: "claude-opus-4", ModelName: "Claude Opus 4", Provider: "anthropic", InputPricePerMillion: 15, OutputPricePerMillion: 75, Currency: model.CurrencyUSD},
	{ModelID: "claude-sonnet-4", ModelName: "Claude Sonnet 4", Provider: "anthropic", InputPricePerMillion: 3, OutputPricePerMillion: 15, Currency: model.CurrencyUSD},
	{ModelID: "claude-3-5-haiku", ModelName: "Claude 3.5 Haiku", Provider: "anthropic", InputPricePerMillion: 0.8, OutputPricePerMillion: 4, Currency: model.CurrencyUSD},
	{ModelID: "gemini-2.5-pro", ModelName: "Gemini 2.5 Pro", Provider: "google", InputPricePerMillion: 1.25, OutputPricePerMillion: 10, Currency: model.CurrencyUSD},
	{ModelID: "gemini-2.5-flash", ModelName: "Gemini 2.5 Flash", Provider: "google", InputPricePerMillion: 0.3, OutputPricePerMillion: 2.5, Currency: model.CurrencyUSD},
	{ModelID: "deepseek-chat", ModelName: "DeepSeek Chat", Provider: "deepseek", InputPricePerMillion: 0.27, OutputPricePerMillion: 1.1, Currency: model.CurrencyUSD},
}

// GetDefaultPricing returns the built-in rate card for a model id.
func GetDefaultPricing(modelID string) (model.ModelPricing, bool) {
	for _, p := range defaultPricings {
		if p.ModelID == modelID {
			return p, true
		}
	}
	return model.ModelPricing{}, false
}

// GetDefaultPricings returns a copy of the built-in rate cards keyed by model id.
func GetDefaultPricings() map[string]model.ModelPricing {
	result := make(map[string]model.ModelPricing, len(defaultPricings))
	for _, p := range defaultPricings {
		result[p.ModelID] = p
	}
	return result
}
