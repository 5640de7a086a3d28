package provider

import (
	"github.com/google/uuid"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// RawUsage is the vendor-agnostic intermediate an adapter fills in before
// normalization applies defaults.
type RawUsage struct {
	ID           string
	ModelID      string
	ModelName    string
	Provider     string
	InputTokens  int
	OutputTokens int
	Cost         float64
	Currency     string
	Date         string
	SessionID    string
	ProjectID    string
}

// Normalize converts a raw record into the canonical NormalizedUsage shape:
// a fresh id when the vendor supplied none, USD when currency is absent, the
// model id standing in for a missing display name, and TotalTokens always
// input+output.
func Normalize(raw RawUsage) model.NormalizedUsage {
	id := raw.ID
	if id == "" {
		id = uuid.NewString()
	}
	currency := raw.Currency
	if currency == "" {
		currency = model.CurrencyUSD
	}
	name := raw.ModelName
	if name == "" {
		name = raw.ModelID
	}

	return model.NormalizedUsage{
		ID:           id,
		ModelID:      raw.ModelID,
		ModelName:    name,
		Provider:     raw.Provider,
		InputTokens:  raw.InputTokens,
		OutputTokens: raw.OutputTokens,
		TotalTokens:  raw.InputTokens + raw.OutputTokens,
		Cost:         raw.Cost,
		Currency:     currency,
		Date:         raw.Date,
		SessionID:    raw.SessionID,
		ProjectID:    raw.ProjectID,
	}
}
