package model

import "time"

// SourceType classifies what kind of expense a cost source represents.
type SourceType string

const (
	TypeAPI          SourceType = "api"
	TypeSubscription SourceType = "subscription"
	TypeHardware     SourceType = "hardware"
	TypeOneTime      SourceType = "one-time"
)

// BillingMode is the cadence at which a cost recurs.
type BillingMode string

const (
	BillingDaily   BillingMode = "daily"
	BillingMonthly BillingMode = "monthly"
	BillingYearly  BillingMode = "yearly"
	BillingOneTime BillingMode = "one-time"
)

// Supported currencies. Conversion rates are static placeholders; see util.ConvertCurrency.
const (
	CurrencyCNY = "CNY"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// DateLayout is the day-granularity layout used for source windows and usage dates.
const DateLayout = "2006-01-02"

// CostSource is a user-declared recurring or one-time expense.
// StartDate/EndDate are optional day-granularity dates; empty means unbounded.
type CostSource struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        SourceType  `json:"type"`
	Provider    string      `json:"provider,omitempty"`
	BillingMode BillingMode `json:"billingMode"`
	Cost        float64     `json:"cost"`
	Currency    string      `json:"currency"`
	StartDate   string      `json:"startDate,omitempty"`
	EndDate     string      `json:"endDate,omitempty"`
	IsEnabled   bool        `json:"isEnabled"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// MonthlyTrendPoint is one month of the trailing trend, Month formatted "YYYY-MM".
type MonthlyTrendPoint struct {
	Month string  `json:"month"`
	Cost  float64 `json:"cost"`
}

// CostSummary is the derived aggregate over a source collection.
// It is recomputed from scratch after every mutation and never persisted.
type CostSummary struct {
	TotalDailyCost      float64                `json:"totalDailyCost"`
	TotalMonthlyCost    float64                `json:"totalMonthlyCost"`
	TotalYearlyCost     float64                `json:"totalYearlyCost"`
	EnabledSourcesCount int                    `json:"enabledSourcesCount"`
	TotalSourcesCount   int                    `json:"totalSourcesCount"`
	CostByProvider      map[string]float64     `json:"costByProvider"`
	CostByType          map[SourceType]float64 `json:"costByType"`
	MonthlyTrend        []MonthlyTrendPoint    `json:"monthlyTrend"`
}

// NormalizedUsage is a vendor-agnostic usage record produced by provider adapters.
// TotalTokens always equals InputTokens + OutputTokens.
type NormalizedUsage struct {
	ID           string  `json:"id"`
	ModelID      string  `json:"modelId"`
	ModelName    string  `json:"modelName"`
	Provider     string  `json:"provider"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	TotalTokens  int     `json:"totalTokens"`
	Cost         float64 `json:"cost"`
	Currency     string  `json:"currency"`
	Date         string  `json:"date"`
	SessionID    string  `json:"sessionId,omitempty"`
	ProjectID    string  `json:"projectId,omitempty"`
}

// ModelPricing is the per-model rate card, prices per million tokens.
type ModelPricing struct {
	ModelID               string  `json:"modelId"`
	ModelName             string  `json:"modelName"`
	Provider              string  `json:"provider"`
	InputPricePerMillion  float64 `json:"inputPricePerMillion"`
	OutputPricePerMillion float64 `json:"outputPricePerMillion"`
	Currency              string  `json:"currency"`
}

// ProviderConfig holds the credentials for one provider account.
type ProviderConfig struct {
	Provider  string `json:"provider" yaml:"provider"`
	APIKey    string `json:"apiKey" yaml:"apiKey"`
	BaseURL   string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	IsEnabled bool   `json:"isEnabled" yaml:"isEnabled"`
}

// ProviderModel describes one model listed by a provider's model endpoint.
type ProviderModel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}
