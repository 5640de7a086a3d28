// Package calculator implements the cost normalization and aggregation engine.
// Every function is a pure function of its inputs: no stored state, no side
// effects, safe to call concurrently on different inputs. Validation of
// well-formed input is the caller's job; these functions are total and never
// return errors for degenerate numeric input.
package calculator

import (
	"math"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

const (
	daysPerMonth = 30
	daysPerYear  = 365
	// DefaultTrendMonths is the trailing window used by CalculateSummary.
	DefaultTrendMonths = 6
	// DefaultMaxAmortizationMonths caps the amortization span for hardware
	// and other one-time purchases.
	DefaultMaxAmortizationMonths = 12
)

// ProviderFallbackKey buckets sources that carry no provider label.
const ProviderFallbackKey = "custom"

// Round2 rounds to 2 decimal places on cents (multiply, round, divide) so
// repeated additions do not accumulate floating-point drift.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeToDaily converts a cost from its billing cadence to a daily figure.
// One-time costs keep their face value; the aggregate then scales them back up
// like recurring costs, which intentionally mirrors the tracked system's
// observed behavior rather than an amortization model.
func NormalizeToDaily(cost float64, mode model.BillingMode) float64 {
	switch mode {
	case model.BillingMonthly:
		return Round2(cost / daysPerMonth)
	case model.BillingYearly:
		return Round2(cost / daysPerYear)
	default: // daily and one-time
		return Round2(cost)
	}
}

// NormalizeToMonthly converts a cost to its monthly equivalent.
func NormalizeToMonthly(cost float64, mode model.BillingMode) float64 {
	return Round2(NormalizeToDaily(cost, mode) * daysPerMonth)
}

// NormalizeToYearly converts a cost to its yearly equivalent.
func NormalizeToYearly(cost float64, mode model.BillingMode) float64 {
	return Round2(NormalizeToDaily(cost, mode) * daysPerYear)
}

// CalculateSummary aggregates a source collection into a CostSummary.
// Only enabled sources contribute to totals and breakdowns; disabled sources
// count toward TotalSourcesCount only. Monthly and yearly totals are derived
// from the already-rounded daily total so the three figures stay internally
// consistent (monthly == daily*30 exactly).
func CalculateSummary(sources []model.CostSource) model.CostSummary {
	enabled := make([]model.CostSource, 0, len(sources))
	for _, s := range sources {
		if s.IsEnabled {
			enabled = append(enabled, s)
		}
	}

	var totalDaily float64
	byProvider := make(map[string]float64)
	byType := make(map[model.SourceType]float64)

	for _, s := range enabled {
		daily := NormalizeToDaily(s.Cost, s.BillingMode)
		totalDaily += daily

		provider := s.Provider
		if provider == "" {
			provider = ProviderFallbackKey
		}
		byProvider[provider] += daily
		byType[s.Type] += daily
	}

	totalDaily = Round2(totalDaily)

	return model.CostSummary{
		TotalDailyCost:      totalDaily,
		TotalMonthlyCost:    Round2(totalDaily * daysPerMonth),
		TotalYearlyCost:     Round2(totalDaily * daysPerYear),
		EnabledSourcesCount: len(enabled),
		TotalSourcesCount:   len(sources),
		CostByProvider:      byProvider,
		CostByType:          byType,
		MonthlyTrend:        CalculateMonthlyTrend(enabled, DefaultTrendMonths),
	}
}

// CalculateTokenCost prices a single usage record against a rate card.
func CalculateTokenCost(inputTokens, outputTokens int, pricing model.ModelPricing) float64 {
	cost := float64(inputTokens)/1_000_000*pricing.InputPricePerMillion +
		float64(outputTokens)/1_000_000*pricing.OutputPricePerMillion
	return Round2(cost)
}

// BatchCostResult holds the outcome of pricing a batch of usage records.
type BatchCostResult struct {
	Total   float64            `json:"total"`
	ByModel map[string]float64 `json:"byModel"`
}

// CalculateBatchCosts prices every usage record by modelId lookup. A record
// whose model has no rate card contributes zero to the total and to its model
// bucket; missing pricing is a silent zero, not a failure.
func CalculateBatchCosts(usages []model.NormalizedUsage, pricingByModelID map[string]model.ModelPricing) BatchCostResult {
	result := BatchCostResult{ByModel: make(map[string]float64)}

	for _, u := range usages {
		var cost float64
		if pricing, ok := pricingByModelID[u.ModelID]; ok {
			cost = CalculateTokenCost(u.InputTokens, u.OutputTokens, pricing)
		}
		name := u.ModelName
		if name == "" {
			name = u.ModelID
		}
		result.ByModel[name] += cost
		result.Total += cost
	}

	result.Total = Round2(result.Total)
	return result
}

// CostComparison contrasts two source collections by monthly total.
type CostComparison struct {
	CurrentMonthly  float64 `json:"currentMonthly"`
	PreviousMonthly float64 `json:"previousMonthly"`
	Change          float64 `json:"change"`
	ChangePercent   float64 `json:"changePercent"`
}

// CompareCosts summarizes both collections independently and reports the
// monthly delta. ChangePercent is zero when the previous total is zero.
func CompareCosts(current, previous []model.CostSource) CostComparison {
	cur := CalculateSummary(current).TotalMonthlyCost
	prev := CalculateSummary(previous).TotalMonthlyCost

	change := Round2(cur - prev)
	var percent float64
	if prev != 0 {
		percent = Round2(change / prev * 100)
	}

	return CostComparison{
		CurrentMonthly:  cur,
		PreviousMonthly: prev,
		Change:          change,
		ChangePercent:   percent,
	}
}
