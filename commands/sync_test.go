package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/penwyp/go-cost-tracker/internal/core/calculator"
	"github.com/penwyp/go-cost-tracker/internal/core/model"
	costsync "github.com/penwyp/go-cost-tracker/internal/sync"
)

func TestFormatSyncSummary(t *testing.T) {
	result := &costsync.Result{
		Usage: map[string][]model.NormalizedUsage{
			"openai": {
				{ModelID: "gpt-4o", TotalTokens: 900_000},
				{ModelID: "gpt-4o-mini", TotalTokens: 600_000},
			},
			"anthropic": {
				{ModelID: "claude-sonnet-4", TotalTokens: 500},
			},
		},
		Errors: map[string]string{"deepseek": "key revoked"},
		Costs:  calculator.BatchCostResult{Total: 12.50},
	}

	out := formatSyncSummary(result, model.CurrencyUSD)

	assert.Equal(t, "anthropic: 1 usage records (500 tokens)\n"+
		"openai: 2 usage records (1.5M tokens)\n"+
		"deepseek: FAILED - key revoked\n"+
		"Total token cost: $12.50\n", out)
}

func TestFormatSyncSummaryConvertsCurrency(t *testing.T) {
	result := &costsync.Result{
		Usage:  map[string][]model.NormalizedUsage{},
		Errors: map[string]string{},
		Costs:  calculator.BatchCostResult{Total: 14},
	}

	// 14 USD at the static 0.14 CNY/USD rate.
	out := formatSyncSummary(result, model.CurrencyCNY)
	assert.Equal(t, "Total token cost: ¥100.00\n", out)
}
