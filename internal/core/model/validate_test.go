package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSource() CostSource {
	return CostSource{
		Name:        "Claude subscription",
		Type:        TypeSubscription,
		BillingMode: BillingMonthly,
		Cost:        100,
		Currency:    CurrencyUSD,
	}
}

func TestValidateSourceAccepted(t *testing.T) {
	assert.Empty(t, ValidateSource(validSource()))
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CostSource)
		wantField string
	}{
		{
			name:      "missing name",
			mutate:    func(s *CostSource) { s.Name = "" },
			wantField: "name",
		},
		{
			name:      "name too long",
			mutate:    func(s *CostSource) { s.Name = strings.Repeat("x", 101) },
			wantField: "name",
		},
		{
			name:      "unknown type",
			mutate:    func(s *CostSource) { s.Type = "llm" },
			wantField: "type",
		},
		{
			name:      "unknown billing mode",
			mutate:    func(s *CostSource) { s.BillingMode = "weekly" },
			wantField: "billingMode",
		},
		{
			name:      "zero cost",
			mutate:    func(s *CostSource) { s.Cost = 0 },
			wantField: "cost",
		},
		{
			name:      "negative cost",
			mutate:    func(s *CostSource) { s.Cost = -5 },
			wantField: "cost",
		},
		{
			name:      "cost above ceiling",
			mutate:    func(s *CostSource) { s.Cost = 10_000_000 },
			wantField: "cost",
		},
		{
			name:      "unsupported currency",
			mutate:    func(s *CostSource) { s.Currency = "GBP" },
			wantField: "currency",
		},
		{
			name:      "description too long",
			mutate:    func(s *CostSource) { s.Description = strings.Repeat("x", 501) },
			wantField: "description",
		},
		{
			name:      "malformed start date",
			mutate:    func(s *CostSource) { s.StartDate = "01/02/2025" },
			wantField: "startDate",
		},
		{
			name:      "malformed end date",
			mutate:    func(s *CostSource) { s.EndDate = "soon" },
			wantField: "endDate",
		},
		{
			name: "end before start",
			mutate: func(s *CostSource) {
				s.StartDate = "2025-06-01"
				s.EndDate = "2025-01-01"
			},
			wantField: "endDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSource()
			tt.mutate(&s)
			errs := ValidateSource(s)
			require.NotEmpty(t, errs)

			fields := make([]string, len(errs))
			for i, fe := range errs {
				fields[i] = fe.Field
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidateSourceCollectsAllFailures(t *testing.T) {
	s := CostSource{Type: "bogus", BillingMode: "bogus", Cost: -1, Currency: "bogus"}
	errs := ValidateSource(s)
	assert.GreaterOrEqual(t, len(errs), 4)
}

func TestValidateSourceEqualDatesAllowed(t *testing.T) {
	s := validSource()
	s.StartDate = "2025-03-01"
	s.EndDate = "2025-03-01"
	assert.Empty(t, ValidateSource(s))
}

func TestParseDate(t *testing.T) {
	parsed, ok := ParseDate("2025-06-15")
	require.True(t, ok)
	assert.Equal(t, 2025, parsed.Year())

	_, ok = ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("2025-13-45")
	assert.False(t, ok)
}
