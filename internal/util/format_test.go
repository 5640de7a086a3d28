package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{999999, "1000.0K"},
		{1000000, "1.0M"},
		{2340000, "2.3M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.n), "n=%d", tt.n)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{0, "USD", "$0.00"},
		{19.99, "USD", "$19.99"},
		{1234.5, "USD", "$1,234.50"},
		{1234567.891, "USD", "$1,234,567.89"},
		{88, "CNY", "¥88.00"},
		{42.5, "EUR", "€42.50"},
		{-1234.56, "USD", "-$1,234.56"},
		{10, "GBP", "GBP 10.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount, tt.currency))
	}
}

func TestConvertCurrency(t *testing.T) {
	assert.Equal(t, 100.0, ConvertCurrency(100, "USD", "USD"))
	assert.InDelta(t, 14.0, ConvertCurrency(100, "CNY", "USD"), 0.0001)
	assert.InDelta(t, 100.0/1.08, ConvertCurrency(100, "USD", "EUR"), 0.0001)
	// Unknown currencies pass through unchanged.
	assert.Equal(t, 100.0, ConvertCurrency(100, "GBP", "USD"))
}
