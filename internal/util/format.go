package util

import (
	"fmt"
	"strings"
)

// Currency display symbols
var currencySymbols = map[string]string{
	"USD": "$",
	"CNY": "¥",
	"EUR": "€",
}

// Static placeholder conversion rates into USD. These are deliberately
// imprecise; cross-currency totals are indicative only.
var usdRates = map[string]float64{
	"USD": 1.0,
	"CNY": 0.14,
	"EUR": 1.08,
}

// FormatNumber renders a token count in compact form (1.2K, 3.4M).
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatCurrency renders an amount with its currency symbol and comma
// separators for thousands.
func FormatCurrency(amount float64, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s%s.%s", sign, symbol, strings.Join(grouped, ","), decPart)
}

// ConvertCurrency converts an amount between supported currencies through the
// static USD rate table. Unknown currencies pass through unchanged.
func ConvertCurrency(amount float64, from, to string) float64 {
	if from == to {
		return amount
	}
	fromRate, okFrom := usdRates[from]
	toRate, okTo := usdRates[to]
	if !okFrom || !okTo {
		return amount
	}
	return amount * fromRate / toRate
}
