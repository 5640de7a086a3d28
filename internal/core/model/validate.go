package model

import (
	"fmt"
	"time"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	maxCost              = 9999999
)

// FieldError is a single field-level validation failure. Validation never
// panics or aborts; all failures for a record are collected and returned.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validTypes = map[SourceType]bool{
	TypeAPI:          true,
	TypeSubscription: true,
	TypeHardware:     true,
	TypeOneTime:      true,
}

var validBillingModes = map[BillingMode]bool{
	BillingDaily:   true,
	BillingMonthly: true,
	BillingYearly:  true,
	BillingOneTime: true,
}

var validCurrencies = map[string]bool{
	CurrencyCNY: true,
	CurrencyUSD: true,
	CurrencyEUR: true,
}

// ValidateSource checks a cost source's fields and returns every violation.
// An empty slice means the source is acceptable for storage.
func ValidateSource(s CostSource) []FieldError {
	var errs []FieldError

	if s.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(s.Name) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: fmt.Sprintf("name exceeds %d characters", maxNameLength)})
	}

	if !validTypes[s.Type] {
		errs = append(errs, FieldError{Field: "type", Message: fmt.Sprintf("unknown source type %q", s.Type)})
	}

	if !validBillingModes[s.BillingMode] {
		errs = append(errs, FieldError{Field: "billingMode", Message: fmt.Sprintf("unknown billing mode %q", s.BillingMode)})
	}

	if s.Cost <= 0 {
		errs = append(errs, FieldError{Field: "cost", Message: "cost must be greater than zero"})
	} else if s.Cost > maxCost {
		errs = append(errs, FieldError{Field: "cost", Message: fmt.Sprintf("cost exceeds maximum of %d", maxCost)})
	}

	if !validCurrencies[s.Currency] {
		errs = append(errs, FieldError{Field: "currency", Message: fmt.Sprintf("unsupported currency %q", s.Currency)})
	}

	if len(s.Description) > maxDescriptionLength {
		errs = append(errs, FieldError{Field: "description", Message: fmt.Sprintf("description exceeds %d characters", maxDescriptionLength)})
	}

	start, startOK := parseDate(s.StartDate)
	if s.StartDate != "" && !startOK {
		errs = append(errs, FieldError{Field: "startDate", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s.StartDate)})
	}
	end, endOK := parseDate(s.EndDate)
	if s.EndDate != "" && !endOK {
		errs = append(errs, FieldError{Field: "endDate", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s.EndDate)})
	}
	if startOK && endOK && s.StartDate != "" && s.EndDate != "" && end.Before(start) {
		errs = append(errs, FieldError{Field: "endDate", Message: "end date must not be before start date"})
	}

	return errs
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate exposes day-granularity date parsing to the calculator and adapters.
func ParseDate(value string) (time.Time, bool) {
	return parseDate(value)
}
