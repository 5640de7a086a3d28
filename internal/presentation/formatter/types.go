package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// Report bundles everything the output formats render.
type Report struct {
	Summary     model.CostSummary  `json:"summary"`
	Sources     []model.CostSource `json:"sources"`
	Currency    string             `json:"currency"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Formatter renders a report to a writer.
type Formatter interface {
	Format(w io.Writer, report Report) error
}

// New returns the formatter for an output format name.
func New(format string) (Formatter, error) {
	switch format {
	case "", "table":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected table, json, or csv)", format)
	}
}
