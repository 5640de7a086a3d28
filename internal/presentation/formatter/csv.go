package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// CSVFormatter renders the source list as CSV, one row per source. The same
// shape is accepted back by the import command.
type CSVFormatter struct{}

// NewCSVFormatter creates the CSV renderer.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// CSVHeader is the column order for exported sources.
var CSVHeader = []string{
	"id", "name", "type", "provider", "billingMode", "cost", "currency",
	"startDate", "endDate", "isEnabled", "description",
}

// Format writes the report's sources as CSV.
func (f *CSVFormatter) Format(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, src := range report.Sources {
		row := []string{
			src.ID,
			src.Name,
			string(src.Type),
			src.Provider,
			string(src.BillingMode),
			strconv.FormatFloat(src.Cost, 'f', 2, 64),
			src.Currency,
			src.StartDate,
			src.EndDate,
			strconv.FormatBool(src.IsEnabled),
			src.Description,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParseCSV reads sources back from the CSV shape Format writes. The header
// row is required and must match CSVHeader; ids and timestamps are ignored
// by the import path anyway, so only field shape is checked here.
func ParseCSV(r io.Reader) ([]model.CostSource, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) != len(CSVHeader) {
		return nil, fmt.Errorf("unexpected csv header: got %d columns, want %d", len(header), len(CSVHeader))
	}
	for i, want := range CSVHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], want)
		}
	}

	var sources []model.CostSource
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		cost, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid cost %q", line, row[5])
		}
		enabled, err := strconv.ParseBool(row[9])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid isEnabled %q", line, row[9])
		}

		sources = append(sources, model.CostSource{
			ID:          row[0],
			Name:        row[1],
			Type:        model.SourceType(row[2]),
			Provider:    row[3],
			BillingMode: model.BillingMode(row[4]),
			Cost:        cost,
			Currency:    row[6],
			StartDate:   row[7],
			EndDate:     row[8],
			IsEnabled:   enabled,
			Description: row[10],
		})
	}
	return sources, nil
}
