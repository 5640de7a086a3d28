package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

// TableFormatter renders the cost report as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates the table renderer.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Format writes the totals, breakdowns, trend, and source list.
func (f *TableFormatter) Format(w io.Writer, report Report) error {
	s := report.Summary
	cur := report.Currency

	fmt.Fprintf(w, "Cost Summary (%d of %d sources enabled)\n\n", s.EnabledSourcesCount, s.TotalSourcesCount)
	fmt.Fprintf(w, "  Daily:   %s\n", util.FormatCurrency(s.TotalDailyCost, cur))
	fmt.Fprintf(w, "  Monthly: %s\n", util.FormatCurrency(s.TotalMonthlyCost, cur))
	fmt.Fprintf(w, "  Yearly:  %s\n\n", util.FormatCurrency(s.TotalYearlyCost, cur))

	if len(s.CostByProvider) > 0 {
		f.printBreakdown(w, "By Provider (daily)", providerRows(s.CostByProvider), cur)
	}
	if len(s.CostByType) > 0 {
		f.printBreakdown(w, "By Type (daily)", typeRows(s.CostByType), cur)
	}
	if len(s.MonthlyTrend) > 0 {
		f.printTrend(w, s.MonthlyTrend, cur)
	}
	if len(report.Sources) > 0 {
		f.printSources(w, report.Sources)
	}
	return nil
}

type breakdownRow struct {
	label string
	cost  float64
}

func providerRows(byProvider map[string]float64) []breakdownRow {
	rows := make([]breakdownRow, 0, len(byProvider))
	for label, cost := range byProvider {
		rows = append(rows, breakdownRow{label: label, cost: cost})
	}
	sortRows(rows)
	return rows
}

func typeRows(byType map[model.SourceType]float64) []breakdownRow {
	rows := make([]breakdownRow, 0, len(byType))
	for label, cost := range byType {
		rows = append(rows, breakdownRow{label: string(label), cost: cost})
	}
	sortRows(rows)
	return rows
}

// sortRows orders by descending cost, then by label for equal costs.
func sortRows(rows []breakdownRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].cost != rows[j].cost {
			return rows[i].cost > rows[j].cost
		}
		return rows[i].label < rows[j].label
	})
}

func (f *TableFormatter) printBreakdown(w io.Writer, title string, rows []breakdownRow, currency string) {
	fmt.Fprintf(w, "%s\n", title)

	labelWidth := 0
	for _, row := range rows {
		if width := util.GetDisplayWidth(row.label); width > labelWidth {
			labelWidth = width
		}
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s  %s\n", util.PadToWidth(row.label, labelWidth), util.FormatCurrency(row.cost, currency))
	}
	fmt.Fprintln(w)
}

func (f *TableFormatter) printTrend(w io.Writer, trend []model.MonthlyTrendPoint, currency string) {
	fmt.Fprintln(w, "Monthly Trend")

	maxCost := 0.0
	for _, point := range trend {
		if point.Cost > maxCost {
			maxCost = point.Cost
		}
	}
	for _, point := range trend {
		bar := ""
		if maxCost > 0 {
			bar = strings.Repeat("█", int(point.Cost/maxCost*24))
		}
		fmt.Fprintf(w, "  %s  %-24s %s\n", point.Month, bar, util.FormatCurrency(point.Cost, currency))
	}
	fmt.Fprintln(w)
}

func (f *TableFormatter) printSources(w io.Writer, sources []model.CostSource) {
	headers := []string{"Name", "Type", "Provider", "Billing", "Cost", "Enabled"}
	rows := make([][]string, 0, len(sources))
	for _, src := range sources {
		enabled := "no"
		if src.IsEnabled {
			enabled = "yes"
		}
		provider := src.Provider
		if provider == "" {
			provider = "-"
		}
		rows = append(rows, []string{
			util.TruncateToWidth(src.Name, 32),
			string(src.Type),
			provider,
			string(src.BillingMode),
			util.FormatCurrency(src.Cost, src.Currency),
			enabled,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = util.GetDisplayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if width := util.GetDisplayWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	fmt.Fprintln(w, "Sources")
	printRow := func(cells []string) {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = util.PadToWidth(cell, widths[i])
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(padded, "  "))
	}
	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
}
