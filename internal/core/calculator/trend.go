package calculator

import (
	"time"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

// CalculateMonthlyTrend builds the trailing trend over the given number of
// calendar months, oldest first, ending at the current month inclusive. A
// source contributes to a month when its active window overlaps that month:
// no start date or start on/before the month's last day, and no end date or
// end on/after the month's first day. The function sums whatever collection
// it is handed; callers wanting enabled-only trends filter beforehand.
func CalculateMonthlyTrend(sources []model.CostSource, months int) []model.MonthlyTrendPoint {
	return calculateMonthlyTrendAt(sources, months, util.GetTimeProvider().Now())
}

func calculateMonthlyTrendAt(sources []model.CostSource, months int, now time.Time) []model.MonthlyTrendPoint {
	if months <= 0 {
		return []model.MonthlyTrendPoint{}
	}

	trend := make([]model.MonthlyTrendPoint, 0, months)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := months - 1; i >= 0; i-- {
		monthStart, monthEnd := util.MonthBounds(current.AddDate(0, -i, 0))

		var sum float64
		for _, s := range sources {
			if !sourceActiveInRange(s, monthStart, monthEnd) {
				continue
			}
			sum += NormalizeToMonthly(s.Cost, s.BillingMode)
		}

		trend = append(trend, model.MonthlyTrendPoint{
			Month: monthStart.Format("2006-01"),
			Cost:  Round2(sum),
		})
	}

	return trend
}

// sourceActiveInRange reports whether the source's [StartDate, EndDate]
// window overlaps [rangeStart, rangeEnd]. Unset or unparsable bounds are
// treated as unbounded.
func sourceActiveInRange(s model.CostSource, rangeStart, rangeEnd time.Time) bool {
	if start, ok := model.ParseDate(s.StartDate); ok && rangeEnd.Before(start) {
		return false
	}
	if end, ok := model.ParseDate(s.EndDate); ok && rangeStart.After(end) {
		return false
	}
	return true
}

// AmortizedCost spreads a one-time cost over the whole calendar months
// between its purchase window bounds.
type AmortizedCost struct {
	MonthlyCost     float64 `json:"monthlyCost"`
	TotalMonths     int     `json:"totalMonths"`
	EffectiveMonths int     `json:"effectiveMonths"`
}

// CalculateAmortizedCost divides totalCost across the inclusive calendar-month
// span from startDate to endDate (end defaults to now when empty or invalid),
// capped at maxMonths. The span is never less than one month.
func CalculateAmortizedCost(totalCost float64, startDate, endDate string, maxMonths int) AmortizedCost {
	now := util.GetTimeProvider().Now()

	start, ok := model.ParseDate(startDate)
	if !ok {
		start = now
	}
	end, ok := model.ParseDate(endDate)
	if !ok {
		end = now
	}

	totalMonths := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if totalMonths < 1 {
		totalMonths = 1
	}

	effective := totalMonths
	if maxMonths > 0 && effective > maxMonths {
		effective = maxMonths
	}

	return AmortizedCost{
		MonthlyCost:     Round2(totalCost / float64(effective)),
		TotalMonths:     totalMonths,
		EffectiveMonths: effective,
	}
}
