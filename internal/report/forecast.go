package report

import (
	"time"

	"github.com/oaklinehq/insights-backend/internal/timerange"
)

// Forecast is a straight run-rate projection of period revenue. It exists
// to feed the action center's forecast-gap rule and the dashboard's pace
// indicator; it is not a model.
type Forecast struct {
	RevenueToDate    float64  `json:"revenueToDate"`
	PerDay           float64  `json:"perDay"`
	ProjectedRevenue float64  `json:"projectedRevenue"`
	ElapsedDays      float64  `json:"elapsedDays"`
	PeriodDays       float64  `json:"periodDays"`
	GapVsPreviousPct *float64 `json:"gapVsPreviousPct"`
}

// BuildForecast projects period revenue from the pace observed so far.
func BuildForecast(r timerange.TimeRange, revenue, prevRevenue float64, now time.Time) Forecast {
	periodDays := r.Duration().Hours() / 24
	if periodDays < 1 {
		periodDays = 1
	}

	elapsedDays := now.Sub(r.Start).Hours() / 24
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	if elapsedDays > periodDays {
		elapsedDays = periodDays
	}

	perDay := revenue / elapsedDays
	projected := perDay * periodDays

	return Forecast{
		RevenueToDate:    round2(revenue),
		PerDay:           round2(perDay),
		ProjectedRevenue: round2(projected),
		ElapsedDays:      round1(elapsedDays),
		PeriodDays:       round1(periodDays),
		GapVsPreviousPct: finiteDelta(projected, prevRevenue),
	}
}
