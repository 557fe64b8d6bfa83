package shared

import "time"

// Summary periods accepted by the reporting endpoints.
const (
	PeriodWeek    = "7d"
	PeriodMonth   = "30d"
	PeriodQuarter = "90d"
	PeriodYear    = "1y"
)

var periodDurations = map[string]time.Duration{
	PeriodWeek:    7 * 24 * time.Hour,
	PeriodMonth:   30 * 24 * time.Hour,
	PeriodQuarter: 90 * 24 * time.Hour,
	PeriodYear:    365 * 24 * time.Hour,
}

// PeriodWindow resolves a period token to the half-open range [from, to).
// Unrecognised tokens fall back to the 30 day window.
func PeriodWindow(period string, now time.Time) (time.Time, time.Time) {
	d, ok := periodDurations[period]
	if !ok {
		d = periodDurations[PeriodMonth]
	}
	return now.Add(-d), now
}

// DaysWindow resolves a day count to the half-open range [from, to).
func DaysWindow(days int, now time.Time) (time.Time, time.Time) {
	if days <= 0 {
		days = 30
	}
	return now.AddDate(0, 0, -days), now
}
