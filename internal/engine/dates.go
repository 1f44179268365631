package engine

import "time"

// monthAnchor normalizes a date to the first of its month (UTC midnight).
// The engine represents every simulated month by its anchor.
func monthAnchor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func addMonths(t time.Time, n int) time.Time {
	return monthAnchor(t).AddDate(0, n, 0)
}

// monthsBetween returns the number of whole months from the anchor of `from`
// to the anchor of `to`. Negative when `to` precedes `from`.
func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// ukFiscalYear returns the calendar year in which the UK tax year containing
// the date started. The UK tax year runs 6 April to 5 April:
// 2025-04-05 -> 2024, 2025-04-06 -> 2025.
func ukFiscalYear(t time.Time) int {
	switch {
	case t.Month() < time.April:
		return t.Year() - 1
	case t.Month() == time.April && t.Day() < 6:
		return t.Year() - 1
	default:
		return t.Year()
	}
}
