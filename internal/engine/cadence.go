package engine

import (
	"time"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// itemActive reports whether a periodic item is live in the given month: the
// start date (normalized to the 1st) is on or before the month anchor and the
// end date, if any, has not passed.
func itemActive(start time.Time, end *time.Time, month time.Time) bool {
	if monthAnchor(start).After(month) {
		return false
	}
	if end != nil && end.Before(month) {
		return false
	}
	return true
}

// cadenceFires reports whether a periodic item fires in the given month.
// Quarterly items fire in January, April, July and October. Annual items fire
// in their start month, except automation rules, which anchor to January
// (januaryAnchor).
func cadenceFires(c domain.Cadence, start time.Time, month time.Time, januaryAnchor bool) bool {
	switch c {
	case domain.CadenceOnce:
		return sameMonth(start, month)
	case domain.CadenceMonthly:
		return true
	case domain.CadenceQuarterly:
		switch month.Month() {
		case time.January, time.April, time.July, time.October:
			return true
		}
		return false
	case domain.CadenceAnnually:
		if januaryAnchor {
			return month.Month() == time.January
		}
		return month.Month() == start.Month()
	}
	return false
}
