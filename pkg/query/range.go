package query

import (
	"fmt"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
)

// Range is one of the closed set of dashboard windows, each defining a
// reading-date predicate relative to local today.
type Range string

const (
	RangeDay     Range = "day"
	RangeWeek    Range = "week"
	RangeMonth   Range = "month"
	Range6Months Range = "6months"
	RangeYear    Range = "year"
)

// ParseRange validates a range query parameter.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case RangeDay, RangeWeek, RangeMonth, Range6Months, RangeYear:
		return Range(s), nil
	default:
		return "", fmt.Errorf("invalid range %q", s)
	}
}

// Predicate resolves the range against today. Month-based ranges use
// calendar arithmetic: a month back from Mar 31 reaches Feb 28, not 30 days.
func (r Range) Predicate(today clock.Date) storage.DatePredicate {
	switch r {
	case RangeDay:
		return storage.DateOn(today)
	case RangeWeek:
		return storage.DateFrom(today.AddDays(-6))
	case RangeMonth:
		return storage.DateFrom(today.AddMonths(-1))
	case Range6Months:
		return storage.DateFrom(today.AddMonths(-6))
	default: // RangeYear
		return storage.DateFrom(today.AddMonths(-12))
	}
}
