// Package clock owns "now" and the local calendar day. Every date
// comparison in the query engine and the compactor resolves through a
// Clock so tests can pin today and exercise all range branches.
package clock

import (
	"fmt"
	"strings"
	"time"
)

// Clock provides the current instant and the local calendar date.
type Clock interface {
	Now() time.Time
	Today() Date
}

// System is a Clock backed by the wall clock in a fixed timezone.
type System struct {
	loc *time.Location
}

// NewSystem creates a System clock for the named timezone. An empty name
// selects the host's local zone.
func NewSystem(tz string) (*System, error) {
	if tz == "" {
		return &System{loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &System{loc: loc}, nil
}

// Now returns the current instant in the configured zone. The scheduler
// derives local midnight from this location, so Now must never collapse
// to UTC.
func (s *System) Now() time.Time { return time.Now().In(s.loc) }

// Today returns the current calendar date in the configured zone.
func (s *System) Today() Date {
	return DateOf(time.Now().In(s.loc))
}

// Fixed is a Clock pinned to a single instant. Test use only.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }
func (f Fixed) Today() Date    { return DateOf(f.Instant) }

// Date is a local calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD date. A full ISO datetime is accepted; only
// the part before the 'T' is kept.
func ParseDate(s string) (Date, error) {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MidnightMarker returns the reserved summary-row ts value for this date,
// exactly "YYYY-MM-DDT00:00:00".
func (d Date) MidnightMarker() string {
	return d.String() + "T00:00:00"
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// AddMonths returns the date n calendar months later (earlier for negative
// n), clamping to the last day of the target month: Mar 31 minus one month
// is Feb 28, not a normalized Mar 3 as time.AddDate would give.
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return Date{Year: first.Year(), Month: first.Month(), Day: day}
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }
