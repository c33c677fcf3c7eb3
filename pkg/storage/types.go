package storage

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/homewatt/homewatt/pkg/clock"
)

// TS is the within-day marker on a reading row. An intra-day row carries an
// integer sequence (0 means unsequenced); a compacted summary row carries its
// day's midnight marker string ("2025-06-19T00:00:00"). The sqlite column is
// dynamically typed, so TS round-trips either representation.
type TS struct {
	seq    int64
	marker string
}

// Seq returns an intra-day TS with the given sequence value.
func Seq(n int64) TS { return TS{seq: n} }

// MarkerFor returns the summary TS for a date.
func MarkerFor(d clock.Date) TS { return TS{marker: d.MidnightMarker()} }

// IsMarker reports whether t is a midnight marker.
func (t TS) IsMarker() bool { return t.marker != "" }

// SeqValue returns the intra-day sequence; 0 for marker values.
func (t TS) SeqValue() int64 { return t.seq }

// Less orders TS values the way SQLite orders the underlying column:
// integers before text, each compared within its own kind.
func (t TS) Less(o TS) bool {
	if t.IsMarker() != o.IsMarker() {
		return !t.IsMarker()
	}
	if t.IsMarker() {
		return t.marker < o.marker
	}
	return t.seq < o.seq
}

func (t TS) String() string {
	if t.IsMarker() {
		return t.marker
	}
	return strconv.FormatInt(t.seq, 10)
}

// MarshalJSON emits a number for intra-day values and a string for markers,
// matching the rows the dashboard already consumes.
func (t TS) MarshalJSON() ([]byte, error) {
	if t.IsMarker() {
		return []byte(`"` + t.marker + `"`), nil
	}
	return []byte(strconv.FormatInt(t.seq, 10)), nil
}

func (t *TS) UnmarshalJSON(b []byte) error {
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		*t = TS{marker: string(b[1 : len(b)-1])}
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("ts must be a number or marker string, got %s", b)
	}
	*t = TS{seq: n}
	return nil
}

func (t TS) Value() (driver.Value, error) {
	if t.IsMarker() {
		return t.marker, nil
	}
	return t.seq, nil
}

func (t *TS) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*t = TS{seq: v}
	case float64:
		*t = TS{seq: int64(v)}
	case string:
		*t = TS{marker: v}
	case []byte:
		*t = TS{marker: string(v)}
	case nil:
		*t = TS{}
	default:
		return fmt.Errorf("cannot scan %T into TS", src)
	}
	return nil
}

// DeviceReading is one row of the device relation: a single sensor push, or
// a daily summary when TS is the midnight marker.
type DeviceReading struct {
	ID          int64      `db:"id" json:"id,omitempty"`
	ReadingDate clock.Date `db:"reading_date" json:"reading_date"`
	Device      string     `db:"device" json:"device"`
	Current     float64    `db:"current" json:"current"`
	TS          TS         `db:"ts" json:"ts"`
}

// SolarReading is one row of the solar relation. Intra-day rows carry
// energy equal to power under the one-hour-window assumption; a summary row
// carries the day's summed energy and zero power.
type SolarReading struct {
	ID          int64      `db:"id" json:"id,omitempty"`
	ReadingDate clock.Date `db:"reading_date" json:"reading_date"`
	Power       float64    `db:"power" json:"power"`
	Energy      float64    `db:"energy" json:"energy"`
	TS          TS         `db:"ts" json:"ts"`
}

// DatePredicate selects rows by reading date. Exactly one field is set; the
// closed set of predicates the query engine produces keeps backends free of
// raw query fragments.
type DatePredicate struct {
	On   clock.Date // match this date exactly
	From clock.Date // match this date and everything after
}

// DateOn matches rows on exactly d.
func DateOn(d clock.Date) DatePredicate { return DatePredicate{On: d} }

// DateFrom matches rows on or after d.
func DateFrom(d clock.Date) DatePredicate { return DatePredicate{From: d} }

// Matches reports whether a reading date satisfies the predicate.
func (p DatePredicate) Matches(d clock.Date) bool {
	if !p.On.IsZero() {
		return d.Equal(p.On)
	}
	return !d.Before(p.From)
}
