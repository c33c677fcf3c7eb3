package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-20")
	require.NoError(t, err)
	require.Equal(t, "2025-06-20", d.String())

	// Datetime input keeps the date component only.
	d, err = ParseDate("2025-06-20T14:00")
	require.NoError(t, err)
	require.Equal(t, "2025-06-20", d.String())

	_, err = ParseDate("20/06/2025")
	require.Error(t, err)

	_, err = ParseDate("")
	require.Error(t, err)
}

func TestMidnightMarker(t *testing.T) {
	d, err := ParseDate("2025-06-19")
	require.NoError(t, err)
	require.Equal(t, "2025-06-19T00:00:00", d.MidnightMarker())
}

func TestAddDays(t *testing.T) {
	d := Date{Year: 2025, Month: time.March, Day: 1}
	require.Equal(t, "2025-02-28", d.AddDays(-1).String())
	require.Equal(t, "2025-03-07", d.AddDays(6).String())

	// Leap year.
	d = Date{Year: 2024, Month: time.March, Day: 1}
	require.Equal(t, "2024-02-29", d.AddDays(-1).String())
}

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	d := Date{Year: 2025, Month: time.March, Day: 31}
	require.Equal(t, "2025-02-28", d.AddMonths(-1).String())

	// Leap February keeps the 29th.
	d = Date{Year: 2024, Month: time.March, Day: 31}
	require.Equal(t, "2024-02-29", d.AddMonths(-1).String())

	// Year boundaries.
	d = Date{Year: 2025, Month: time.January, Day: 15}
	require.Equal(t, "2024-07-15", d.AddMonths(-6).String())
	require.Equal(t, "2024-01-15", d.AddMonths(-12).String())

	// Feb 29 minus a year clamps to Feb 28.
	d = Date{Year: 2024, Month: time.February, Day: 29}
	require.Equal(t, "2023-02-28", d.AddMonths(-12).String())
}

func TestBeforeEqual(t *testing.T) {
	a := Date{Year: 2025, Month: time.June, Day: 19}
	b := Date{Year: 2025, Month: time.June, Day: 20}
	require.True(t, a.Before(b))
	require.False(t, b.Before(a))
	require.False(t, a.Before(a))
	require.True(t, a.Equal(a))
	require.False(t, a.Equal(b))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 6, 20, 14, 30, 0, 0, time.UTC)
	clk := Fixed{Instant: at}
	require.Equal(t, "2025-06-20", clk.Today().String())
	require.Equal(t, at, clk.Now())
}

func TestSystemClock_BadZone(t *testing.T) {
	_, err := NewSystem("Not/AZone")
	require.Error(t, err)

	clk, err := NewSystem("")
	require.NoError(t, err)
	require.False(t, clk.Today().IsZero())
}

func TestSystemClock_NowCarriesZone(t *testing.T) {
	clk, err := NewSystem("America/New_York")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", clk.Now().Location().String())
}
