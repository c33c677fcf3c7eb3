package storage

import (
	"encoding/json"
	"testing"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) clock.Date {
	t.Helper()
	d, err := clock.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestTS_JSON(t *testing.T) {
	b, err := json.Marshal(Seq(14))
	require.NoError(t, err)
	require.Equal(t, "14", string(b))

	day := mustDate(t, "2025-06-19")
	b, err = json.Marshal(MarkerFor(day))
	require.NoError(t, err)
	require.Equal(t, `"2025-06-19T00:00:00"`, string(b))

	var ts TS
	require.NoError(t, json.Unmarshal([]byte("7"), &ts))
	require.False(t, ts.IsMarker())
	require.Equal(t, int64(7), ts.SeqValue())

	require.NoError(t, json.Unmarshal([]byte(`"2025-06-19T00:00:00"`), &ts))
	require.True(t, ts.IsMarker())
	require.Equal(t, MarkerFor(day), ts)

	require.Error(t, json.Unmarshal([]byte("true"), &ts))
}

func TestTS_Scan(t *testing.T) {
	var ts TS
	require.NoError(t, ts.Scan(int64(3)))
	require.Equal(t, Seq(3), ts)

	require.NoError(t, ts.Scan("2025-06-19T00:00:00"))
	require.True(t, ts.IsMarker())

	require.NoError(t, ts.Scan([]byte("2025-06-19T00:00:00")))
	require.True(t, ts.IsMarker())

	require.Error(t, ts.Scan(struct{}{}))
}

func TestTS_Value(t *testing.T) {
	v, err := Seq(5).Value()
	require.NoError(t, err)
	require.Equal(t, int64(5), v)

	v, err = MarkerFor(mustDate(t, "2025-06-19")).Value()
	require.NoError(t, err)
	require.Equal(t, "2025-06-19T00:00:00", v)
}

func TestTS_Less(t *testing.T) {
	day := mustDate(t, "2025-06-19")

	// Integers sort before markers, mirroring SQLite affinity ordering.
	require.True(t, Seq(99).Less(MarkerFor(day)))
	require.False(t, MarkerFor(day).Less(Seq(0)))

	require.True(t, Seq(1).Less(Seq(2)))
	require.True(t, MarkerFor(day).Less(MarkerFor(day.AddDays(1))))
}

func TestDatePredicate(t *testing.T) {
	d19 := mustDate(t, "2025-06-19")
	d20 := mustDate(t, "2025-06-20")

	on := DateOn(d20)
	require.True(t, on.Matches(d20))
	require.False(t, on.Matches(d19))

	from := DateFrom(d19)
	require.True(t, from.Matches(d19))
	require.True(t, from.Matches(d20))
	require.False(t, from.Matches(d19.AddDays(-1)))
}

func TestDeviceReading_JSONShape(t *testing.T) {
	r := DeviceReading{
		ReadingDate: mustDate(t, "2025-06-20"),
		Device:      "ESP1",
		Current:     120,
		TS:          Seq(0),
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"reading_date":"2025-06-20","device":"ESP1","current":120,"ts":0}`, string(b))
}
