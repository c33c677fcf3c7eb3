// Package query materializes dashboard series from the store: raw intra-day
// rows for the day range, and past daily summary rows blended with a live
// "today" average for the longer ranges. The blend is what lets the
// dashboard draw a continuous series without the compactor ever touching
// the current day.
package query

import (
	"context"
	"sort"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
)

// Engine executes range queries and spot aggregates.
type Engine struct {
	store storage.Store
	clock clock.Clock
}

// NewEngine creates a query engine.
func NewEngine(store storage.Store, clk clock.Clock) *Engine {
	return &Engine{store: store, clock: clk}
}

// DevicePoint is one element of a device consumption series.
type DevicePoint struct {
	ReadingDate clock.Date `json:"reading_date"`
	Device      string     `json:"device"`
	Current     float64    `json:"current"`
	TS          storage.TS `json:"ts"`
}

// SolarPoint is one element of a solar series.
type SolarPoint struct {
	ReadingDate clock.Date `json:"reading_date"`
	Power       float64    `json:"power"`
	Energy      float64    `json:"energy"`
	TS          storage.TS `json:"ts"`
}

// DeviceConsumption materializes the series for (device, r).
//
// For the day range it returns today's raw intra-day rows in ascending ts
// order. For every other range it returns one row per past date in
// ascending date order, followed by a synthesized today row carrying the
// live average (ts 0), appended only when today has readings.
func (e *Engine) DeviceConsumption(ctx context.Context, device string, r Range) ([]DevicePoint, error) {
	today := e.clock.Today()

	rows, err := e.store.ListDeviceRows(ctx, device, r.Predicate(today))
	if err != nil {
		return nil, err
	}

	if r == RangeDay {
		points := make([]DevicePoint, 0, len(rows))
		for _, row := range rows {
			points = append(points, devicePoint(row))
		}
		return points, nil
	}

	points := collapsePastDays(rows, today)

	avg, err := e.store.AvgDeviceCurrent(ctx, device, today)
	if err != nil {
		return nil, err
	}
	if avg != nil {
		points = append(points, DevicePoint{
			ReadingDate: today,
			Device:      device,
			Current:     *avg,
			TS:          storage.Seq(0),
		})
	}
	return points, nil
}

// SolarConsumption returns the solar rows in the range, ascending by ts.
// No live today row is synthesized; the dashboard only consumes the
// aggregate energy view for solar.
func (e *Engine) SolarConsumption(ctx context.Context, r Range) ([]SolarPoint, error) {
	rows, err := e.store.ListSolarRows(ctx, r.Predicate(e.clock.Today()))
	if err != nil {
		return nil, err
	}
	points := make([]SolarPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, SolarPoint{
			ReadingDate: row.ReadingDate,
			Power:       row.Power,
			Energy:      row.Energy,
			TS:          row.TS,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].TS.Less(points[j].TS) })
	return points, nil
}

// AvgCurrentToday returns the mean current over today's intra-day readings,
// or nil when the device has none.
func (e *Engine) AvgCurrentToday(ctx context.Context, device string) (*float64, error) {
	return e.store.AvgDeviceCurrent(ctx, device, e.clock.Today())
}

// MinCurrentToday returns the minimum over today's distinct ts groups, or
// nil when the device has none.
func (e *Engine) MinCurrentToday(ctx context.Context, device string) (*float64, error) {
	return e.store.MinDeviceCurrent(ctx, device, e.clock.Today())
}

// collapsePastDays keeps one point per past date, in ascending date order.
// A compacted date has exactly one row anyway; for a not-yet-compacted date
// the summary row wins, otherwise the last intra-day row stands in.
func collapsePastDays(rows []storage.DeviceReading, today clock.Date) []DevicePoint {
	points := make([]DevicePoint, 0, len(rows))
	index := make(map[clock.Date]int)

	for _, row := range rows {
		if !row.ReadingDate.Before(today) {
			continue
		}
		i, seen := index[row.ReadingDate]
		if !seen {
			index[row.ReadingDate] = len(points)
			points = append(points, devicePoint(row))
			continue
		}
		if !points[i].TS.IsMarker() {
			points[i] = devicePoint(row)
		}
	}
	return points
}

func devicePoint(row storage.DeviceReading) DevicePoint {
	return DevicePoint{
		ReadingDate: row.ReadingDate,
		Device:      row.Device,
		Current:     row.Current,
		TS:          row.TS,
	}
}
