package storage

import (
	"context"

	"github.com/homewatt/homewatt/pkg/clock"
)

// Store defines the interface for reading persistence backends.
// Implementations: memory (testing), sqlite (production).
//
// List results ascend by (reading_date, ts). Appends never merge or
// deduplicate; two identical readings produce two rows. Upserts replace the
// summary row keyed on (reading_date[, device], midnight-marker ts), which
// is what keeps end-of-day compaction idempotent.
type Store interface {
	// Append inserts one intra-day row.
	AppendDeviceReading(ctx context.Context, r DeviceReading) error
	AppendSolarReading(ctx context.Context, r SolarReading) error

	// Upsert inserts or replaces the daily summary row for r.ReadingDate.
	// r.TS must be the date's midnight marker.
	UpsertDeviceSummary(ctx context.Context, r DeviceReading) error
	UpsertSolarSummary(ctx context.Context, r SolarReading) error

	// ListDeviceRows returns a device's rows matching the predicate.
	ListDeviceRows(ctx context.Context, device string, pred DatePredicate) ([]DeviceReading, error)
	// ListAllDeviceRows returns every device row, in insertion order.
	ListAllDeviceRows(ctx context.Context) ([]DeviceReading, error)
	// ListSolarRows returns solar rows matching the predicate, ascending by ts.
	ListSolarRows(ctx context.Context, pred DatePredicate) ([]SolarReading, error)

	// SumSolarEnergy returns total energy over rows on the given date.
	SumSolarEnergy(ctx context.Context, day clock.Date) (float64, error)
	// SumAndCountDeviceCurrent returns the sum of current and the row count
	// over a device's intra-day rows on the given date. The midnight-marker
	// summary row is excluded, so a compacted day sums to (0, 0) and a
	// repeated compaction pass finds nothing to fold.
	SumAndCountDeviceCurrent(ctx context.Context, device string, day clock.Date) (float64, int, error)
	// AvgDeviceCurrent returns the mean current over a device's intra-day
	// rows on the given date (summary row excluded), or nil when none exist.
	AvgDeviceCurrent(ctx context.Context, device string, day clock.Date) (*float64, error)
	// MinDeviceCurrent returns the minimum current over the distinct ts
	// groups of a device's rows on the given date, or nil when none exist.
	MinDeviceCurrent(ctx context.Context, device string, day clock.Date) (*float64, error)
	// DevicesOn returns the distinct devices with rows on the given date.
	DevicesOn(ctx context.Context, day clock.Date) ([]string, error)
	// HasSolarSummary reports whether the date already has a solar summary
	// row. A completed compaction pass always leaves one, so this is the
	// scheduler's catch-up probe.
	HasSolarSummary(ctx context.Context, day clock.Date) (bool, error)

	// DeleteIntraDay removes a date's rows except those with ts == keep.
	DeleteIntraDaySolar(ctx context.Context, day clock.Date, keep TS) error
	DeleteIntraDayDevice(ctx context.Context, device string, day clock.Date, keep TS) error

	// Close cleanly shuts down the backend.
	Close() error
}
