/*
Package storage provides the pluggable persistence abstraction for homewatt
readings.

# Store Interface

Two backends implement the Store interface:
  - memory: in-memory rows for tests and development
  - sqlite: the production backend, a single on-disk database file

# Data Model

Two relations, device readings and solar readings, both keyed by a local
calendar date and a ts column with split semantics:

  - intra-day rows carry an integer sequence (0 = unsequenced); one row per
    sensor push, never merged or deduplicated
  - a daily summary row carries the date's midnight marker string
    ("2025-06-19T00:00:00") in ts; end-of-day compaction writes it via the
    Upsert operations and then deletes the date's intra-day rows

For any past date that has been compacted there is exactly one summary row
per observed device and exactly one solar summary row. The midnight marker
is reserved: ingest never produces it.

# Date Predicates

Queries select rows through DatePredicate values (DateOn, DateFrom) rather
than query fragments, so the query engine can run unmodified against the
memory backend in tests.

# Usage Example

	store, err := sqlite.Open("./consumption.db")
	if err != nil {
	    log.Fatal().Err(err).Msg("open store")
	}
	defer store.Close()

	err = store.AppendDeviceReading(ctx, storage.DeviceReading{
	    ReadingDate: day,
	    Device:      "ESP1",
	    Current:     118.5,
	    TS:          storage.Seq(14),
	})

	rows, err := store.ListDeviceRows(ctx, "ESP1", storage.DateFrom(day.AddDays(-6)))

# See Also

  - memory.New() for the in-memory backend
  - sqlite.Open() for the durable backend
  - pkg/compaction for the end-of-day fold
*/
package storage
