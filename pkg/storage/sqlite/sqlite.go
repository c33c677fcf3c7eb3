// Package sqlite is the durable storage backend: a single on-disk database
// file holding the two reading relations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
)

// The ts columns are declared without a type on purpose: SQLite then keeps
// per-row typing, so intra-day rows store an integer sequence while summary
// rows store the midnight marker string, exactly as the dashboard expects.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS device_readings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		reading_date TEXT NOT NULL,
		device       TEXT NOT NULL,
		current      REAL NOT NULL,
		ts           NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_device_readings_date
		ON device_readings(device, reading_date)`,
	`CREATE TABLE IF NOT EXISTS solar_readings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		reading_date TEXT NOT NULL,
		power        REAL NOT NULL,
		energy       REAL NOT NULL,
		ts           NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_solar_readings_date
		ON solar_readings(reading_date)`,
}

// Store is the SQLite-backed Store.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if absent) the database file at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection enforces the single-writer discipline and sidesteps
	// SQLITE_BUSY between the pooled handles.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close shuts down the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) AppendDeviceReading(ctx context.Context, r storage.DeviceReading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO device_readings (reading_date, device, current, ts) VALUES (?, ?, ?, ?)`,
		r.ReadingDate, r.Device, r.Current, r.TS)
	if err != nil {
		return fmt.Errorf("insert device reading: %w", err)
	}
	return nil
}

func (s *Store) AppendSolarReading(ctx context.Context, r storage.SolarReading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO solar_readings (reading_date, power, energy, ts) VALUES (?, ?, ?, ?)`,
		r.ReadingDate, r.Power, r.Energy, r.TS)
	if err != nil {
		return fmt.Errorf("insert solar reading: %w", err)
	}
	return nil
}

// UpsertDeviceSummary replaces the (date, device) summary row inside one
// transaction, keeping repeated compaction passes at exactly one row.
func (s *Store) UpsertDeviceSummary(ctx context.Context, r storage.DeviceReading) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM device_readings WHERE reading_date = ? AND device = ? AND ts = ?`,
		r.ReadingDate, r.Device, r.TS); err != nil {
		return fmt.Errorf("clear device summary: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO device_readings (reading_date, device, current, ts) VALUES (?, ?, ?, ?)`,
		r.ReadingDate, r.Device, r.Current, r.TS); err != nil {
		return fmt.Errorf("insert device summary: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit device summary: %w", err)
	}
	return nil
}

func (s *Store) UpsertSolarSummary(ctx context.Context, r storage.SolarReading) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM solar_readings WHERE reading_date = ? AND ts = ?`,
		r.ReadingDate, r.TS); err != nil {
		return fmt.Errorf("clear solar summary: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO solar_readings (reading_date, power, energy, ts) VALUES (?, ?, ?, ?)`,
		r.ReadingDate, r.Power, r.Energy, r.TS); err != nil {
		return fmt.Errorf("insert solar summary: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit solar summary: %w", err)
	}
	return nil
}

func (s *Store) ListDeviceRows(ctx context.Context, device string, pred storage.DatePredicate) ([]storage.DeviceReading, error) {
	cond, arg := predicate(pred)
	var out []storage.DeviceReading
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, reading_date, device, current, ts FROM device_readings
		 WHERE device = ? AND `+cond+` ORDER BY reading_date ASC, ts ASC`,
		device, arg)
	if err != nil {
		return nil, fmt.Errorf("list device rows: %w", err)
	}
	return out, nil
}

func (s *Store) ListAllDeviceRows(ctx context.Context) ([]storage.DeviceReading, error) {
	var out []storage.DeviceReading
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, reading_date, device, current, ts FROM device_readings ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all device rows: %w", err)
	}
	return out, nil
}

func (s *Store) ListSolarRows(ctx context.Context, pred storage.DatePredicate) ([]storage.SolarReading, error) {
	cond, arg := predicate(pred)
	var out []storage.SolarReading
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, reading_date, power, energy, ts FROM solar_readings
		 WHERE `+cond+` ORDER BY reading_date ASC, ts ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list solar rows: %w", err)
	}
	return out, nil
}

func (s *Store) SumSolarEnergy(ctx context.Context, day clock.Date) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(energy), 0) FROM solar_readings WHERE reading_date = ?`, day)
	if err != nil {
		return 0, fmt.Errorf("sum solar energy: %w", err)
	}
	return total, nil
}

func (s *Store) SumAndCountDeviceCurrent(ctx context.Context, device string, day clock.Date) (float64, int, error) {
	var row struct {
		Sum   float64 `db:"sum"`
		Count int     `db:"count"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT COALESCE(SUM(current), 0) AS sum, COUNT(*) AS count
		 FROM device_readings WHERE device = ? AND reading_date = ? AND ts != ?`,
		device, day, storage.MarkerFor(day))
	if err != nil {
		return 0, 0, fmt.Errorf("sum device current: %w", err)
	}
	return row.Sum, row.Count, nil
}

func (s *Store) AvgDeviceCurrent(ctx context.Context, device string, day clock.Date) (*float64, error) {
	var avg sql.NullFloat64
	err := s.db.GetContext(ctx, &avg,
		`SELECT AVG(current) FROM device_readings
		 WHERE device = ? AND reading_date = ? AND ts != ?`,
		device, day, storage.MarkerFor(day))
	if err != nil {
		return nil, fmt.Errorf("avg device current: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (s *Store) MinDeviceCurrent(ctx context.Context, device string, day clock.Date) (*float64, error) {
	var min sql.NullFloat64
	err := s.db.GetContext(ctx, &min,
		`SELECT MIN(current) FROM (
			SELECT ts, current FROM device_readings
			WHERE device = ? AND reading_date = ?
			GROUP BY ts
		 )`, device, day)
	if err != nil {
		return nil, fmt.Errorf("min device current: %w", err)
	}
	if !min.Valid {
		return nil, nil
	}
	return &min.Float64, nil
}

func (s *Store) DevicesOn(ctx context.Context, day clock.Date) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out,
		`SELECT DISTINCT device FROM device_readings WHERE reading_date = ? ORDER BY device`, day)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return out, nil
}

func (s *Store) HasSolarSummary(ctx context.Context, day clock.Date) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM solar_readings WHERE reading_date = ? AND ts = ?`,
		day, storage.MarkerFor(day))
	if err != nil {
		return false, fmt.Errorf("probe solar summary: %w", err)
	}
	return n > 0, nil
}

func (s *Store) DeleteIntraDaySolar(ctx context.Context, day clock.Date, keep storage.TS) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM solar_readings WHERE reading_date = ? AND ts != ?`, day, keep)
	if err != nil {
		return fmt.Errorf("delete solar intra-day: %w", err)
	}
	return nil
}

func (s *Store) DeleteIntraDayDevice(ctx context.Context, device string, day clock.Date, keep storage.TS) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM device_readings WHERE device = ? AND reading_date = ? AND ts != ?`,
		device, day, keep)
	if err != nil {
		return fmt.Errorf("delete device intra-day: %w", err)
	}
	return nil
}

// predicate translates a DatePredicate into its WHERE fragment and argument.
func predicate(p storage.DatePredicate) (string, clock.Date) {
	if !p.On.IsZero() {
		return `reading_date = ?`, p.On
	}
	return `reading_date >= ?`, p.From
}
