package compaction

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
)

// hoursPerDay is the default averaging divisor: a day is treated as a full
// 24 slot window regardless of how many samples a device produced.
const hoursPerDay = 24

// Compactor rolls a day's raw readings into summary rows.
type Compactor struct {
	store      storage.Store
	avgByCount bool

	// Serializes compaction passes. The scheduler and the HTTP triggers
	// can otherwise race on the same day.
	mu sync.Mutex
}

// New creates a compactor. When avgByCount is set, daily device averages
// divide by the observed sample count instead of 24.
func New(store storage.Store, avgByCount bool) *Compactor {
	return &Compactor{store: store, avgByCount: avgByCount}
}

// CompactSolar replaces day's intra-day solar rows with a single summary
// row holding the summed energy, and returns that total. An empty day
// still writes a summary with energy 0.
func (c *Compactor) CompactSolar(ctx context.Context, day clock.Date) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compactSolar(ctx, day)
}

func (c *Compactor) compactSolar(ctx context.Context, day clock.Date) (float64, error) {
	total, err := c.store.SumSolarEnergy(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("sum solar energy for %s: %w", day, err)
	}

	marker := storage.MarkerFor(day)
	summary := storage.SolarReading{
		ReadingDate: day,
		Power:       0,
		Energy:      total,
		TS:          marker,
	}
	// Summary lands before the raw rows go away, so a crash between the
	// two steps leaves the day over-complete rather than lossy.
	if err := c.store.UpsertSolarSummary(ctx, summary); err != nil {
		return 0, fmt.Errorf("upsert solar summary for %s: %w", day, err)
	}
	if err := c.store.DeleteIntraDaySolar(ctx, day, marker); err != nil {
		return 0, fmt.Errorf("delete intra-day solar for %s: %w", day, err)
	}

	log.Info().Str("date", day.String()).Float64("total_energy", total).Msg("compacted solar readings")
	return total, nil
}

// CompactDevices replaces each device's intra-day rows for day with one
// summary row holding the device's daily average current. Devices with no
// rows that day get no summary.
func (c *Compactor) CompactDevices(ctx context.Context, day clock.Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compactDevices(ctx, day)
}

func (c *Compactor) compactDevices(ctx context.Context, day clock.Date) error {
	devices, err := c.store.DevicesOn(ctx, day)
	if err != nil {
		return fmt.Errorf("list devices for %s: %w", day, err)
	}

	marker := storage.MarkerFor(day)
	for _, device := range devices {
		sum, count, err := c.store.SumAndCountDeviceCurrent(ctx, device, day)
		if err != nil {
			return fmt.Errorf("sum current for %s on %s: %w", device, day, err)
		}
		if count == 0 {
			continue
		}

		avg := sum / hoursPerDay
		if c.avgByCount {
			avg = sum / float64(count)
		}

		summary := storage.DeviceReading{
			ReadingDate: day,
			Device:      device,
			Current:     avg,
			TS:          marker,
		}
		if err := c.store.UpsertDeviceSummary(ctx, summary); err != nil {
			return fmt.Errorf("upsert summary for %s on %s: %w", device, day, err)
		}
		if err := c.store.DeleteIntraDayDevice(ctx, device, day, marker); err != nil {
			return fmt.Errorf("delete intra-day rows for %s on %s: %w", device, day, err)
		}

		log.Info().Str("date", day.String()).Str("device", device).Float64("average_current", avg).Msg("compacted device readings")
	}

	return nil
}

// Run performs the full end-of-day pass for day: solar first, then every
// device. It is safe to re-run for an already compacted day.
func (c *Compactor) Run(ctx context.Context, day clock.Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.compactSolar(ctx, day); err != nil {
		return err
	}
	return c.compactDevices(ctx, day)
}
