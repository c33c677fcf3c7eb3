// Package memory stores readings in memory. Data is lost on restart.
// Useful for testing and development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
)

// Store is the in-memory backend.
type Store struct {
	mu     sync.RWMutex
	device []storage.DeviceReading
	solar  []storage.SolarReading
	nextID int64
}

// New creates an in-memory storage backend.
func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) AppendDeviceReading(ctx context.Context, r storage.DeviceReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	s.device = append(s.device, r)
	return nil
}

func (s *Store) AppendSolarReading(ctx context.Context, r storage.SolarReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	s.solar = append(s.solar, r)
	return nil
}

// UpsertDeviceSummary replaces the (date, device) summary row, or inserts it.
func (s *Store) UpsertDeviceSummary(ctx context.Context, r storage.DeviceReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.device[:0]
	for _, row := range s.device {
		if row.Device == r.Device && row.ReadingDate.Equal(r.ReadingDate) && row.TS.IsMarker() {
			continue
		}
		kept = append(kept, row)
	}
	s.device = kept

	r.ID = s.nextID
	s.nextID++
	s.device = append(s.device, r)
	return nil
}

// UpsertSolarSummary replaces the date's solar summary row, or inserts it.
func (s *Store) UpsertSolarSummary(ctx context.Context, r storage.SolarReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.solar[:0]
	for _, row := range s.solar {
		if row.ReadingDate.Equal(r.ReadingDate) && row.TS.IsMarker() {
			continue
		}
		kept = append(kept, row)
	}
	s.solar = kept

	r.ID = s.nextID
	s.nextID++
	s.solar = append(s.solar, r)
	return nil
}

func (s *Store) ListDeviceRows(ctx context.Context, device string, pred storage.DatePredicate) ([]storage.DeviceReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.DeviceReading
	for _, row := range s.device {
		if row.Device == device && pred.Matches(row.ReadingDate) {
			out = append(out, row)
		}
	}
	sortDeviceRows(out)
	return out, nil
}

func (s *Store) ListAllDeviceRows(ctx context.Context) ([]storage.DeviceReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.DeviceReading, len(s.device))
	copy(out, s.device)
	return out, nil
}

func (s *Store) ListSolarRows(ctx context.Context, pred storage.DatePredicate) ([]storage.SolarReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.SolarReading
	for _, row := range s.solar {
		if pred.Matches(row.ReadingDate) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReadingDate.Equal(out[j].ReadingDate) {
			return out[i].ReadingDate.Before(out[j].ReadingDate)
		}
		return out[i].TS.Less(out[j].TS)
	})
	return out, nil
}

func (s *Store) SumSolarEnergy(ctx context.Context, day clock.Date) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, row := range s.solar {
		if row.ReadingDate.Equal(day) {
			total += row.Energy
		}
	}
	return total, nil
}

func (s *Store) SumAndCountDeviceCurrent(ctx context.Context, device string, day clock.Date) (float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	var count int
	for _, row := range s.device {
		if row.Device == device && row.ReadingDate.Equal(day) && !row.TS.IsMarker() {
			sum += row.Current
			count++
		}
	}
	return sum, count, nil
}

func (s *Store) AvgDeviceCurrent(ctx context.Context, device string, day clock.Date) (*float64, error) {
	sum, count, err := s.SumAndCountDeviceCurrent(ctx, device, day)
	if err != nil || count == 0 {
		return nil, err
	}
	avg := sum / float64(count)
	return &avg, nil
}

// MinDeviceCurrent takes the minimum over distinct ts groups: within a
// group the last-seen value wins, matching how the dashboard reads
// re-pushed sequence slots.
func (s *Store) MinDeviceCurrent(ctx context.Context, device string, day clock.Date) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[storage.TS]float64)
	for _, row := range s.device {
		if row.Device == device && row.ReadingDate.Equal(day) {
			groups[row.TS] = row.Current
		}
	}
	if len(groups) == 0 {
		return nil, nil
	}
	var min float64
	first := true
	for _, v := range groups {
		if first || v < min {
			min = v
			first = false
		}
	}
	return &min, nil
}

func (s *Store) DevicesOn(ctx context.Context, day clock.Date) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, row := range s.device {
		if row.ReadingDate.Equal(day) && !seen[row.Device] {
			seen[row.Device] = true
			out = append(out, row.Device)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) HasSolarSummary(ctx context.Context, day clock.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.solar {
		if row.ReadingDate.Equal(day) && row.TS.IsMarker() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteIntraDaySolar(ctx context.Context, day clock.Date, keep storage.TS) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.solar[:0]
	for _, row := range s.solar {
		if row.ReadingDate.Equal(day) && row.TS != keep {
			continue
		}
		kept = append(kept, row)
	}
	s.solar = kept
	return nil
}

func (s *Store) DeleteIntraDayDevice(ctx context.Context, device string, day clock.Date, keep storage.TS) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.device[:0]
	for _, row := range s.device {
		if row.Device == device && row.ReadingDate.Equal(day) && row.TS != keep {
			continue
		}
		kept = append(kept, row)
	}
	s.device = kept
	return nil
}

// Close is a no-op for memory storage.
func (s *Store) Close() error { return nil }

func sortDeviceRows(rows []storage.DeviceReading) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].ReadingDate.Equal(rows[j].ReadingDate) {
			return rows[i].ReadingDate.Before(rows[j].ReadingDate)
		}
		return rows[i].TS.Less(rows[j].TS)
	})
}
