package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/compaction"
	"github.com/homewatt/homewatt/pkg/config"
	"github.com/homewatt/homewatt/pkg/storage"
)

// nextFiring returns the first compaction deadline after now: the coming
// local midnight plus a short grace period.
func nextFiring(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Add(config.MidnightGrace)
}

// CatchUpIfMissed compacts yesterday when the process slept through a
// midnight. A completed pass always leaves a solar summary row, so its
// absence means the day was never compacted.
func CatchUpIfMissed(ctx context.Context, clk clock.Clock, store storage.Store, compactor *compaction.Compactor) error {
	yesterday := clk.Today().AddDays(-1)
	done, err := store.HasSolarSummary(ctx, yesterday)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	log.Info().Str("date", yesterday.String()).Msg("catching up on missed end-of-day compaction")
	return compactor.Run(ctx, yesterday)
}

// RunMidnightCompaction compacts the just-finished day shortly after every
// local midnight, after first catching up on a missed pass. It returns when
// stop is closed.
func RunMidnightCompaction(clk clock.Clock, store storage.Store, compactor *compaction.Compactor, stop chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	if err := CatchUpIfMissed(context.Background(), clk, store, compactor); err != nil {
		log.Error().Err(err).Msg("startup compaction catch-up failed")
	}

	for {
		now := clk.Now()
		timer := time.NewTimer(nextFiring(now).Sub(now))

		select {
		case <-timer.C:
			yesterday := clk.Today().AddDays(-1)
			log.Info().Str("date", yesterday.String()).Msg("running end-of-day compaction")
			if err := compactor.Run(context.Background(), yesterday); err != nil {
				// Leave the day uncompacted; the startup catch-up or a
				// manual trigger can finish it later.
				log.Error().Err(err).Str("date", yesterday.String()).Msg("end-of-day compaction failed")
			}
		case <-stop:
			timer.Stop()
			log.Info().Msg("stopping compaction scheduler")
			return
		}
	}
}
