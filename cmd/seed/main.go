// Command seed fills a database with synthetic daily history, one summary
// row per device per day. Useful for exercising the dashboard's range
// views without waiting months for real data.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/storage"
	"github.com/homewatt/homewatt/pkg/storage/sqlite"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		dbPath  = flag.String("db", "./consumption.db", "database file to seed")
		from    = flag.String("from", "2024-08-01", "first date (inclusive)")
		to      = flag.String("to", "2025-06-20", "last date (inclusive)")
		devices = flag.String("devices", "ESP1,ESP2", "comma separated device names")
	)
	flag.Parse()

	start, err := clock.ParseDate(*from)
	if err != nil {
		log.Fatal().Err(err).Str("from", *from).Msg("parse start date")
	}
	end, err := clock.ParseDate(*to)
	if err != nil {
		log.Fatal().Err(err).Str("to", *to).Msg("parse end date")
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("open database")
	}
	defer store.Close()

	names := strings.Split(*devices, ",")
	ctx := context.Background()
	days := 0

	for day := start; !end.Before(day); day = day.AddDays(1) {
		marker := storage.MarkerFor(day)

		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			err := store.UpsertDeviceSummary(ctx, storage.DeviceReading{
				ReadingDate: day,
				Device:      name,
				Current:     randomInRange(90, 160),
				TS:          marker,
			})
			if err != nil {
				log.Fatal().Err(err).Str("date", day.String()).Str("device", name).Msg("seed device summary")
			}
		}

		err := store.UpsertSolarSummary(ctx, storage.SolarReading{
			ReadingDate: day,
			Power:       0,
			Energy:      randomInRange(8, 32),
			TS:          marker,
		})
		if err != nil {
			log.Fatal().Err(err).Str("date", day.String()).Msg("seed solar summary")
		}
		days++
	}

	log.Info().Int("days", days).Str("path", *dbPath).Msg("database populated")
}

// randomInRange mimics the dashboard fixtures: uniform values rounded to
// two decimals.
func randomInRange(min, max float64) float64 {
	v := rand.Float64()*(max-min) + min
	return float64(int(v*100)) / 100
}
