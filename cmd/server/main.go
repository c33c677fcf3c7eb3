package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/homewatt/homewatt/pkg/clock"
	"github.com/homewatt/homewatt/pkg/compaction"
	"github.com/homewatt/homewatt/pkg/config"
	"github.com/homewatt/homewatt/pkg/ingest"
	"github.com/homewatt/homewatt/pkg/query"
	"github.com/homewatt/homewatt/pkg/server"
	"github.com/homewatt/homewatt/pkg/storage/sqlite"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	clk, err := clock.NewSystem(config.Timezone())
	if err != nil {
		log.Fatal().Err(err).Str("tz", config.Timezone()).Msg("load timezone")
	}

	store, err := sqlite.Open(config.DBPath())
	if err != nil {
		log.Fatal().Err(err).Str("path", config.DBPath()).Msg("open database")
	}
	defer store.Close()
	log.Info().Str("path", config.DBPath()).Msg("database ready")

	hub := ingest.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	compactor := compaction.New(store, config.AvgByCount())
	stopScheduler := make(chan struct{})
	wg.Add(1)
	go server.RunMidnightCompaction(clk, store, compactor, stopScheduler, &wg)

	router := server.NewRouter(
		ingest.NewHandler(store, hub),
		query.NewHandler(store, clk),
		compaction.NewHandler(compactor),
		hub,
	)

	srv := &http.Server{
		Addr:         config.Addr(),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", config.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	cancel()
	close(stopScheduler)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("background tasks stopped")
	case <-time.After(5 * time.Second):
		log.Warn().Msg("background tasks did not stop in time")
	}

	log.Info().Msg("server exited")
}
