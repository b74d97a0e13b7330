// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-obvious/server"
	"github.com/rs/zerolog/log"

	"github.com/nauhpc/doppler/app/build"
	"github.com/nauhpc/doppler/app/config"
	"github.com/nauhpc/doppler/app/domain"
	"github.com/nauhpc/doppler/app/handlers"
	"github.com/nauhpc/doppler/app/logging"
	"github.com/nauhpc/doppler/app/storage/jobstats"
	"github.com/nauhpc/doppler/app/types"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", configFile, "Path to the configuration file")
	flag.Parse()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("configuration file does not exist")
	}

	settings, err := config.NewSettings(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	logger, err := logging.NewLogger(
		logging.WithLevel(settings.Logging.Level),
		// Connection strings carry the database password; never log them.
		logging.WithSink(logging.NewFieldFilterWriter(os.Stdout, []string{"dsn", "password"})),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create the logger")
	}
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	store, err := openStore(settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open the accounting database")
	}

	clock := &types.Clock{}
	cache := domain.NewSnapshotCache(store, clock)
	if err := cache.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial snapshot load failed")
	}
	go cache.RefreshPeriodically(ctx, settings.Refresh.Interval)

	engine := domain.NewEngine(cache, clock, settings.Scores.IdealScore)

	// Handle shutdown events gracefully
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-signalChan
		logger.Info().Str("signal", sig.String()).Msg("Received signal, service stopping")
		cancel()
		os.Exit(0)
	}()

	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := log.Ctx(r.Context()).With().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Str("remote_addr", r.RemoteAddr).
				Logger()

			requestLogger.Trace().Msg("received request")

			next.ServeHTTP(w, r.WithContext(requestLogger.WithContext(r.Context())))
		})
	}

	// Expose the service
	logger.Info().Str("cluster", settings.ClusterName).Msg("Starting service")
	server.New(
		&server.ServerVersion{Revision: build.Rev, Tag: build.Tag, Time: build.Time},
		[]server.Middleware{
			loggerMiddleware,
			handlers.PromHTTPMiddleware,
		},
		handlers.NewScoresAPI("/v1", settings.ClusterName, engine),
		handlers.NewPromMetricsAPI("/metrics"),
		handlers.NewProfilingAPI("/debug/pprof"),
	).Run(ctx)
	logger.Info().Msg("Service stopping")
}

func openStore(settings *config.Settings) (types.RecordStore, error) {
	if settings.Database.Dialect == "sqlite" {
		store, err := jobstats.NewSQLite(settings.Database.DSN())
		if err != nil {
			return nil, err
		}
		// SQLite sites own their schema, unlike MySQL where the ingest
		// cron created it long ago.
		if err := store.Migrate(); err != nil {
			return nil, err
		}
		return store, nil
	}
	return jobstats.NewMySQL(settings.Database.DSN())
}
