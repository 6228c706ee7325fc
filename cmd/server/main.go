// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// Rewind serves Spotify-Wrapped style year in review reports for an
// Emby-compatible media server with the Playback Reporting plugin.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmfield/rewind/internal/api"
	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/emby"
	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/report"
	"github.com/jmfield/rewind/internal/tmdb"
)

// shutdownTimeout bounds graceful shutdown before in-flight requests are cut.
const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("emby_url", cfg.Emby.URL).
		Bool("tmdb_enabled", cfg.TMDB.Enabled).
		Msg("Starting Rewind")

	embyClient := emby.NewCircuitBreakerClient(&cfg.Emby)

	// Connectivity check at startup is advisory: the server starts either
	// way and readiness reports the live state.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := embyClient.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Msg("Media server not reachable at startup")
	} else {
		logging.Info().Msg("Media server connection verified")
	}
	cancelPing()

	var posters report.PosterFinder
	if cfg.TMDB.Enabled {
		posters = tmdb.NewClient(&cfg.TMDB)
		logging.Info().Msg("TMDB poster enrichment enabled")
	}

	generator := report.NewGenerator(embyClient, posters, cfg)
	handler := api.NewHandler(embyClient, generator, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, cfg),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
