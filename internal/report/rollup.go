// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/metrics"
	"github.com/jmfield/rewind/internal/models"
	"github.com/jmfield/rewind/internal/stats"
	"github.com/jmfield/rewind/internal/tmdb"
)

// rollupLookbackDays is the trailing window of the server-wide rollup.
const rollupLookbackDays = 365

// serverStatsKey keys the single rollup entry in the rollup cache.
const serverStatsKey = "server:stats"

// ServerStats builds the anonymous server-wide rollup across all users.
// Per-user history is fetched in parallel, bounded by fetch.rollup_concurrency;
// a user whose fetch fails contributes zero activity instead of failing the
// rollup. Accumulation happens sequentially in server user order, so the
// result is stable for a given set of fetch outcomes.
func (g *Generator) ServerStats(ctx context.Context) (*models.ServerStats, error) {
	if cached, ok := g.rollups.Get(serverStatsKey); ok {
		metrics.RecordCacheHit("rollup")
		return cached.(*models.ServerStats), nil
	}
	metrics.RecordCacheMiss("rollup")

	result, err, _ := g.group.Do(serverStatsKey, func() (interface{}, error) {
		start := g.now()

		users, err := g.server.GetUsers(ctx)
		if err != nil {
			metrics.RecordReportGeneration("server", time.Since(start), 0, err)
			return nil, fmt.Errorf("fetch users for rollup: %w", err)
		}

		perUser := make([][]models.PlaybackEvent, len(users))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.fetch.RollupConcurrency)
		for i := range users {
			eg.Go(func() error {
				events, err := g.server.GetUserPlaybackActivity(egCtx, users[i].ID, rollupLookbackDays)
				if err != nil {
					logging.Warn().Err(err).Str("user_id", users[i].ID).Msg("Rollup user fetch failed, counting zero activity")
					return nil
				}
				perUser[i] = events
				return nil
			})
		}
		_ = eg.Wait() // workers never return errors, failures degrade per user

		tally := stats.NewServerTally()
		totalEvents := 0
		for i := range users {
			tally.AddUser(perUser[i])
			totalEvents += len(perUser[i])
		}

		serverStats := tally.Build(g.now())
		g.enrichTopItems(ctx, serverStats.TopShows, tmdb.KindTV)
		g.enrichTopItems(ctx, serverStats.TopMovies, tmdb.KindMovie)

		g.rollups.Set(serverStatsKey, serverStats)
		metrics.RecordReportGeneration("server", time.Since(start), totalEvents, nil)
		logging.Info().Int("users", len(users)).Int("events", totalEvents).Msg("Server rollup generated")

		return serverStats, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.ServerStats), nil
}
