// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// Package report orchestrates report generation: it fetches playback history
// and catalog metadata from the media server, runs the pure aggregation in
// internal/stats, enriches the result with TMDB artwork, and caches the
// assembled reports. Concurrent identical requests collapse into a single
// generation via singleflight.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jmfield/rewind/internal/cache"
	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/emby"
	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/metrics"
	"github.com/jmfield/rewind/internal/models"
	"github.com/jmfield/rewind/internal/stats"
	"github.com/jmfield/rewind/internal/tmdb"
)

// enrichTopN is how many entries of each top list get TMDB artwork lookups.
const enrichTopN = 5

// MediaServer is the upstream surface report generation needs. Satisfied by
// both emby.Client and emby.CircuitBreakerClient.
type MediaServer interface {
	GetUsers(ctx context.Context) ([]emby.User, error)
	GetUserPlaybackActivity(ctx context.Context, userID string, days int) ([]models.PlaybackEvent, error)
	GetItems(ctx context.Context, userID string, ids []string) (map[string]models.CatalogItem, error)
	ImageURL(itemID string) string
}

// PosterFinder resolves artwork by content name. Satisfied by tmdb.Client.
// Lookups are best-effort and return empty string on miss.
type PosterFinder interface {
	FindPosterURL(ctx context.Context, name, kind string) string
}

// Generator builds and caches wrapped reports, music reports and the
// server-wide rollup.
type Generator struct {
	server  MediaServer
	posters PosterFinder // nil when TMDB is disabled
	fetch   config.FetchConfig

	reports    *cache.Cache
	rollups    *cache.Cache
	posterURLs *cache.Cache

	group singleflight.Group
	now   func() time.Time
}

// NewGenerator creates a report generator. posters may be nil, in which case
// reports carry only server-native artwork.
func NewGenerator(server MediaServer, posters PosterFinder, cfg *config.Config) *Generator {
	return &Generator{
		server:     server,
		posters:    posters,
		fetch:      cfg.Fetch,
		reports:    cache.New(cfg.Cache.ReportTTL),
		rollups:    cache.New(cfg.Cache.RollupTTL),
		posterURLs: cache.New(cfg.Cache.PosterTTL),
		now:        time.Now,
	}
}

// UserWrapped builds the wrapped report for one user and range, serving from
// cache when possible.
func (g *Generator) UserWrapped(ctx context.Context, userID, username string, rng stats.TimeRange) (*models.UserStats, error) {
	key := "wrapped:" + userID + ":" + rng.String()

	if cached, ok := g.reports.Get(key); ok {
		metrics.RecordCacheHit("report")
		return cached.(*models.UserStats), nil
	}
	metrics.RecordCacheMiss("report")

	result, err, _ := g.group.Do(key, func() (interface{}, error) {
		start := g.now()

		events, catalog, err := g.fetchUserData(ctx, userID, rng)
		if err != nil {
			metrics.RecordReportGeneration("wrapped", time.Since(start), 0, err)
			return nil, err
		}

		report := stats.AggregateUserStats(events, catalog, rng, stats.Options{
			UserID:   userID,
			Username: username,
			Now:      g.now(),
			ImageURL: g.server.ImageURL,
		})
		g.enrichTopItems(ctx, report.TopMovies, tmdb.KindMovie)
		g.enrichTopItems(ctx, report.TopShows, tmdb.KindTV)

		g.reports.Set(key, report)
		metrics.RecordReportGeneration("wrapped", time.Since(start), len(events), nil)
		logging.Info().Str("user_id", userID).Str("range", rng.String()).Int("events", len(events)).Msg("Wrapped report generated")

		return report, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.UserStats), nil
}

// UserMusic builds the standalone full music report for one user and range.
func (g *Generator) UserMusic(ctx context.Context, userID string, rng stats.TimeRange) (*models.FullMusicStats, error) {
	key := "music:" + userID + ":" + rng.String()

	if cached, ok := g.reports.Get(key); ok {
		metrics.RecordCacheHit("report")
		return cached.(*models.FullMusicStats), nil
	}
	metrics.RecordCacheMiss("report")

	result, err, _ := g.group.Do(key, func() (interface{}, error) {
		start := g.now()

		events, catalog, err := g.fetchUserData(ctx, userID, rng)
		if err != nil {
			metrics.RecordReportGeneration("music", time.Since(start), 0, err)
			return nil, err
		}

		report := stats.BuildFullMusicStats(events, catalog, rng, userID, g.now())

		g.reports.Set(key, report)
		metrics.RecordReportGeneration("music", time.Since(start), len(events), nil)

		return report, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.FullMusicStats), nil
}

// fetchUserData retrieves the raw playback history for the range lookback
// window plus the catalog metadata for the items it references.
func (g *Generator) fetchUserData(ctx context.Context, userID string, rng stats.TimeRange) ([]models.PlaybackEvent, map[string]models.CatalogItem, error) {
	days := rng.LookbackDays(g.now())
	events, err := g.server.GetUserPlaybackActivity(ctx, userID, days)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch playback activity: %w", err)
	}

	catalog, err := g.fetchCatalog(ctx, userID, events, rng)
	if err != nil {
		return nil, nil, err
	}

	return events, catalog, nil
}

// fetchCatalog batch-fetches catalog items for the unique item ids referenced
// by in-range events, in first-seen order, capped at fetch.max_item_fetch.
// A failed batch is logged and skipped: its items then read as inaccessible,
// which degrades the report rather than failing it.
func (g *Generator) fetchCatalog(ctx context.Context, userID string, events []models.PlaybackEvent, rng stats.TimeRange) (map[string]models.CatalogItem, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, ev := range events {
		if !rng.Matches(ev.Date) {
			continue
		}
		key := ev.ItemKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
		if len(ids) >= g.fetch.MaxItemFetch {
			break
		}
	}

	catalog := make(map[string]models.CatalogItem, len(ids))
	for start := 0; start < len(ids); start += g.fetch.ItemBatchSize {
		end := start + g.fetch.ItemBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := g.server.GetItems(ctx, userID, ids[start:end])
		if err != nil {
			logging.Warn().Err(err).Str("user_id", userID).Int("batch_start", start).Msg("Catalog batch fetch failed, items treated as inaccessible")
			continue
		}
		for id, item := range batch {
			catalog[id] = item
		}
	}

	return catalog, nil
}

// enrichTopItems fills TMDBImageURL for the leading entries of a top list.
// Lookups go through the poster cache; an empty cached value records a miss
// so unknown titles are not re-queried on every report.
func (g *Generator) enrichTopItems(ctx context.Context, items []models.TopItem, kind string) {
	if g.posters == nil {
		return
	}

	limit := len(items)
	if limit > enrichTopN {
		limit = enrichTopN
	}

	for i := 0; i < limit; i++ {
		items[i].TMDBImageURL = g.posterFor(ctx, items[i].Name, kind)
	}
}

// posterFor resolves one poster URL through the poster cache.
func (g *Generator) posterFor(ctx context.Context, name, kind string) string {
	key := kind + ":" + name
	if cached, ok := g.posterURLs.Get(key); ok {
		metrics.RecordCacheHit("poster")
		return cached.(string)
	}
	metrics.RecordCacheMiss("poster")

	posterURL := g.posters.FindPosterURL(ctx, name, kind)
	g.posterURLs.Set(key, posterURL)
	return posterURL
}

// CacheStats exposes hit/miss counters of the report cache for health output.
func (g *Generator) CacheStats() cache.Stats {
	return g.reports.GetStats()
}
