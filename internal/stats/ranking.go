// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"math"
	"sort"

	"github.com/jmfield/rewind/internal/models"
)

// Top-list sizes.
const (
	topContentCount = 10 // movies and shows
	topGenresMin    = 5
	topGenresMax    = 8
	topMusicCompact = 5
	topMusicFull    = 10
)

// movieOnlyRatio is the sentinel movie-to-TV ratio for viewers with movie
// minutes but no episode minutes at all.
const movieOnlyRatio = 10.0

// contentGroup accumulates minutes and plays for one content identity
// (a movie id or a show identity).
type contentGroup struct {
	key      string
	name     string
	seriesID string
	minutes  float64
	count    int
	episodes map[string]struct{} // distinct episode ids, shows only
}

// sortGroups orders groups by minutes descending. Ties break by name then key
// so that rankings are deterministic regardless of map iteration order.
func sortGroups(groups map[string]*contentGroup) []*contentGroup {
	out := make([]*contentGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].minutes != out[j].minutes {
			return out[i].minutes > out[j].minutes
		}
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].key < out[j].key
	})
	return out
}

// topMovies builds the ranked movie list. Minutes round only here, at output.
func topMovies(groups map[string]*contentGroup, imageURL func(id string) string) []models.TopItem {
	ranked := sortGroups(groups)
	if len(ranked) > topContentCount {
		ranked = ranked[:topContentCount]
	}
	items := make([]models.TopItem, 0, len(ranked))
	for _, g := range ranked {
		items = append(items, models.TopItem{
			ID:       g.key,
			Name:     g.name,
			ImageURL: imageURL(g.key),
			Minutes:  int(math.Round(g.minutes)),
			Count:    g.count,
		})
	}
	return items
}

// topShows builds the ranked show list. The artwork reference prefers the
// resolved series id; when the group was keyed by a name slug, a best-effort
// scan of the fetched catalog finds an episode carrying the series linkage.
func topShows(groups map[string]*contentGroup, catalog map[string]models.CatalogItem, imageURL func(id string) string) []models.TopItem {
	ranked := sortGroups(groups)
	if len(ranked) > topContentCount {
		ranked = ranked[:topContentCount]
	}
	items := make([]models.TopItem, 0, len(ranked))
	for _, g := range ranked {
		artworkID := g.seriesID
		if artworkID == "" {
			artworkID = findSeriesIDByName(catalog, g.name, g.key)
		}
		if artworkID == "" {
			artworkID = g.key
		}
		items = append(items, models.TopItem{
			ID:       g.key,
			Name:     g.name,
			ImageURL: imageURL(artworkID),
			Minutes:  int(math.Round(g.minutes)),
			Count:    g.count,
			Episodes: len(g.episodes),
			SeriesID: artworkID,
		})
	}
	return items
}

// findSeriesIDByName scans the catalog for an item whose series matches the
// show's name or key. Item ids are visited in sorted order so the lookup is
// deterministic when several episodes of the show were fetched.
func findSeriesIDByName(catalog map[string]models.CatalogItem, name, key string) string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		item := catalog[id]
		if item.SeriesID == "" {
			continue
		}
		if item.SeriesName == name || item.SeriesID == key {
			return item.SeriesID
		}
	}
	return ""
}

// topGenres ranks genres by minutes and selects max(5, min(8, n)) entries.
// Percentages are shares of total genre minutes with a floor divisor of 1,
// so an empty distribution never divides by zero.
func topGenres(genreMinutes map[string]float64) []models.GenreStat {
	names := make([]string, 0, len(genreMinutes))
	var total float64
	for name, mins := range genreMinutes {
		names = append(names, name)
		total += mins
	}
	sort.SliceStable(names, func(i, j int) bool {
		if genreMinutes[names[i]] != genreMinutes[names[j]] {
			return genreMinutes[names[i]] > genreMinutes[names[j]]
		}
		return names[i] < names[j]
	})

	limit := max(topGenresMin, min(topGenresMax, len(names)))
	if limit > len(names) {
		limit = len(names)
	}
	divisor := math.Max(total, 1)

	out := make([]models.GenreStat, 0, limit)
	for _, name := range names[:limit] {
		out = append(out, models.GenreStat{
			Name:       name,
			Minutes:    int(math.Round(genreMinutes[name])),
			Percentage: int(math.Round(genreMinutes[name] / divisor * 100)),
		})
	}
	return out
}

// diversityIndex is a Herfindahl-style concentration inverse over a minute
// distribution: 1 - sum(share^2). Zero for a fully concentrated distribution,
// approaching 1 for an evenly spread one. Rounded to 4 decimals.
func diversityIndex(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return 0
	}
	var concentration float64
	for _, v := range values {
		share := v / total
		concentration += share * share
	}
	return math.Round((1-concentration)*10000) / 10000
}

// movieToTVRatio relates movie minutes to episode minutes. A movie-only
// viewer gets the fixed sentinel 10; no video at all yields 0.
func movieToTVRatio(movieMinutes, episodeMinutes float64) float64 {
	switch {
	case movieMinutes == 0 && episodeMinutes == 0:
		return 0
	case episodeMinutes == 0:
		return movieOnlyRatio
	default:
		return math.Round(movieMinutes/math.Max(episodeMinutes, 1)*100) / 100
	}
}
