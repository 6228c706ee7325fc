// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"testing"

	"github.com/jmfield/rewind/internal/models"
)

// Shared assertion helpers and event builders for the stats tests.
// t.Helper() keeps failure locations on the calling line.

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

func checkFloatEqual(t *testing.T, fieldName string, got, want float64) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
}

func checkBool(t *testing.T, fieldName string, got, want bool) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
}

// episodeEvent builds an episode playback event using the plugin's
// "Show - s01e01 - Title" display convention.
func episodeEvent(id int64, name, date, clock, duration string) models.PlaybackEvent {
	return models.PlaybackEvent{
		Date:     date,
		Time:     clock,
		UserID:   "u1",
		ItemID:   id,
		ItemName: name,
		ItemType: "Episode",
		Duration: duration,
	}
}

func movieEvent(id int64, name, date, clock, duration string) models.PlaybackEvent {
	return models.PlaybackEvent{
		Date:     date,
		Time:     clock,
		UserID:   "u1",
		ItemID:   id,
		ItemName: name,
		ItemType: "Movie",
		Duration: duration,
	}
}

func audioEvent(id int64, name, date, clock, duration string) models.PlaybackEvent {
	return models.PlaybackEvent{
		Date:     date,
		Time:     clock,
		UserID:   "u1",
		ItemID:   id,
		ItemName: name,
		ItemType: "Audio",
		Duration: duration,
	}
}

// catalogOf builds a catalog map keyed by item id.
func catalogOf(items ...models.CatalogItem) map[string]models.CatalogItem {
	catalog := make(map[string]models.CatalogItem, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}
	return catalog
}

func episodeItem(id, name, seriesID, seriesName string, genres ...string) models.CatalogItem {
	return models.CatalogItem{
		ID:         id,
		Name:       name,
		Type:       "Episode",
		Genres:     genres,
		SeriesID:   seriesID,
		SeriesName: seriesName,
	}
}

func movieItem(id, name string, genres ...string) models.CatalogItem {
	return models.CatalogItem{ID: id, Name: name, Type: "Movie", Genres: genres}
}
