// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"math"
	"sort"
	"time"

	"github.com/jmfield/rewind/internal/models"
)

// musicTally accumulates per-artist and per-track listening totals.
type musicTally struct {
	artistMinutes map[string]float64
	trackMinutes  map[string]float64
	trackCounts   map[string]int
	trackArtist   map[string]string
	trackIDs      map[string]string
	totalSeconds  int
	plays         int
}

func newMusicTally() *musicTally {
	return &musicTally{
		artistMinutes: make(map[string]float64),
		trackMinutes:  make(map[string]float64),
		trackCounts:   make(map[string]int),
		trackArtist:   make(map[string]string),
		trackIDs:      make(map[string]string),
	}
}

// add records one audio playback event. Artist attribution prefers the
// catalog's artist linkage and falls back to the "Artist - Title" name
// convention of the Playback Reporting plugin.
func (t *musicTally) add(ev models.PlaybackEvent, item *models.CatalogItem) {
	artist, title := splitArtistTrack(ev.ItemName)
	if item != nil {
		if len(item.ArtistItems) > 0 && item.ArtistItems[0].Name != "" {
			artist = item.ArtistItems[0].Name
		}
		if item.Name != "" {
			title = item.Name
		}
	}
	mins := ev.Minutes()
	t.artistMinutes[artist] += mins
	trackKey := artist + showNameSeparator + title
	t.trackMinutes[trackKey] += mins
	t.trackCounts[trackKey]++
	t.trackArtist[trackKey] = artist
	if _, ok := t.trackIDs[trackKey]; !ok {
		t.trackIDs[trackKey] = ev.ItemKey()
	}
	t.totalSeconds += ev.DurationSeconds()
	t.plays++
}

// topArtists ranks artists by minutes descending, names ascending on ties.
func (t *musicTally) topArtists(limit int) []models.ArtistStat {
	names := sortedKeysByMinutes(t.artistMinutes)
	if len(names) > limit {
		names = names[:limit]
	}
	out := make([]models.ArtistStat, 0, len(names))
	for _, name := range names {
		out = append(out, models.ArtistStat{
			Name:    name,
			Minutes: int(math.Round(t.artistMinutes[name])),
		})
	}
	return out
}

// topTracksByCount ranks tracks by play count descending; ties break by
// minutes descending, then by the track key.
func (t *musicTally) topTracksByCount(limit int) []models.TrackStat {
	keys := make([]string, 0, len(t.trackCounts))
	for key := range t.trackCounts {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if t.trackCounts[keys[i]] != t.trackCounts[keys[j]] {
			return t.trackCounts[keys[i]] > t.trackCounts[keys[j]]
		}
		if t.trackMinutes[keys[i]] != t.trackMinutes[keys[j]] {
			return t.trackMinutes[keys[i]] > t.trackMinutes[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return t.trackStats(keys)
}

// topTracksByMinutes ranks tracks by minutes descending, key ascending on ties.
func (t *musicTally) topTracksByMinutes(limit int) []models.TrackStat {
	keys := sortedKeysByMinutes(t.trackMinutes)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return t.trackStats(keys)
}

func (t *musicTally) trackStats(keys []string) []models.TrackStat {
	out := make([]models.TrackStat, 0, len(keys))
	for _, key := range keys {
		artist := t.trackArtist[key]
		title := key
		if len(artist)+len(showNameSeparator) <= len(key) {
			title = key[len(artist)+len(showNameSeparator):]
		}
		out = append(out, models.TrackStat{
			ID:      t.trackIDs[key],
			Artist:  artist,
			Title:   title,
			Minutes: int(math.Round(t.trackMinutes[key])),
			Count:   t.trackCounts[key],
		})
	}
	return out
}

func sortedKeysByMinutes(minutes map[string]float64) []string {
	keys := make([]string, 0, len(minutes))
	for key := range minutes {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if minutes[keys[i]] != minutes[keys[j]] {
			return minutes[keys[i]] > minutes[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// buildMusicStats produces the compact music block embedded in the wrapped
// report, or nil when the period has no audio playback. The track list ranks
// by play count while the artist list ranks by minutes; repeat plays of a
// favorite track surface even when long album listens dominate the minutes.
func buildMusicStats(audio []models.PlaybackEvent, catalog map[string]models.CatalogItem) *models.MusicStats {
	if len(audio) == 0 {
		return nil
	}
	tally := newMusicTally()
	for _, ev := range audio {
		var item *models.CatalogItem
		if it, ok := catalog[ev.ItemKey()]; ok {
			item = &it
		}
		tally.add(ev, item)
	}
	return &models.MusicStats{
		TotalMinutes: int(math.Round(float64(tally.totalSeconds) / 60)),
		TrackCount:   tally.plays,
		TopArtists:   tally.topArtists(topMusicCompact),
		TopTracks:    tally.topTracksByCount(topMusicCompact),
	}
}

// BuildFullMusicStats produces the standalone music report for a period.
// Unlike the compact block, both lists rank by minutes listened.
func BuildFullMusicStats(events []models.PlaybackEvent, catalog map[string]models.CatalogItem, rng TimeRange, userID string, now time.Time) *models.FullMusicStats {
	tally := newMusicTally()
	for _, ev := range events {
		if !ev.IsAudio() || !rng.Matches(ev.Date) {
			continue
		}
		var item *models.CatalogItem
		if it, ok := catalog[ev.ItemKey()]; ok {
			item = &it
		}
		tally.add(ev, item)
	}

	artistValues := make([]float64, 0, len(tally.artistMinutes))
	for _, name := range sortedKeysByMinutes(tally.artistMinutes) {
		artistValues = append(artistValues, tally.artistMinutes[name])
	}

	return &models.FullMusicStats{
		UserID:          userID,
		Range:           rng.String(),
		GeneratedAt:     now.UTC(),
		TotalMinutes:    int(math.Round(float64(tally.totalSeconds) / 60)),
		TrackCount:      tally.plays,
		UniqueArtists:   len(tally.artistMinutes),
		UniqueTracks:    len(tally.trackMinutes),
		TopArtists:      tally.topArtists(topMusicFull),
		TopTracks:       tally.topTracksByMinutes(topMusicFull),
		ArtistDiversity: diversityIndex(artistValues),
	}
}
