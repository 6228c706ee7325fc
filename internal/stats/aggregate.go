// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/jmfield/rewind/internal/models"
)

// Options parameterizes report assembly. Now is injected so reports are
// reproducible; a zero Seed derives one from the user id and range, which
// keeps the fun fact stable for a given user and period.
type Options struct {
	UserID   string
	Username string
	Now      time.Time
	Seed     uint64
	// ImageURL maps a content id to browser-loadable artwork. Nil disables
	// artwork resolution.
	ImageURL func(itemID string) string
}

// AggregateUserStats derives the complete wrapped report from raw playback
// events and the permission-scoped catalog. Events outside the range are
// ignored. Video events whose item id is absent from the catalog are treated
// as inaccessible and excluded from every video aggregate; audio events are
// not gated, since music metadata only refines attribution.
func AggregateUserStats(events []models.PlaybackEvent, catalog map[string]models.CatalogItem, rng TimeRange, opts Options) *models.UserStats {
	imageURL := opts.ImageURL
	if imageURL == nil {
		imageURL = func(string) string { return "" }
	}

	var video, audio []models.PlaybackEvent
	for _, ev := range events {
		if !rng.Matches(ev.Date) {
			continue
		}
		switch {
		case ev.IsAudio():
			audio = append(audio, ev)
		case ev.IsVideo():
			if _, ok := catalog[ev.ItemKey()]; ok {
				video = append(video, ev)
			}
		}
	}

	movieGroups := make(map[string]*contentGroup)
	showGroups := make(map[string]*contentGroup)
	genreMinutes := make(map[string]float64)
	var episodes []models.PlaybackEvent
	var hm heatmap
	var totalSeconds, movieSeconds, episodeSeconds int
	var episodePlays int

	for _, ev := range video {
		item := catalog[ev.ItemKey()]
		totalSeconds += ev.DurationSeconds()
		hm.add(ev)

		// Genres accumulate for movies and episodes only; other video
		// types count toward time but not taste.
		switch {
		case ev.IsMovie():
			movieSeconds += ev.DurationSeconds()
			for _, genre := range item.Genres {
				genreMinutes[genre] += ev.Minutes()
			}
			g := movieGroups[ev.ItemKey()]
			if g == nil {
				name := item.Name
				if name == "" {
					name = ev.ItemName
				}
				g = &contentGroup{key: ev.ItemKey(), name: name}
				movieGroups[ev.ItemKey()] = g
			}
			g.minutes += ev.Minutes()
			g.count++
		case ev.IsEpisode():
			episodePlays++
			episodeSeconds += ev.DurationSeconds()
			for _, genre := range item.Genres {
				genreMinutes[genre] += ev.Minutes()
			}
			episodes = append(episodes, ev)
			id := resolveShowIdentity(ev, &item)
			g := showGroups[id.Key]
			if g == nil {
				g = &contentGroup{key: id.Key, name: id.Name, seriesID: id.SeriesID, episodes: make(map[string]struct{})}
				showGroups[id.Key] = g
			}
			if g.seriesID == "" && id.SeriesID != "" {
				g.seriesID = id.SeriesID
			}
			g.minutes += ev.Minutes()
			g.count++
			g.episodes[ev.ItemKey()] = struct{}{}
		}
	}

	binges := detectBinges(episodes, catalog)
	peakHour, peakDay, peakMonth := hm.peaks()
	nightOwl, earlyBird, weekendWarrior := hm.personalityFlags()
	totalMinutes := int(math.Round(float64(totalSeconds) / 60))

	seed := opts.Seed
	if seed == 0 {
		seed = deriveSeed(opts.UserID, rng)
	}

	stats := &models.UserStats{
		UserID:      opts.UserID,
		Username:    opts.Username,
		Range:       rng.String(),
		RangeLabel:  rng.Label(),
		Year:        rng.Year,
		Month:       rng.Month,
		GeneratedAt: opts.Now.UTC(),

		TotalMinutes: totalMinutes,
		TotalDays:    math.Round(float64(totalMinutes)/1440*100) / 100,

		MoviesWatched:   len(movieGroups),
		EpisodesWatched: episodePlays,
		UniqueShows:     len(showGroups),
		UniqueMovies:    len(movieGroups),

		TopMovies:   topMovies(movieGroups, imageURL),
		TopShows:    topShows(showGroups, catalog, imageURL),
		TopGenres:   topGenres(genreMinutes),
		TotalGenres: len(genreMinutes),

		Heatmap:   hm.rounded(),
		PeakHour:  peakHour,
		PeakDay:   peakDay,
		PeakMonth: peakMonth,

		IsNightOwl:       nightOwl,
		IsEarlyBird:      earlyBird,
		IsWeekendWarrior: weekendWarrior,

		LongestBinge: longestBinge(binges),
		BingeCount:   len(binges),

		FirstWatch: watchMarker(video, false),
		LastWatch:  watchMarker(video, true),

		GenreDiversity: genreDiversity(genreMinutes),
		MovieToTVRatio: movieToTVRatio(float64(movieSeconds)/60, float64(episodeSeconds)/60),

		Music: buildMusicStats(audio, catalog),
	}

	if len(stats.TopGenres) > 0 {
		stats.PrimaryGenre = stats.TopGenres[0].Name
	}
	if len(stats.TopGenres) > 1 {
		stats.SecondaryGenre = stats.TopGenres[1].Name
	}
	if totalMinutes > 0 {
		stats.FunFact = funFact(totalMinutes, seed)
	}
	stats.Personality = classifyPersonality(personalityTraits{
		nightOwl:       nightOwl,
		earlyBird:      earlyBird,
		weekendWarrior: weekendWarrior,
		peakHour:       peakHour,
		bingeCount:     len(binges),
		totalMinutes:   totalMinutes,
	})
	stats.DayPersonality = DayPersonality(peakDay)
	return stats
}

// genreDiversity computes the diversity index over the full genre
// distribution, not just the ranked selection. Keys are visited in sorted
// order so float accumulation is bit-stable.
func genreDiversity(genreMinutes map[string]float64) float64 {
	names := make([]string, 0, len(genreMinutes))
	for name := range genreMinutes {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]float64, 0, len(names))
	for _, name := range names {
		values = append(values, genreMinutes[name])
	}
	return diversityIndex(values)
}

// watchMarker finds the earliest or latest accessible video event with a
// parseable timestamp. The stable sort keeps input order on exact ties. The
// marker carries the name as the playback row reported it.
func watchMarker(video []models.PlaybackEvent, last bool) *models.WatchMarker {
	timed := make([]models.PlaybackEvent, 0, len(video))
	for _, ev := range video {
		if _, ok := ev.Timestamp(); ok {
			timed = append(timed, ev)
		}
	}
	if len(timed) == 0 {
		return nil
	}
	sort.SliceStable(timed, func(i, j int) bool {
		ti, _ := timed[i].Timestamp()
		tj, _ := timed[j].Timestamp()
		return ti.Before(tj)
	})
	ev := timed[0]
	if last {
		ev = timed[len(timed)-1]
	}
	return &models.WatchMarker{
		ID:   ev.ItemKey(),
		Name: ev.ItemName,
		Date: ev.Date,
		Type: ev.ItemType,
	}
}

// deriveSeed hashes the user id and canonical range so every regeneration of
// the same report picks the same fun fact.
func deriveSeed(userID string, rng TimeRange) uint64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{'|'})
	h.Write([]byte(rng.String()))
	return h.Sum64()
}
