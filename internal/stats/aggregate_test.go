// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/jmfield/rewind/internal/models"
)

func testOptions() Options {
	return Options{
		UserID:   "u1",
		Username: "alice",
		Now:      time.Date(2026, time.January, 2, 12, 0, 0, 0, time.UTC),
	}
}

// wrappedFixture is a small but complete year: one three-episode binge of
// Alpha, two movie plays, and some music.
func wrappedFixture() ([]models.PlaybackEvent, map[string]models.CatalogItem) {
	events := []models.PlaybackEvent{
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "20:00:00", "1800"),
		episodeEvent(102, "Alpha - s01e02 - Second", "2025-03-01", "20:30:00", "1800"),
		episodeEvent(103, "Alpha - s01e03 - Third", "2025-03-01", "21:00:00", "1800"),
		movieEvent(201, "Big Film", "2025-05-10", "21:00:00", "7200"),
		movieEvent(201, "Big Film", "2025-08-02", "20:00:00", "7200"),
		audioEvent(301, "Pop Star - Hit Single", "2025-06-01", "09:00:00", "180"),
	}
	catalog := catalogOf(
		episodeItem("101", "Pilot", "s1", "Alpha", "Drama"),
		episodeItem("102", "Second", "s1", "Alpha", "Drama"),
		episodeItem("103", "Third", "s1", "Alpha", "Drama"),
		movieItem("201", "Big Film", "Action", "Drama"),
	)
	return events, catalog
}

func TestAggregateUserStatsEndToEnd(t *testing.T) {
	events, catalog := wrappedFixture()
	got := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, testOptions())

	checkStringEqual(t, "UserID", got.UserID, "u1")
	checkStringEqual(t, "Range", got.Range, "2025")
	checkStringEqual(t, "RangeLabel", got.RangeLabel, "2025 (year)")

	// 3x30 episode minutes plus 2x120 movie minutes; music is not video time.
	checkIntEqual(t, "TotalMinutes", got.TotalMinutes, 330)
	checkFloatEqual(t, "TotalDays", got.TotalDays, 0.23)
	// Two plays of one movie count as one movie watched.
	checkIntEqual(t, "MoviesWatched", got.MoviesWatched, 1)
	checkIntEqual(t, "EpisodesWatched", got.EpisodesWatched, 3)
	checkIntEqual(t, "UniqueMovies", got.UniqueMovies, 1)
	checkIntEqual(t, "UniqueShows", got.UniqueShows, 1)

	checkIntEqual(t, "top movies", len(got.TopMovies), 1)
	checkStringEqual(t, "top movie", got.TopMovies[0].Name, "Big Film")
	checkIntEqual(t, "top movie minutes", got.TopMovies[0].Minutes, 240)
	checkIntEqual(t, "top movie count", got.TopMovies[0].Count, 2)

	checkIntEqual(t, "top shows", len(got.TopShows), 1)
	checkStringEqual(t, "top show", got.TopShows[0].Name, "Alpha")
	checkStringEqual(t, "top show series", got.TopShows[0].SeriesID, "s1")
	checkIntEqual(t, "top show episodes", got.TopShows[0].Episodes, 3)

	// Drama gets all 330 minutes, Action only the movie's 240.
	checkIntEqual(t, "TotalGenres", got.TotalGenres, 2)
	checkStringEqual(t, "PrimaryGenre", got.PrimaryGenre, "Drama")
	checkStringEqual(t, "SecondaryGenre", got.SecondaryGenre, "Action")

	checkIntEqual(t, "BingeCount", got.BingeCount, 1)
	if got.LongestBinge == nil {
		t.Fatal("expected a longest binge")
	}
	checkStringEqual(t, "binge show", got.LongestBinge.ShowName, "Alpha")
	checkIntEqual(t, "binge episodes", got.LongestBinge.EpisodeCount, 3)
	checkIntEqual(t, "binge minutes", got.LongestBinge.TotalMinutes, 90)

	if got.FirstWatch == nil || got.LastWatch == nil {
		t.Fatal("expected watch markers")
	}
	// Markers carry the raw display name from the playback row.
	checkStringEqual(t, "first watch", got.FirstWatch.Name, "Alpha - s01e01 - Pilot")
	checkStringEqual(t, "first watch date", got.FirstWatch.Date, "2025-03-01")
	checkStringEqual(t, "last watch", got.LastWatch.Name, "Big Film")
	checkStringEqual(t, "last watch date", got.LastWatch.Date, "2025-08-02")

	// movie minutes 240 vs episode minutes 90.
	checkFloatEqual(t, "MovieToTVRatio", got.MovieToTVRatio, 2.67)
	if got.GenreDiversity <= 0 || got.GenreDiversity >= 1 {
		t.Errorf("GenreDiversity out of range: %v", got.GenreDiversity)
	}
	if got.FunFact == "" {
		t.Error("expected a fun fact for nonzero minutes")
	}
	if got.Personality.Label == "" {
		t.Error("expected a personality label")
	}
	// Every fixture play lands on a Saturday.
	checkStringEqual(t, "DayPersonality", got.DayPersonality.Label, "Saturday Binger")

	if got.Music == nil {
		t.Fatal("expected a music block")
	}
	checkIntEqual(t, "music minutes", got.Music.TotalMinutes, 3)
	checkStringEqual(t, "music artist", got.Music.TopArtists[0].Name, "Pop Star")
}

func TestAggregateUserStatsDeterministic(t *testing.T) {
	events, catalog := wrappedFixture()
	first := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, testOptions())
	for i := 0; i < 10; i++ {
		again := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, testOptions())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different report", i)
		}
	}
}

func TestAggregateUserStatsEmpty(t *testing.T) {
	got := AggregateUserStats(nil, nil, TimeRange{Year: 2025}, testOptions())

	checkIntEqual(t, "TotalMinutes", got.TotalMinutes, 0)
	checkIntEqual(t, "MoviesWatched", got.MoviesWatched, 0)
	checkIntEqual(t, "BingeCount", got.BingeCount, 0)
	checkFloatEqual(t, "MovieToTVRatio", got.MovieToTVRatio, 0)
	checkFloatEqual(t, "GenreDiversity", got.GenreDiversity, 0)
	checkStringEqual(t, "FunFact", got.FunFact, "")
	if got.LongestBinge != nil {
		t.Error("expected no longest binge")
	}
	if got.FirstWatch != nil || got.LastWatch != nil {
		t.Error("expected no watch markers")
	}
	if got.Music != nil {
		t.Error("expected no music block")
	}
	if len(got.TopMovies) != 0 || len(got.TopShows) != 0 || len(got.TopGenres) != 0 {
		t.Error("expected empty top lists")
	}
	checkStringEqual(t, "Personality", got.Personality.Label, "The Phantom")
	checkStringEqual(t, "DayPersonality", got.DayPersonality.Label, "Sunday Scroller")
}

func TestAggregateUserStatsGenresSkipOtherVideoTypes(t *testing.T) {
	events := []models.PlaybackEvent{
		{Date: "2025-05-10", Time: "20:00:00", UserID: "u1", ItemID: 501, ItemName: "Home Clip", ItemType: "Video", Duration: "600"},
	}
	catalog := catalogOf(models.CatalogItem{ID: "501", Name: "Home Clip", Type: "Video", Genres: []string{"Sports"}})
	got := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, testOptions())

	// Generic video counts toward time but contributes no genres.
	checkIntEqual(t, "TotalMinutes", got.TotalMinutes, 10)
	checkIntEqual(t, "TotalGenres", got.TotalGenres, 0)
	checkIntEqual(t, "MoviesWatched", got.MoviesWatched, 0)
	if len(got.TopGenres) != 0 {
		t.Errorf("expected no top genres, got %+v", got.TopGenres)
	}
}

func TestAggregateUserStatsRangeFiltering(t *testing.T) {
	events, catalog := wrappedFixture()
	got := AggregateUserStats(events, catalog, TimeRange{Year: 2025, Month: 3}, testOptions())

	// Only the March binge survives the month filter.
	checkIntEqual(t, "TotalMinutes", got.TotalMinutes, 90)
	checkIntEqual(t, "MoviesWatched", got.MoviesWatched, 0)
	checkIntEqual(t, "EpisodesWatched", got.EpisodesWatched, 3)
	checkIntEqual(t, "BingeCount", got.BingeCount, 1)
	if got.Music != nil {
		t.Error("June music should not appear in a March report")
	}
	checkStringEqual(t, "Range", got.Range, "2025-03")
	checkIntEqual(t, "Month", got.Month, 3)
}

func TestAggregateUserStatsInaccessibleItemsExcluded(t *testing.T) {
	events, catalog := wrappedFixture()
	// Remove the movie from the catalog: its plays become invisible.
	delete(catalog, "201")
	got := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, testOptions())

	checkIntEqual(t, "TotalMinutes", got.TotalMinutes, 90)
	checkIntEqual(t, "MoviesWatched", got.MoviesWatched, 0)
	checkIntEqual(t, "UniqueMovies", got.UniqueMovies, 0)
	checkIntEqual(t, "EpisodesWatched", got.EpisodesWatched, 3)
	// The heatmap only carries accessible minutes.
	var hourSum int
	for _, v := range got.Heatmap.Hours {
		hourSum += v
	}
	checkIntEqual(t, "heatmap sum", hourSum, 90)
	// The last watch is now the final episode, not the hidden movie.
	checkStringEqual(t, "last watch", got.LastWatch.Name, "Alpha - s01e03 - Third")
	// Movies-only sentinel does not fire the other way around.
	checkFloatEqual(t, "MovieToTVRatio", got.MovieToTVRatio, 0)
}

func TestAggregateUserStatsFunFactStablePerUser(t *testing.T) {
	events, catalog := wrappedFixture()
	opts := testOptions()
	first := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, opts)
	again := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, opts)
	checkStringEqual(t, "FunFact", again.FunFact, first.FunFact)

	// An explicit seed overrides the derived one.
	opts.Seed = 1
	seeded := AggregateUserStats(events, catalog, TimeRange{Year: 2025}, opts)
	pool := funFactPool(seeded.TotalMinutes)
	checkStringEqual(t, "seeded fact", seeded.FunFact, pool[1%len(pool)])
}
