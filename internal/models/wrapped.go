// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// This file contains models for the per-user wrapped report - Spotify-style
// yearly (or monthly) playback statistics.
package models

import (
	"time"
)

// UserStats is the complete assembled wrapped report for one user and one
// time range. It is created once per request, never mutated after assembly,
// and safe to serialize and cache verbatim.
type UserStats struct {
	// Identification
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Range       string    `json:"range"`       // canonical form, e.g. "2025" or "2026-01"
	RangeLabel  string    `json:"range_label"` // display form, e.g. "2025 (year)"
	Year        int       `json:"year"`
	Month       int       `json:"month,omitempty"` // 1-12, zero for whole-year ranges
	GeneratedAt time.Time `json:"generated_at"`

	// Time totals
	TotalMinutes int     `json:"total_minutes"`
	TotalDays    float64 `json:"total_days"` // minutes/1440, 2 decimals

	// Content counts. MoviesWatched counts distinct movies, not plays;
	// EpisodesWatched counts episode plays.
	MoviesWatched   int `json:"movies_watched"`
	EpisodesWatched int `json:"episodes_watched"`
	UniqueShows     int `json:"unique_shows"`
	UniqueMovies    int `json:"unique_movies"`

	// Top content
	TopMovies   []TopItem   `json:"top_movies"`
	TopShows    []TopItem   `json:"top_shows"`
	TopGenres   []GenreStat `json:"top_genres"`
	TotalGenres int         `json:"total_genres"` // distinct genres explored

	// Temporal patterns
	Heatmap   HeatmapData `json:"heatmap"`
	PeakHour  int         `json:"peak_hour"`  // 0-23
	PeakDay   int         `json:"peak_day"`   // 0=Sunday
	PeakMonth int         `json:"peak_month"` // 0=January

	// Viewing personality
	IsNightOwl       bool        `json:"is_night_owl"`
	IsEarlyBird      bool        `json:"is_early_bird"`
	IsWeekendWarrior bool        `json:"is_weekend_warrior"`
	Personality      Personality `json:"personality"`
	DayPersonality   Personality `json:"day_personality"` // busiest-weekday label

	// Binges
	LongestBinge *BingeSession `json:"longest_binge"`
	BingeCount   int           `json:"binge_count"`

	// First and last accessible video playback in the range
	FirstWatch *WatchMarker `json:"first_watch"`
	LastWatch  *WatchMarker `json:"last_watch"`

	// Derived flavor metrics
	PrimaryGenre   string  `json:"primary_genre,omitempty"`
	SecondaryGenre string  `json:"secondary_genre,omitempty"`
	GenreDiversity float64 `json:"genre_diversity"`   // 0 concentrated .. ~1 spread
	MovieToTVRatio float64 `json:"movie_to_tv_ratio"` // 10 = movie-only sentinel
	FunFact        string  `json:"fun_fact,omitempty"`

	// Music (present only when the range contains audio playback)
	Music *MusicStats `json:"music,omitempty"`
}

// TopItem is a ranked movie or show in a top list.
type TopItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url,omitempty"`
	TMDBImageURL string `json:"tmdb_image_url,omitempty"` // best-effort fallback artwork
	Minutes      int    `json:"minutes"`
	Count        int    `json:"count"`
	Episodes     int    `json:"episodes,omitempty"`  // shows only: distinct episodes
	SeriesID     string `json:"series_id,omitempty"` // shows only: artwork reference
}

// GenreStat is one entry of the genre distribution. Percentages are shares of
// total genre minutes; items with several genres contribute their full minute
// count to each, so genre minutes can exceed watch minutes.
type GenreStat struct {
	Name       string `json:"name"`
	Minutes    int    `json:"minutes"`
	Percentage int    `json:"percentage"`
}

// HeatmapData holds accumulated watch minutes per time bucket. Minutes are
// summed as floats during aggregation and rounded once at assembly.
type HeatmapData struct {
	Hours  [24]int `json:"hours"`  // hour of day
	Days   [7]int  `json:"days"`   // 0=Sunday
	Months [12]int `json:"months"` // 0=January
}

// BingeSession is a detected same-day binge: three or more distinct episodes
// of one show, averaging at least ten minutes each.
type BingeSession struct {
	ShowID       string `json:"show_id"`
	ShowName     string `json:"show_name"`
	EpisodeCount int    `json:"episode_count"`
	StartTime    string `json:"start_time"` // "2006-01-02T15:04:05", naive local
	EndTime      string `json:"end_time"`
	TotalMinutes int    `json:"total_minutes"`
}

// WatchMarker identifies the first or last watched item of a range.
type WatchMarker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Type string `json:"type"`
}

// Personality is the viewing-archetype label derived from the temporal flags.
type Personality struct {
	Label   string `json:"label"`
	Symbol  string `json:"symbol"`
	Tagline string `json:"tagline"`
}

// DayNames maps day-of-week indices (0=Sunday) to day names.
var DayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// MonthNames maps month indices (0=January) to month names.
var MonthNames = []string{"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}
