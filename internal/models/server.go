// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package models

import "time"

// ServerStats is the server-wide rollup across all users over the trailing
// year. Per-user fetch failures degrade to zero activity for that user; the
// rollup itself never fails because one user's history is unavailable.
type ServerStats struct {
	TotalUsers     int       `json:"total_users"`
	TotalMinutes   int       `json:"total_minutes"`
	TotalMovies    int       `json:"total_movies"`   // movie play count, not unique titles
	TotalEpisodes  int       `json:"total_episodes"` // episode play count
	PeakMonth      int       `json:"peak_month"`     // 0=January
	MonthlyMinutes [12]int   `json:"monthly_minutes"`
	TopShows       []TopItem `json:"top_shows"`  // top 5 by minutes, TMDB artwork
	TopMovies      []TopItem `json:"top_movies"` // top 5 by minutes, TMDB artwork
	GeneratedAt    time.Time `json:"generated_at"`
}

// ValidateUserResult is the response payload for username validation.
type ValidateUserResult struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// TimeRangeOption is one selectable report period.
type TimeRangeOption struct {
	Value string `json:"value"` // canonical form, round-trips through ParseTimeRange
	Label string `json:"label"`
}
