// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package models

import "time"

// MusicStats is the compact music summary embedded in a wrapped report.
//
// Note the ranking asymmetry with FullMusicStats: the compact summary ranks
// top tracks by play count ("most replayed") while the full report ranks by
// minutes ("most listened to"). Both behaviors are intentional and preserved.
type MusicStats struct {
	TotalMinutes int          `json:"total_minutes"`
	TrackCount   int          `json:"track_count"`
	TopArtists   []ArtistStat `json:"top_artists"` // top 5 by minutes
	TopTracks    []TrackStat  `json:"top_tracks"`  // top 5 by play count
}

// FullMusicStats is the standalone full music report.
type FullMusicStats struct {
	UserID          string       `json:"user_id"`
	Range           string       `json:"range"`
	GeneratedAt     time.Time    `json:"generated_at"`
	TotalMinutes    int          `json:"total_minutes"`
	TrackCount      int          `json:"track_count"`
	UniqueArtists   int          `json:"unique_artists"`
	UniqueTracks    int          `json:"unique_tracks"`
	TopArtists      []ArtistStat `json:"top_artists"` // top 10 by minutes
	TopTracks       []TrackStat  `json:"top_tracks"`  // top 10 by minutes
	ArtistDiversity float64      `json:"artist_diversity"`
}

// ArtistStat is a ranked artist. Artist identity is recovered from the
// "Artist - Title" display-name convention; tracks without a separator are
// attributed to "Unknown Artist".
type ArtistStat struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Count   int    `json:"count"`
}

// TrackStat is a ranked track, identified by (artist, title). ID is the item
// id of the first play seen for the track, kept for artwork lookups.
type TrackStat struct {
	ID      string `json:"id,omitempty"`
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
	Count   int    `json:"count"`
}
