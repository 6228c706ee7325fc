// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// Package models provides data structures for the Rewind application.
// This file contains the raw upstream types: playback events reported by the
// Playback Reporting plugin and catalog items from the media server library.
package models

import (
	"strconv"
	"strings"
	"time"
)

// Item types as reported by the Playback Reporting plugin.
// Matching is always case-insensitive; the plugin is not consistent
// about casing across server versions.
const (
	ItemTypeMovie      = "movie"
	ItemTypeEpisode    = "episode"
	ItemTypeAudio      = "audio"
	ItemTypeMusicVideo = "musicvideo"
	ItemTypeMusicAlbum = "musicalbum"
)

// eventTimeLayout is the combined date+time layout of a playback event.
// The plugin reports server-local wall-clock values with no zone; the pair is
// parsed as a naive local timestamp and never converted.
const eventTimeLayout = "2006-01-02T15:04:05"

// PlaybackEvent is one raw playback record from the Playback Reporting
// plugin's UserPlaylist endpoint. Events arrive unordered and immutable.
type PlaybackEvent struct {
	Date          string `json:"date"` // calendar day, "2006-01-02"
	Time          string `json:"time"` // local clock, "15:04:05"
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name,omitempty"`
	ItemID        int64  `json:"item_id"`
	ItemName      string `json:"item_name"`
	ItemType      string `json:"item_type"`
	Duration      string `json:"duration"` // seconds as string, may be empty or malformed
	RemoteAddress string `json:"remote_address,omitempty"`
}

// ItemKey returns the item id in the string form used to key catalog lookups.
func (e PlaybackEvent) ItemKey() string {
	return strconv.FormatInt(e.ItemID, 10)
}

// DurationSeconds parses the reported duration. Missing or malformed values
// degrade to 0 rather than erroring; bad rows must never poison a report.
func (e PlaybackEvent) DurationSeconds() int {
	if e.Duration == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(e.Duration))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}

// Minutes returns the event duration in fractional minutes. Rounding is a
// presentation concern and happens only when a report is assembled.
func (e PlaybackEvent) Minutes() float64 {
	return float64(e.DurationSeconds()) / 60.0
}

// Timestamp combines the date and time fields into a naive local timestamp.
// Returns false when either field is malformed.
func (e PlaybackEvent) Timestamp() (time.Time, bool) {
	ts, err := time.Parse(eventTimeLayout, e.Date+"T"+e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// IsVideo reports whether the event counts toward per-user video statistics.
// Music rows, tracks and music videos both, are excluded.
func (e PlaybackEvent) IsVideo() bool {
	t := strings.ToLower(e.ItemType)
	return t != ItemTypeAudio && t != ItemTypeMusicVideo
}

// IsAudio reports whether the event counts toward music statistics.
func (e PlaybackEvent) IsAudio() bool {
	return strings.EqualFold(e.ItemType, ItemTypeAudio)
}

// IsMovie reports whether the event is a movie playback.
func (e PlaybackEvent) IsMovie() bool {
	return strings.EqualFold(e.ItemType, ItemTypeMovie)
}

// IsEpisode reports whether the event is an episode playback.
func (e PlaybackEvent) IsEpisode() bool {
	return strings.EqualFold(e.ItemType, ItemTypeEpisode)
}

// NameID is a compact name/id pair used by catalog item sub-fields.
type NameID struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// CatalogItem is the library metadata record for a content id, fetched
// independently of playback history through the permission-scoped Items API.
//
// A missing catalog item for an id that appears in the activity feed signals
// an access restriction: the item is invisible to the filtering identity and
// its events are excluded from every video aggregate.
type CatalogItem struct {
	ID             string   `json:"Id"`
	Name           string   `json:"Name"`
	Type           string   `json:"Type"`
	Genres         []string `json:"Genres,omitempty"`
	SeriesID       string   `json:"SeriesId,omitempty"`
	SeriesName     string   `json:"SeriesName,omitempty"`
	ArtistItems    []NameID `json:"ArtistItems,omitempty"`
	ProductionYear int      `json:"ProductionYear,omitempty"`
	IndexNumber    int      `json:"IndexNumber,omitempty"`
}
