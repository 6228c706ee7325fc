// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"strings"

	"github.com/jmfield/rewind/internal/models"
)

// showNameSeparator splits the "Show Name - sXXeXX - Episode Title" display
// convention used by the Playback Reporting plugin.
const showNameSeparator = " - "

// ShowIdentity resolves which show an episode event belongs to. The series id
// from catalog linkage is authoritative; when linkage is missing the identity
// falls back to a normalized slug of the display-name prefix. The slug is a
// best-effort join key, not guaranteed unique across differently formatted
// names for the same show.
type ShowIdentity struct {
	Key      string // series id when known, otherwise the name slug
	SeriesID string // empty when resolved from the name slug
	Name     string // display name (catalog series name when available)
}

// resolveShowIdentity derives the show identity for an episode event.
// item may be nil when the catalog has no entry for the event's id.
func resolveShowIdentity(ev models.PlaybackEvent, item *models.CatalogItem) ShowIdentity {
	name := showNamePrefix(ev.ItemName)
	id := ShowIdentity{Key: slugify(name), Name: name}
	if item != nil {
		if item.SeriesID != "" {
			id.Key = item.SeriesID
			id.SeriesID = item.SeriesID
		}
		if item.SeriesName != "" {
			id.Name = item.SeriesName
		}
	}
	return id
}

// showNamePrefix returns the substring before the first " - " separator, or
// the whole name when no separator is present.
func showNamePrefix(name string) string {
	prefix, _, found := strings.Cut(name, showNameSeparator)
	if !found || prefix == "" {
		return name
	}
	return prefix
}

// slugify lower-cases a name and collapses whitespace runs to underscores.
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// splitArtistTrack recovers (artist, title) from the "Artist - Title" track
// naming convention. Names without a separator keep the full name as the
// title and are attributed to "Unknown Artist".
func splitArtistTrack(name string) (artist, title string) {
	a, t, found := strings.Cut(name, showNameSeparator)
	if !found || a == "" {
		return "Unknown Artist", name
	}
	return a, t
}
