// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"testing"

	"github.com/jmfield/rewind/internal/models"
)

func alphaCatalog() map[string]models.CatalogItem {
	return catalogOf(
		episodeItem("101", "Pilot", "s1", "Alpha"),
		episodeItem("102", "Second", "s1", "Alpha"),
		episodeItem("103", "Third", "s1", "Alpha"),
		episodeItem("104", "Fourth", "s1", "Alpha"),
	)
}

func TestDetectBingesThreeEpisodes(t *testing.T) {
	events := []models.PlaybackEvent{
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "20:00:00", "1800"),
		episodeEvent(102, "Alpha - s01e02 - Second", "2025-03-01", "20:30:00", "1800"),
		episodeEvent(103, "Alpha - s01e03 - Third", "2025-03-01", "21:00:00", "1800"),
	}
	sessions := detectBinges(events, alphaCatalog())
	checkIntEqual(t, "sessions", len(sessions), 1)

	s := sessions[0]
	checkStringEqual(t, "ShowID", s.ShowID, "s1")
	checkStringEqual(t, "ShowName", s.ShowName, "Alpha")
	checkIntEqual(t, "EpisodeCount", s.EpisodeCount, 3)
	checkIntEqual(t, "TotalMinutes", s.TotalMinutes, 90)
	checkStringEqual(t, "StartTime", s.StartTime, "2025-03-01T20:00:00")
	checkStringEqual(t, "EndTime", s.EndTime, "2025-03-01T21:00:00")
}

func TestDetectBingesTwoEpisodesIsNotABinge(t *testing.T) {
	events := []models.PlaybackEvent{
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "20:00:00", "1800"),
		episodeEvent(102, "Alpha - s01e02 - Second", "2025-03-01", "20:30:00", "1800"),
	}
	checkIntEqual(t, "sessions", len(detectBinges(events, alphaCatalog())), 0)
}

func TestDetectBingesRepeatsCountOnce(t *testing.T) {
	// Same episode three times plus one other: only two distinct episodes.
	events := []models.PlaybackEvent{
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "18:00:00", "1800"),
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "19:00:00", "1800"),
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "20:00:00", "1800"),
		episodeEvent(102, "Alpha - s01e02 - Second", "2025-03-01", "21:00:00", "1800"),
	}
	checkIntEqual(t, "sessions", len(detectBinges(events, alphaCatalog())), 0)
}

func TestDetectBingesShortEpisodesRejected(t *testing.T) {
	// Three distinct plays averaging under ten minutes: clips, not a binge.
	events := []models.PlaybackEvent{
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "20:00:00", "300"),
		episodeEvent(102, "Alpha - s01e02 - Second", "2025-03-01", "20:10:00", "300"),
		episodeEvent(103, "Alpha - s01e03 - Third", "2025-03-01", "20:20:00", "300"),
	}
	checkIntEqual(t, "sessions", len(detectBinges(events, alphaCatalog())), 0)
}

func TestDetectBingesSplitsAcrossDaysAndShows(t *testing.T) {
	catalog := catalogOf(
		episodeItem("101", "Pilot", "s1", "Alpha"),
		episodeItem("102", "Second", "s1", "Alpha"),
		episodeItem("103", "Third", "s1", "Alpha"),
		episodeItem("201", "Pilot", "s2", "Beta"),
		episodeItem("202", "Second", "s2", "Beta"),
		episodeItem("203", "Third", "s2", "Beta"),
	)
	events := []models.PlaybackEvent{
		// Alpha binge on day one.
		episodeEvent(101, "Alpha - s01e01 - Pilot", "2025-03-01", "20:00:00", "1800"),
		episodeEvent(102, "Alpha - s01e02 - Second", "2025-03-01", "20:30:00", "1800"),
		episodeEvent(103, "Alpha - s01e03 - Third", "2025-03-01", "21:00:00", "1800"),
		// Beta spread over two days: never reaches three in one day.
		episodeEvent(201, "Beta - s01e01 - Pilot", "2025-03-01", "22:00:00", "1800"),
		episodeEvent(202, "Beta - s01e02 - Second", "2025-03-02", "20:00:00", "1800"),
		episodeEvent(203, "Beta - s01e03 - Third", "2025-03-02", "20:30:00", "1800"),
	}
	sessions := detectBinges(events, catalog)
	checkIntEqual(t, "sessions", len(sessions), 1)
	checkStringEqual(t, "ShowID", sessions[0].ShowID, "s1")
}

func TestDetectBingesSlugFallbackWithoutCatalog(t *testing.T) {
	// No catalog linkage: identity falls back to the display-name slug.
	events := []models.PlaybackEvent{
		episodeEvent(101, "Alpha Show - s01e01 - Pilot", "2025-03-01", "20:00:00", "1800"),
		episodeEvent(102, "Alpha Show - s01e02 - Second", "2025-03-01", "20:30:00", "1800"),
		episodeEvent(103, "Alpha Show - s01e03 - Third", "2025-03-01", "21:00:00", "1800"),
	}
	sessions := detectBinges(events, map[string]models.CatalogItem{})
	checkIntEqual(t, "sessions", len(sessions), 1)
	checkStringEqual(t, "ShowID", sessions[0].ShowID, "alpha_show")
	checkStringEqual(t, "ShowName", sessions[0].ShowName, "Alpha Show")
}

func TestLongestBingeSkipsOversizedSessions(t *testing.T) {
	sessions := []models.BingeSession{
		{ShowName: "Glitch", EpisodeCount: 40, TotalMinutes: 800},
		{ShowName: "Alpha", EpisodeCount: 5, TotalMinutes: 150},
		{ShowName: "Beta", EpisodeCount: 4, TotalMinutes: 160},
	}
	longest := longestBinge(sessions)
	if longest == nil {
		t.Fatal("expected a longest binge")
	}
	checkStringEqual(t, "ShowName", longest.ShowName, "Alpha")
	checkIntEqual(t, "EpisodeCount", longest.EpisodeCount, 5)
}

func TestLongestBingeEmpty(t *testing.T) {
	if longestBinge(nil) != nil {
		t.Error("expected nil for no sessions")
	}
	oversized := []models.BingeSession{{ShowName: "Glitch", EpisodeCount: 99}}
	if longestBinge(oversized) != nil {
		t.Error("expected nil when every session exceeds the sanity cap")
	}
}

func TestLongestBingeStableOnTies(t *testing.T) {
	sessions := []models.BingeSession{
		{ShowName: "Alpha", EpisodeCount: 4},
		{ShowName: "Beta", EpisodeCount: 4},
	}
	longest := longestBinge(sessions)
	if longest == nil {
		t.Fatal("expected a longest binge")
	}
	checkStringEqual(t, "ShowName", longest.ShowName, "Alpha")
}
