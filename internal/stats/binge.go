// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"math"
	"sort"

	"github.com/jmfield/rewind/internal/models"
)

// Binge thresholds. A binge is 3+ distinct episodes of one show on a single
// calendar day. The average-duration floor filters trailers and clips
// misclassified as episodes; the episode cap rejects pathological data
// (bulk imports, scrobble storms) when picking the longest session.
const (
	bingeMinEpisodes    = 3
	bingeMinAvgMinutes  = 10.0
	bingeMaxEpisodeSane = 20
)

// detectBinges finds binge sessions among accessible episode events.
// catalog entries feed show-identity resolution; events must already be
// range-filtered and permission-filtered by the caller.
//
// Sessions are produced in (date, show key) order, so ties for the longest
// session resolve identically across runs.
func detectBinges(episodes []models.PlaybackEvent, catalog map[string]models.CatalogItem) []models.BingeSession {
	type dayShow struct {
		date string
		show ShowIdentity
	}
	groups := make(map[string][]models.PlaybackEvent)
	shows := make(map[string]dayShow)

	for _, ev := range episodes {
		var item *models.CatalogItem
		if it, ok := catalog[ev.ItemKey()]; ok {
			item = &it
		}
		id := resolveShowIdentity(ev, item)
		key := ev.Date + "|" + id.Key
		groups[key] = append(groups[key], ev)
		if _, seen := shows[key]; !seen {
			shows[key] = dayShow{date: ev.Date, show: id}
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sessions []models.BingeSession
	for _, key := range keys {
		if session, ok := buildBingeSession(shows[key].show, groups[key]); ok {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

// buildBingeSession validates one same-day episode cluster against the binge
// thresholds. Repeats of the same episode on the same day count once.
func buildBingeSession(show ShowIdentity, events []models.PlaybackEvent) (models.BingeSession, bool) {
	unique := make([]models.PlaybackEvent, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, dup := seen[ev.ItemKey()]; dup {
			continue
		}
		seen[ev.ItemKey()] = struct{}{}
		unique = append(unique, ev)
	}
	if len(unique) < bingeMinEpisodes {
		return models.BingeSession{}, false
	}

	sort.SliceStable(unique, func(i, j int) bool {
		ti, _ := unique[i].Timestamp()
		tj, _ := unique[j].Timestamp()
		return ti.Before(tj)
	})

	var totalSeconds int
	for _, ev := range unique {
		totalSeconds += ev.DurationSeconds()
	}
	totalMinutes := int(math.Round(float64(totalSeconds) / 60))
	if float64(totalMinutes)/float64(len(unique)) < bingeMinAvgMinutes {
		return models.BingeSession{}, false
	}

	first, last := unique[0], unique[len(unique)-1]
	return models.BingeSession{
		ShowID:       show.Key,
		ShowName:     show.Name,
		EpisodeCount: len(unique),
		StartTime:    first.Date + "T" + first.Time,
		EndTime:      last.Date + "T" + last.Time,
		TotalMinutes: totalMinutes,
	}, true
}

// longestBinge picks the session with the most episodes among sessions under
// the sanity cap. The stable sort keeps first-encountered order on ties.
func longestBinge(sessions []models.BingeSession) *models.BingeSession {
	sane := make([]models.BingeSession, 0, len(sessions))
	for _, s := range sessions {
		if s.EpisodeCount <= bingeMaxEpisodeSane {
			sane = append(sane, s)
		}
	}
	if len(sane) == 0 {
		return nil
	}
	sort.SliceStable(sane, func(i, j int) bool {
		return sane[i].EpisodeCount > sane[j].EpisodeCount
	})
	longest := sane[0]
	return &longest
}
