// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jmfield/rewind/internal/models"
)

// serverTopCount is the top-list size of the server-wide rollup.
const serverTopCount = 5

// ServerTally accumulates the server-wide rollup across users. Unlike the
// per-user report it works purely on event names, with no catalog fetch and
// no permission gating; the rollup is an anonymous aggregate, not a
// per-viewer view. Minutes round per event, matching how totals are displayed.
//
// Not safe for concurrent use; callers accumulate sequentially.
type ServerTally struct {
	users        int
	totalMinutes int
	moviePlays   int
	episodePlays int
	monthly      [12]int
	movieMinutes map[string]int
	movieCounts  map[string]int
	showMinutes  map[string]int
	showCounts   map[string]int
}

func NewServerTally() *ServerTally {
	return &ServerTally{
		movieMinutes: make(map[string]int),
		movieCounts:  make(map[string]int),
		showMinutes:  make(map[string]int),
		showCounts:   make(map[string]int),
	}
}

// AddUser folds one user's history into the tally. Users whose history could
// not be fetched should be added with nil events so they still count toward
// the user total.
func (t *ServerTally) AddUser(events []models.PlaybackEvent) {
	t.users++
	for _, ev := range events {
		// Track and album rows are music; everything else, music videos
		// included, folds into the video totals.
		kind := strings.ToLower(ev.ItemType)
		if kind == models.ItemTypeAudio || kind == models.ItemTypeMusicAlbum {
			continue
		}
		mins := int(math.Round(float64(ev.DurationSeconds()) / 60))
		t.totalMinutes += mins
		// Monthly buckets key on the calendar day alone; a malformed time
		// field must not drop the row.
		if d, err := time.Parse(rangeDateLayout, ev.Date); err == nil {
			t.monthly[int(d.Month())-1] += mins
		}
		switch {
		case ev.IsMovie():
			t.moviePlays++
			t.movieMinutes[ev.ItemName] += mins
			t.movieCounts[ev.ItemName]++
		case ev.IsEpisode():
			t.episodePlays++
			show := showNamePrefix(ev.ItemName)
			t.showMinutes[show] += mins
			t.showCounts[show]++
		}
	}
}

// Build assembles the rollup. Top lists rank by minutes with name tie-breaks.
func (t *ServerTally) Build(now time.Time) *models.ServerStats {
	peak := 0
	for m, v := range t.monthly {
		if v > t.monthly[peak] {
			peak = m
		}
	}
	return &models.ServerStats{
		TotalUsers:     t.users,
		TotalMinutes:   t.totalMinutes,
		TotalMovies:    t.moviePlays,
		TotalEpisodes:  t.episodePlays,
		PeakMonth:      peak,
		MonthlyMinutes: t.monthly,
		TopShows:       topByName(t.showMinutes, t.showCounts),
		TopMovies:      topByName(t.movieMinutes, t.movieCounts),
		GeneratedAt:    now.UTC(),
	}
}

func topByName(minutes, counts map[string]int) []models.TopItem {
	names := make([]string, 0, len(minutes))
	for name := range minutes {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if minutes[names[i]] != minutes[names[j]] {
			return minutes[names[i]] > minutes[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > serverTopCount {
		names = names[:serverTopCount]
	}
	out := make([]models.TopItem, 0, len(names))
	for _, name := range names {
		out = append(out, models.TopItem{
			ID:      slugify(name),
			Name:    name,
			Minutes: minutes[name],
			Count:   counts[name],
		})
	}
	return out
}
