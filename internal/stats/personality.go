// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import "github.com/jmfield/rewind/internal/models"

// Viewer-archetype thresholds.
const (
	bingeHeavyCount  = 5     // binges needed for the binge-heavy trait
	heavyViewerFloor = 10000 // minutes
	lightViewerCeil  = 2000  // minutes
)

// personalityTraits are the derived signals the archetype rules match on.
type personalityTraits struct {
	nightOwl       bool
	earlyBird      bool
	weekendWarrior bool
	peakHour       int
	bingeCount     int
	totalMinutes   int
}

// classifyPersonality maps viewing traits to an archetype. Rules are checked
// most-specific first; the order is part of the contract, since a viewer can
// satisfy several of them.
func classifyPersonality(t personalityTraits) models.Personality {
	bingeHeavy := t.bingeCount >= bingeHeavyCount
	heavy := t.totalMinutes >= heavyViewerFloor
	light := t.totalMinutes < lightViewerCeil
	peakLateNight := t.peakHour >= 23 || t.peakHour <= 3
	peakMorning := t.peakHour >= 5 && t.peakHour <= 8

	switch {
	case t.nightOwl && t.weekendWarrior && bingeHeavy:
		return models.Personality{Label: "Vampire Cinema Club", Symbol: "⁂", Tagline: "Sleep is for the weak. Content is eternal."}
	case t.nightOwl && peakLateNight && heavy:
		return models.Personality{Label: "The Insomniac", Symbol: "◎", Tagline: "Who needs sleep when there's one more episode?"}
	case t.nightOwl && bingeHeavy:
		return models.Personality{Label: "Goblin Mode Activated", Symbol: "◬", Tagline: "Thriving in the darkness, one season at a time."}
	case t.nightOwl && t.weekendWarrior:
		return models.Personality{Label: "Midnight Marathoner", Symbol: "◐", Tagline: "The couch calls after dark."}
	case t.earlyBird && light:
		return models.Personality{Label: "The Minimalist", Symbol: "◇", Tagline: "Quality over quantity, always."}
	case t.earlyBird && peakMorning:
		return models.Personality{Label: "Sunrise Cinephile", Symbol: "◑", Tagline: "Coffee in hand, remote in the other."}
	case t.earlyBird:
		return models.Personality{Label: "Dawn Patrol", Symbol: "☼", Tagline: "Catching shows before the world wakes up."}
	case t.weekendWarrior && bingeHeavy:
		return models.Personality{Label: "The Hibernator", Symbol: "◉", Tagline: "Weekdays are just the wait before the weekend binge."}
	case t.weekendWarrior && heavy:
		return models.Personality{Label: "Couch Royalty", Symbol: "◈", Tagline: "The living room throne awaits every weekend."}
	case t.weekendWarrior:
		return models.Personality{Label: "Weekend Warrior", Symbol: "⚔", Tagline: "Saving all the good stuff for Saturday."}
	case t.nightOwl:
		return models.Personality{Label: "Night Owl", Symbol: "◐", Tagline: "The best shows come out after midnight."}
	case heavy && bingeHeavy:
		return models.Personality{Label: "The Completionist", Symbol: "✧", Tagline: "If it exists, it must be watched. All of it."}
	case heavy:
		return models.Personality{Label: "The Archivist", Symbol: "∴", Tagline: "Building a mental library, one show at a time."}
	case light:
		return models.Personality{Label: "The Phantom", Symbol: "∿", Tagline: "Appears briefly, watches intensely, vanishes."}
	default:
		return models.Personality{Label: "The Curator", Symbol: "◇", Tagline: "A refined taste, perfectly balanced."}
	}
}

// DayPersonality labels a viewer by their busiest weekday (0=Sunday).
// Out-of-range input falls back to Sunday.
func DayPersonality(peakDay int) models.Personality {
	days := []models.Personality{
		{Label: "Sunday Scroller", Tagline: "The perfect end to the week"},
		{Label: "Monday Motivator", Tagline: "Starting the week right"},
		{Label: "Tuesday Traveler", Tagline: "Escaping the midweek blues"},
		{Label: "Wednesday Warrior", Tagline: "Hump day hero"},
		{Label: "Thursday Thinker", Tagline: "Almost there..."},
		{Label: "Friday Fanatic", Tagline: "Weekend mode: activated"},
		{Label: "Saturday Binger", Tagline: "This is what Saturdays are for"},
	}
	if peakDay < 0 || peakDay >= len(days) {
		peakDay = 0
	}
	return days[peakDay]
}
