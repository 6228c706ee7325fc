// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import "fmt"

// Reference durations behind the watch-time comparisons, in minutes or hours.
// Each figure is a real-world estimate (extended LOTR trilogy runtime, average
// marathon finish, NYC-LA drive time, and so on).
const (
	lotrTrilogyMinutes   = 726
	friendsRunHours      = 80
	moonTripHours        = 76
	crossCountryHours    = 41
	marathonHours        = 4.5
	nycTokyoFlightHours  = 14
	titanicMinutes       = 194
	everestHours         = 480
	roadTripHours        = 12
	nycLAFlightHours     = 5.5
	beatlesMinutes       = 600
	workWeekHours        = 40
	workDayHours         = 8
	audiobookHours       = 10
	harryPotterMinutes   = 1179
	featureFilmMinutes   = 120
	londonNYCFlightHours = 7
	sitcomEpisodeMinutes = 22
	albumMinutes         = 45
)

// funFact picks a watch-time comparison from a tier matched to the total.
// The pick is a pure function of the seed, so the same user and period always
// read the same fact.
func funFact(totalMinutes int, seed uint64) string {
	pool := funFactPool(totalMinutes)
	return pool[seed%uint64(len(pool))]
}

func funFactPool(totalMinutes int) []string {
	minutes := float64(totalMinutes)
	hours := minutes / 60

	switch {
	case totalMinutes >= 10000:
		return []string{
			fmt.Sprintf("Time well spent: that's the entire Lord of the Rings Extended Edition %d times over", int(minutes/lotrTrilogyMinutes)),
			fmt.Sprintf("You could have watched the entire Friends saga %d times", int(hours/friendsRunHours)),
			fmt.Sprintf("You could have flown to the Moon and back %d times", int(hours/moonTripHours)/2),
			fmt.Sprintf("Equivalent to driving from NYC to LA %d times non-stop", int(hours/crossCountryHours)),
		}
	case totalMinutes >= 5000:
		return []string{
			fmt.Sprintf("That time equals running %d marathons back-to-back", int(hours/marathonHours)),
			fmt.Sprintf("You could fly NYC to Tokyo %d times", int(hours/nycTokyoFlightHours)),
			fmt.Sprintf("Equivalent to watching Titanic %d times", int(minutes/titanicMinutes)),
			fmt.Sprintf("Time enough for %d full Everest expeditions", int(hours/everestHours)),
		}
	case totalMinutes >= 2000:
		return []string{
			fmt.Sprintf("That's %d long road trips worth of entertainment", int(hours/roadTripHours)),
			fmt.Sprintf("%d coast-to-coast flights", int(hours/nycLAFlightHours)),
			fmt.Sprintf("Equivalent to working a full-time job for %d weeks", int(hours/workWeekHours)),
			fmt.Sprintf("You could listen to The Beatles' entire discography %d times", int(minutes/beatlesMinutes)),
		}
	case totalMinutes >= 1000:
		return []string{
			fmt.Sprintf("That's %d full work days of viewing", int(hours/workDayHours)),
			fmt.Sprintf("Equivalent to listening to %d average-length audiobooks", int(hours/audiobookHours)),
			fmt.Sprintf("You could have watched the entire Harry Potter series %d times", int(minutes/harryPotterMinutes)),
		}
	case totalMinutes >= 500:
		return []string{
			fmt.Sprintf("That's roughly %d feature films", int(minutes/featureFilmMinutes)),
			fmt.Sprintf("Equivalent to flying from London to New York %d times", int(hours/londonNYCFlightHours)),
			fmt.Sprintf("You could watch Titanic %d times", int(minutes/titanicMinutes)),
		}
	default:
		films := int(minutes / featureFilmMinutes)
		filmLabel := fmt.Sprintf("About %d feature films", films)
		if films <= 1 {
			filmLabel = "About 1 feature film"
		}
		return []string{
			fmt.Sprintf("%d sitcom episodes worth of time", int(minutes/sitcomEpisodeMinutes)),
			filmLabel,
			fmt.Sprintf("%d album listens back-to-back", int(minutes/albumMinutes)),
		}
	}
}
