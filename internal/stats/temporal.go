// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package stats

import (
	"math"

	"github.com/jmfield/rewind/internal/models"
)

// Personality thresholds. Deliberately simple, tunable heuristics: shares of
// total watch minutes falling in fixed clock buckets.
const (
	nightOwlShare  = 0.30 // hours 21-23 plus 0-2
	earlyBirdShare = 0.25 // hours 5-9
	// Weekend minutes must exceed 1.5x the two-day equivalent of the
	// weekday total: weekend > weekday * (2/5) * 1.5.
	weekendFactor = 2.0 / 5.0 * 1.5
)

// heatmap accumulates fractional minutes per time bucket. Values are rounded
// only when the report is assembled.
type heatmap struct {
	hours  [24]float64
	days   [7]float64 // 0=Sunday
	months [12]float64
}

// add buckets one event's minutes by its local timestamp. Events with an
// unparseable timestamp contribute nothing.
func (h *heatmap) add(ev models.PlaybackEvent) {
	ts, ok := ev.Timestamp()
	if !ok {
		return
	}
	mins := ev.Minutes()
	h.hours[ts.Hour()] += mins
	h.days[int(ts.Weekday())] += mins
	h.months[int(ts.Month())-1] += mins
}

// rounded converts the float accumulators to the output model.
func (h *heatmap) rounded() models.HeatmapData {
	var out models.HeatmapData
	for i, v := range h.hours {
		out.Hours[i] = int(math.Round(v))
	}
	for i, v := range h.days {
		out.Days[i] = int(math.Round(v))
	}
	for i, v := range h.months {
		out.Months[i] = int(math.Round(v))
	}
	return out
}

// peaks returns the index of the maximum bucket in each array.
// Ties resolve to the lowest index.
func (h *heatmap) peaks() (hour, day, month int) {
	return argmax(h.hours[:]), argmax(h.days[:]), argmax(h.months[:])
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// personalityFlags classifies night-owl / early-bird / weekend-warrior
// traits from bucket ratios. A zero denominator forces the flag false.
func (h *heatmap) personalityFlags() (nightOwl, earlyBird, weekendWarrior bool) {
	var total float64
	for _, v := range h.hours {
		total += v
	}

	night := h.hours[21] + h.hours[22] + h.hours[23] + h.hours[0] + h.hours[1] + h.hours[2]
	morning := h.hours[5] + h.hours[6] + h.hours[7] + h.hours[8] + h.hours[9]
	weekend := h.days[0] + h.days[6]
	var weekday float64
	for _, v := range h.days[1:6] {
		weekday += v
	}

	nightOwl = total > 0 && night > total*nightOwlShare
	earlyBird = total > 0 && morning > total*earlyBirdShare
	weekendWarrior = weekday > 0 && weekend > weekday*weekendFactor
	return nightOwl, earlyBird, weekendWarrior
}
