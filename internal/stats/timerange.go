// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// Package stats implements the wrapped-report aggregation engine.
//
// Everything in this package is a pure function over in-memory data: callers
// fetch raw playback events and catalog metadata, and the engine derives the
// complete report deterministically. No I/O, no clocks (the generation
// timestamp is injected), no shared state between aggregation passes.
package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jmfield/rewind/internal/models"
)

// rangeDateLayout parses the calendar-day field of playback events.
const rangeDateLayout = "2006-01-02"

// lookbackBufferDays absorbs server clock skew and ensures the tail of a
// previous calendar year is still covered by the fetch window.
const lookbackBufferDays = 14

// minLookbackDays is the floor for any fetch window.
const minLookbackDays = 365

// TimeRange is a report period: either a full year or a single month.
// A zero Month means the whole year. Malformed input degrades to a range
// that matches no event rather than an error (Year < 0).
type TimeRange struct {
	Year  int
	Month int // 1-12 when present, 0 for whole-year ranges
}

// ParseTimeRange interprets "2025" as a year range and "2026-01" (or
// "2026-1") as a month range. No other formats are accepted; malformed
// numeric parts yield a range that matches nothing.
func ParseTimeRange(input string) TimeRange {
	input = strings.TrimSpace(input)
	if year, month, ok := strings.Cut(input, "-"); ok {
		y, yerr := strconv.Atoi(year)
		m, merr := strconv.Atoi(month)
		if yerr != nil || merr != nil {
			return TimeRange{Year: -1}
		}
		return TimeRange{Year: y, Month: m}
	}
	y, err := strconv.Atoi(input)
	if err != nil {
		return TimeRange{Year: -1}
	}
	return TimeRange{Year: y}
}

// Valid reports whether the range can match any event at all.
func (r TimeRange) Valid() bool {
	return r.Year > 0 && (r.Month == 0 || (r.Month >= 1 && r.Month <= 12))
}

// Matches reports whether an event's calendar day falls inside the range.
// Unparseable dates never match.
func (r TimeRange) Matches(date string) bool {
	d, err := time.Parse(rangeDateLayout, date)
	if err != nil {
		return false
	}
	if d.Year() != r.Year {
		return false
	}
	return r.Month == 0 || int(d.Month()) == r.Month
}

// LookbackDays computes how many days of history must be requested from the
// Playback Reporting plugin so the range is fully covered, measured from now.
// A range starting in the future (or an invalid range) falls back to the
// defensive default of one year.
func (r TimeRange) LookbackDays(now time.Time) int {
	if !r.Valid() {
		return minLookbackDays
	}
	start := time.Date(r.Year, time.January, 1, 0, 0, 0, 0, now.Location())
	if start.After(now) {
		return minLookbackDays
	}
	days := int(math.Ceil(now.Sub(start).Hours()/24)) + lookbackBufferDays
	if days < minLookbackDays {
		return minLookbackDays
	}
	return days
}

// String returns the canonical form used as cache and grouping key:
// "2025" for year ranges, "2026-01" for month ranges. Canonical strings are
// unique per distinct range and round-trip through ParseTimeRange.
func (r TimeRange) String() string {
	if r.Month == 0 {
		return strconv.Itoa(r.Year)
	}
	return fmt.Sprintf("%d-%02d", r.Year, r.Month)
}

// Label returns the display form, e.g. "2025 (year)" or "2026 (January)".
func (r TimeRange) Label() string {
	if r.Month == 0 {
		return fmt.Sprintf("%d (year)", r.Year)
	}
	if r.Month >= 1 && r.Month <= 12 {
		return fmt.Sprintf("%d (%s)", r.Year, models.MonthNames[r.Month-1])
	}
	return r.String()
}

// AvailableTimeRanges lists the selectable report periods relative to now:
// the current year, the previous year, then the months of the current year
// from the most recent backwards.
func AvailableTimeRanges(now time.Time) []models.TimeRangeOption {
	year := now.Year()
	opts := []models.TimeRangeOption{
		rangeOption(TimeRange{Year: year}),
		rangeOption(TimeRange{Year: year - 1}),
	}
	for m := int(now.Month()); m >= 1; m-- {
		opts = append(opts, rangeOption(TimeRange{Year: year, Month: m}))
	}
	return opts
}

func rangeOption(r TimeRange) models.TimeRangeOption {
	return models.TimeRangeOption{Value: r.String(), Label: r.Label()}
}
