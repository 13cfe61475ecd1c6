// Package view holds the pure derivations the trip planner renders from the
// store: the next trip and its countdown, the day buckets of a date range,
// timeline grouping and budget aggregation. Nothing here reads a clock or
// touches storage; callers pass "now" and the data in.
package view

import (
	"fmt"
	"time"

	"github.com/pkordes/tripplanner/internal/domain"
)

// NearestUpcomingTrip returns the trip with the earliest start date strictly
// after now. Trips sharing that start date resolve to the first in input
// order. ok is false when no trip starts in the future.
func NearestUpcomingTrip(trips []domain.Trip, now time.Time) (trip domain.Trip, ok bool) {
	for _, t := range trips {
		if !t.StartDate.After(now) {
			continue
		}
		if !ok || t.StartDate.Before(trip.StartDate) {
			trip, ok = t, true
		}
	}
	return trip, ok
}

// CountdownLabel renders the time remaining until start as whole days, else
// whole hours, else "Less than an hour!". Durations are floored.
func CountdownLabel(start, now time.Time) string {
	if !start.After(now) {
		return "Your trip has started!"
	}
	diff := start.Sub(now)
	if days := int(diff / (24 * time.Hour)); days > 0 {
		return plural(days, "day")
	}
	if hours := int(diff / time.Hour); hours > 0 {
		return plural(hours, "hour")
	}
	return "Less than an hour!"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
