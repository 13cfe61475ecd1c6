package domain

import "github.com/google/uuid"

// TimelineEvent is a single planned activity on one day of a trip.
// Day is 1-based: day 1 is the trip's start date.
// Time is a 24-hour "HH:MM" string, so lexicographic order is chronological.
type TimelineEvent struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Day         int
	Time        string
	Title       string
	Location    string
	Description string
}
