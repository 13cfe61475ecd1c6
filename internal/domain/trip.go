// Package domain contains the core data types for the trip planner.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (kv, repo, service, view, handler).
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trip represents a single planned journey.
// A trip is the top-level aggregate; packing items and timeline events belong to a trip.
//
// StartDate and EndDate are calendar dates held at midnight UTC. StartDate is
// expected to be on or before EndDate, but nothing enforces it.
type Trip struct {
	ID            uuid.UUID
	Title         string
	Destination   string
	StartDate     time.Time
	EndDate       time.Time
	Budget        *float64 // nil when the traveller did not set one
	Travelers     *int     // nil when unset
	Accommodation Accommodation
	Description   string
	Notes         string
	CreatedAt     time.Time
}

// Accommodation is the kind of lodging booked for a trip.
// The zero value means "not set".
type Accommodation string

const (
	AccommodationHotel     Accommodation = "hotel"
	AccommodationApartment Accommodation = "apartment"
	AccommodationHostel    Accommodation = "hostel"
	AccommodationResort    Accommodation = "resort"
	AccommodationOther     Accommodation = "other"
)

// Accommodations lists every accommodation kind in display order.
var Accommodations = []Accommodation{
	AccommodationHotel,
	AccommodationApartment,
	AccommodationHostel,
	AccommodationResort,
	AccommodationOther,
}

// ParseAccommodation normalizes free text into an Accommodation.
// Blank input yields the unset value; unrecognized text maps to AccommodationOther.
func ParseAccommodation(s string) Accommodation {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	for _, a := range Accommodations {
		if string(a) == s {
			return a
		}
	}
	return AccommodationOther
}

// ClampAmount returns v when it is a finite, non-negative number and 0 otherwise.
// All user-entered money goes through it at the point of entry.
func ClampAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
