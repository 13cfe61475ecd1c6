package view

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/pkordes/tripplanner/internal/domain"
)

// DayBuckets yields every calendar day from start to end inclusive, at
// midnight UTC. The sequence is empty when either date is zero or start is
// after end. It holds no state between iterations, so it can be ranged over
// any number of times.
func DayBuckets(start, end time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if start.IsZero() || end.IsZero() {
			return
		}
		first, last := domain.Date(start), domain.Date(end)
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// EventsForDay returns the events scheduled on the 1-based day index, ordered
// by their "HH:MM" time. Events at the same time keep their input order.
func EventsForDay(events []domain.TimelineEvent, day int) []domain.TimelineEvent {
	out := []domain.TimelineEvent{}
	for _, e := range events {
		if e.Day == day {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TimelineEvent) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return out
}

// DayPlan is one day of a trip's timeline.
type DayPlan struct {
	Day    int                    `json:"day"`
	Date   string                 `json:"date"`
	Events []domain.TimelineEvent `json:"events"`
}

// Timeline buckets events into the trip's days. Every day of the range is
// present, including days without events. Events whose day index falls
// outside the range are dropped.
func Timeline(start, end time.Time, events []domain.TimelineEvent) []DayPlan {
	plans := []DayPlan{}
	i := 0
	for d := range DayBuckets(start, end) {
		i++
		plans = append(plans, DayPlan{
			Day:    i,
			Date:   d.Format(time.DateOnly),
			Events: EventsForDay(events, i),
		})
	}
	return plans
}
