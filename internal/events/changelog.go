package events

import (
	"time"

	"github.com/r3labs/diff/v3"

	"github.com/pkordes/tripplanner/internal/domain"
)

// The snapshot types flatten domain records into plain comparable fields.
// Slices are matched element by element on their identifier, so a changelog
// path reads [<id>, <field>].

type tripSnapshot struct {
	ID            string  `diff:"id,identifier"`
	Title         string  `diff:"title"`
	Destination   string  `diff:"destination"`
	StartDate     string  `diff:"startDate"`
	EndDate       string  `diff:"endDate"`
	Budget        float64 `diff:"budget"`
	Travelers     int     `diff:"travelers"`
	Accommodation string  `diff:"accommodation"`
}

type packingSnapshot struct {
	ID       string `diff:"id,identifier"`
	Name     string `diff:"name"`
	Category string `diff:"category"`
	Packed   bool   `diff:"packed"`
}

type timelineSnapshot struct {
	ID       string `diff:"id,identifier"`
	Day      int    `diff:"day"`
	Time     string `diff:"time"`
	Title    string `diff:"title"`
	Location string `diff:"location"`
}

// TripChanges describes how the trip collection went from before to after.
func TripChanges(before, after []domain.Trip) (diff.Changelog, error) {
	return diff.Diff(mapSlice(before, tripSnap), mapSlice(after, tripSnap))
}

// PackingChanges describes how a packing list went from before to after.
func PackingChanges(before, after []domain.PackingItem) (diff.Changelog, error) {
	return diff.Diff(mapSlice(before, packingSnap), mapSlice(after, packingSnap))
}

// TimelineChanges describes how a timeline went from before to after.
func TimelineChanges(before, after []domain.TimelineEvent) (diff.Changelog, error) {
	return diff.Diff(mapSlice(before, timelineSnap), mapSlice(after, timelineSnap))
}

func mapSlice[T, S any](in []T, f func(T) S) []S {
	out := make([]S, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func tripSnap(t domain.Trip) tripSnapshot {
	s := tripSnapshot{
		ID:            t.ID.String(),
		Title:         t.Title,
		Destination:   t.Destination,
		StartDate:     t.StartDate.Format(time.DateOnly),
		EndDate:       t.EndDate.Format(time.DateOnly),
		Accommodation: string(t.Accommodation),
	}
	if t.Budget != nil {
		s.Budget = *t.Budget
	}
	if t.Travelers != nil {
		s.Travelers = *t.Travelers
	}
	return s
}

func packingSnap(it domain.PackingItem) packingSnapshot {
	return packingSnapshot{
		ID:       it.ID.String(),
		Name:     it.Name,
		Category: string(it.Category),
		Packed:   it.Packed,
	}
}

func timelineSnap(e domain.TimelineEvent) timelineSnapshot {
	return timelineSnapshot{
		ID:       e.ID.String(),
		Day:      e.Day,
		Time:     e.Time,
		Title:    e.Title,
		Location: e.Location,
	}
}
