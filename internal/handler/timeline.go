package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/view"
)

// TimelineEventRequest is the body of POST /trips/{id}/timeline.
type TimelineEventRequest struct {
	Day         int    `json:"day"`
	Time        string `json:"time"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// TimelineEvent is the API representation of domain.TimelineEvent.
type TimelineEvent struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"tripId"`
	Day         int       `json:"day"`
	Time        string    `json:"time"`
	Title       string    `json:"title"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// DayPlan is one day of GET /trips/{id}/timeline.
type DayPlan struct {
	Day    int             `json:"day"`
	Date   string          `json:"date"`
	Events []TimelineEvent `json:"events"`
}

// GetTimeline handles GET /trips/{id}/timeline: every day of the trip with
// its events in time order.
func (s *Server) GetTimeline(w http.ResponseWriter, r *http.Request) {
	t, evs, ok := s.timeline(w, r)
	if !ok {
		return
	}
	plans := view.Timeline(t.StartDate, t.EndDate, evs)
	out := make([]DayPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, DayPlan{Day: p.Day, Date: p.Date, Events: eventsToResponse(p.Events)})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTimelineDay handles GET /trips/{id}/timeline/days/{day}.
func (s *Server) GetTimelineDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		requestError(w, "day must be an integer")
		return
	}
	_, evs, ok := s.timeline(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eventsToResponse(view.EventsForDay(evs, day)))
}

// CreateTimelineEvent handles POST /trips/{id}/timeline.
func (s *Server) CreateTimelineEvent(w http.ResponseWriter, r *http.Request) {
	if s.d.Timeline == nil {
		unavailable(w, "timeline")
		return
	}
	tripID, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body TimelineEventRequest
	if !decodeBody(w, r, &body) {
		return
	}

	ev, err := s.d.Timeline.Add(r.Context(), tripID, domain.TimelineEvent{
		Day:         body.Day,
		Time:        body.Time,
		Title:       body.Title,
		Location:    body.Location,
		Description: body.Description,
	})
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, eventToResponse(ev))
}

// DeleteTimelineEvent handles DELETE /trips/{id}/timeline/{eventId}.
func (s *Server) DeleteTimelineEvent(w http.ResponseWriter, r *http.Request) {
	if s.d.Timeline == nil {
		unavailable(w, "timeline")
		return
	}
	tripID, eventID, ok := tripAndChild(w, r, "eventId")
	if !ok {
		return
	}
	if err := s.d.Timeline.Delete(r.Context(), tripID, eventID); err != nil {
		s.fail(w, r, err, "timeline event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// timeline loads the trip named by {id} and its events.
func (s *Server) timeline(w http.ResponseWriter, r *http.Request) (domain.Trip, []domain.TimelineEvent, bool) {
	if s.d.Timeline == nil {
		unavailable(w, "timeline")
		return domain.Trip{}, nil, false
	}
	t, ok := s.trip(w, r)
	if !ok {
		return domain.Trip{}, nil, false
	}
	evs, err := s.d.Timeline.Load(r.Context(), t.ID)
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return domain.Trip{}, nil, false
	}
	return t, evs, true
}

func eventToResponse(e domain.TimelineEvent) TimelineEvent {
	return TimelineEvent{
		ID:          e.ID,
		TripID:      e.TripID,
		Day:         e.Day,
		Time:        e.Time,
		Title:       e.Title,
		Location:    e.Location,
		Description: e.Description,
	}
}

func eventsToResponse(evs []domain.TimelineEvent) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(evs))
	for _, e := range evs {
		out = append(out, eventToResponse(e))
	}
	return out
}
