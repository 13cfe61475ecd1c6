package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/view"
)

// TripRequest is the body of POST /trips. Dates are ISO calendar dates.
type TripRequest struct {
	Title         string              `json:"title"`
	Destination   string              `json:"destination"`
	StartDate     *openapi_types.Date `json:"startDate"`
	EndDate       *openapi_types.Date `json:"endDate"`
	Budget        *float64            `json:"budget"`
	Travelers     *int                `json:"travelers"`
	Accommodation string              `json:"accommodation"`
	Description   string              `json:"description"`
	Notes         string              `json:"notes"`
}

// Trip is the API representation of domain.Trip.
type Trip struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Destination   string             `json:"destination"`
	StartDate     openapi_types.Date `json:"startDate"`
	EndDate       openapi_types.Date `json:"endDate"`
	Budget        *float64           `json:"budget,omitempty"`
	Travelers     *int               `json:"travelers,omitempty"`
	Accommodation string             `json:"accommodation,omitempty"`
	Description   string             `json:"description,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Countdown is a human-readable time-to-departure.
type Countdown struct {
	TripID    uuid.UUID          `json:"tripId"`
	StartDate openapi_types.Date `json:"startDate"`
	Label     string             `json:"label"`
}

// UpcomingTrip is the body of GET /trips/upcoming.
type UpcomingTrip struct {
	Trip      Trip      `json:"trip"`
	Countdown Countdown `json:"countdown"`
}

// TripDays is the body of GET /trips/{id}/days.
type TripDays struct {
	TripID uuid.UUID `json:"tripId"`
	Days   []string  `json:"days"`
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	trips := s.d.Trips.List()
	page := domain.Paginate(trips, params)

	data := make([]Trip, len(page))
	for i, t := range page {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: len(trips)},
	})
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.d.Trips.Add(r.Context(), requestToTrip(body))
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetUpcomingTrip handles GET /trips/upcoming: the trip that starts soonest
// after now, with its countdown.
func (s *Server) GetUpcomingTrip(w http.ResponseWriter, r *http.Request) {
	now := s.d.Trips.Now()
	t, ok := view.NearestUpcomingTrip(s.d.Trips.List(), now)
	if !ok {
		writeDetail(w, http.StatusNotFound, ErrorDetail{Code: "not_found", Message: "no upcoming trip"})
		return
	}
	writeJSON(w, http.StatusOK, UpcomingTrip{Trip: tripToResponse(t), Countdown: countdownFor(t, now)})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	t, ok := s.trip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(t))
}

// DeleteTrip handles DELETE /trips/{id}. Deleting an unknown trip succeeds.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.d.Trips.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTripCountdown handles GET /trips/{id}/countdown.
func (s *Server) GetTripCountdown(w http.ResponseWriter, r *http.Request) {
	t, ok := s.trip(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, countdownFor(t, s.d.Trips.Now()))
}

// GetTripDays handles GET /trips/{id}/days: every calendar day of the trip.
func (s *Server) GetTripDays(w http.ResponseWriter, r *http.Request) {
	t, ok := s.trip(w, r)
	if !ok {
		return
	}
	days := []string{}
	for d := range view.DayBuckets(t.StartDate, t.EndDate) {
		days = append(days, d.Format(time.DateOnly))
	}
	writeJSON(w, http.StatusOK, TripDays{TripID: t.ID, Days: days})
}

// trip resolves the {id} path parameter to a trip, writing the error
// response itself when that fails.
func (s *Server) trip(w http.ResponseWriter, r *http.Request) (domain.Trip, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return domain.Trip{}, false
	}
	t, err := s.d.Trips.FindByID(id)
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return domain.Trip{}, false
	}
	return t, true
}

// --- mapping helpers --------------------------------------------------------

func requestToTrip(body TripRequest) domain.Trip {
	t := domain.Trip{
		Title:         body.Title,
		Destination:   body.Destination,
		Budget:        body.Budget,
		Travelers:     body.Travelers,
		Accommodation: domain.Accommodation(body.Accommodation),
		Description:   body.Description,
		Notes:         body.Notes,
	}
	if body.StartDate != nil {
		t.StartDate = body.StartDate.Time
	}
	if body.EndDate != nil {
		t.EndDate = body.EndDate.Time
	}
	return t
}

func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:            t.ID,
		Title:         t.Title,
		Destination:   t.Destination,
		StartDate:     openapi_types.Date{Time: t.StartDate},
		EndDate:       openapi_types.Date{Time: t.EndDate},
		Budget:        t.Budget,
		Travelers:     t.Travelers,
		Accommodation: string(t.Accommodation),
		Description:   t.Description,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
	}
}

func countdownFor(t domain.Trip, now time.Time) Countdown {
	return Countdown{
		TripID:    t.ID,
		StartDate: openapi_types.Date{Time: t.StartDate},
		Label:     view.CountdownLabel(t.StartDate, now),
	}
}

// queryInt returns the integer query parameter name, or nil when it is
// absent or not a number. Out-of-range values are clamped by the caller.
func queryInt(r *http.Request, name string) *int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &v
}
