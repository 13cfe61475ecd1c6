package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pkordes/tripplanner/internal/provider"
)

// TripWeather is the body of GET /trips/{id}/weather.
type TripWeather struct {
	Destination string                   `json:"destination"`
	Days        []provider.DailyForecast `json:"days"`
}

// PlaceResults is the body of GET /places.
type PlaceResults struct {
	Query   string           `json:"query"`
	Results []provider.Place `json:"results"`
}

// DirectionsRequest is the body of POST /directions. The first waypoint is
// the origin, the last the destination; the ones between may be reordered.
type DirectionsRequest struct {
	Waypoints []provider.LatLng `json:"waypoints"`
}

// GetTripWeather handles GET /trips/{id}/weather: up to five daily forecasts
// for the trip's destination.
func (s *Server) GetTripWeather(w http.ResponseWriter, r *http.Request) {
	if s.d.Weather == nil {
		unavailable(w, "weather")
		return
	}
	t, ok := s.trip(w, r)
	if !ok {
		return
	}
	days, err := s.d.Weather.DailyForecasts(r.Context(), t.Destination)
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, TripWeather{Destination: t.Destination, Days: days})
}

// SearchPlaces handles GET /places?query=&lat=&lng=. The location bias is
// optional; without lat and lng the search is not biased.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	if s.d.Places == nil {
		unavailable(w, "places search")
		return
	}
	q := r.URL.Query()
	bias, err := parseBias(q.Get("lat"), q.Get("lng"))
	if err != nil {
		requestError(w, err.Error())
		return
	}
	places, err := s.d.Places.Search(r.Context(), q.Get("query"), bias)
	if err != nil {
		s.fail(w, r, err, "no places found")
		return
	}
	writeJSON(w, http.StatusOK, PlaceResults{Query: q.Get("query"), Results: places})
}

// Geocode handles GET /geocode?address=.
func (s *Server) Geocode(w http.ResponseWriter, r *http.Request) {
	if s.d.Maps == nil {
		unavailable(w, "maps")
		return
	}
	res, err := s.d.Maps.Geocode(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		s.fail(w, r, err, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PostDirections handles POST /directions.
func (s *Server) PostDirections(w http.ResponseWriter, r *http.Request) {
	if s.d.Maps == nil {
		unavailable(w, "maps")
		return
	}
	var body DirectionsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	route, err := s.d.Maps.Directions(r.Context(), body.Waypoints)
	if err != nil {
		s.fail(w, r, err, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// parseBias returns nil when neither coordinate is given. Giving only one,
// or a value that is not a number, is an error.
func parseBias(lat, lng string) (*provider.LatLng, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return nil, errors.New("lat must be a number between -90 and 90")
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil || ln < -180 || ln > 180 {
		return nil, errors.New("lng must be a number between -180 and 180")
	}
	return &provider.LatLng{Lat: la, Lng: ln}, nil
}
