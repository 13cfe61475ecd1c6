package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkordes/tripplanner/internal/domain"
)

const googleMapsBase = "https://maps.googleapis.com"

// GeocodeResult is the best match for an address.
type GeocodeResult struct {
	Address  string `json:"address"`
	PlaceID  string `json:"placeId,omitempty"`
	Location LatLng `json:"location"`
}

// Leg is one segment of a route between consecutive stops.
type Leg struct {
	StartAddress    string `json:"startAddress"`
	EndAddress      string `json:"endAddress"`
	DistanceMeters  int    `json:"distanceMeters"`
	DistanceText    string `json:"distanceText"`
	DurationSeconds int    `json:"durationSeconds"`
	DurationText    string `json:"durationText"`
}

// Marker labels one of the requested waypoints, numbered from 1 in request order.
type Marker struct {
	Label    string `json:"label"`
	Position LatLng `json:"position"`
}

// Route is an optimised driving route through the requested waypoints.
type Route struct {
	// WaypointOrder is the optimised visiting order of the intermediate
	// waypoints, as indexes into the intermediate list.
	WaypointOrder []int    `json:"waypointOrder"`
	Legs          []Leg    `json:"legs"`
	Polyline      string   `json:"polyline"`
	Markers       []Marker `json:"markers"`
}

// Maps is a Google Maps Geocoding and Directions client.
type Maps struct {
	c caller
}

// NewMaps returns a Google Maps client.
func NewMaps(o Options) *Maps {
	return &Maps{c: newCaller("google-maps", googleMapsBase, o)}
}

// BroadenAddress turns a bare place name into "name, name", which helps the
// geocoder with ambiguous single-word destinations. Addresses that already
// contain a comma are returned unchanged.
func BroadenAddress(address string) string {
	if strings.Contains(address, ",") {
		return address
	}
	return address + ", " + address
}

// Geocode resolves address. When the first lookup fails it retries once
// with BroadenAddress(address).
func (m *Maps) Geocode(ctx context.Context, address string) (GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return GeocodeResult{}, fmt.Errorf("%w: address is required", domain.ErrValidation)
	}
	if err := m.c.requireKey("geocode", "GOOGLE_MAPS_API_KEY"); err != nil {
		return GeocodeResult{}, err
	}

	res, err := m.geocodeOnce(ctx, address)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return GeocodeResult{}, err
	}
	broadened := BroadenAddress(address)
	if broadened == address {
		return GeocodeResult{}, withHints(err, geocodeHint(address))
	}
	res, err = m.geocodeOnce(ctx, broadened)
	if err != nil {
		return GeocodeResult{}, withHints(err, geocodeHint(address))
	}
	return res, nil
}

func geocodeHint(address string) string {
	return fmt.Sprintf("Could not find location: %s. Please try a different location or check your spelling.", address)
}

func (m *Maps) geocodeOnce(ctx context.Context, address string) (GeocodeResult, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", m.c.key)

	var body struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Results      []struct {
			FormattedAddress string `json:"formatted_address"`
			PlaceID          string `json:"place_id"`
			Geometry         struct {
				Location LatLng `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := m.c.getJSON(ctx, "geocode", "/maps/api/geocode/json", q, nil, &body); err != nil {
		return GeocodeResult{}, err
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return GeocodeResult{}, m.statusError("geocode", body.Status, body.ErrorMessage)
	}
	r := body.Results[0]
	return GeocodeResult{Address: r.FormattedAddress, PlaceID: r.PlaceID, Location: r.Geometry.Location}, nil
}

// Directions plans a driving route from the first waypoint to the last,
// letting the provider reorder the ones in between. It needs at least two
// waypoints.
func (m *Maps) Directions(ctx context.Context, waypoints []LatLng) (Route, error) {
	if len(waypoints) < 2 {
		return Route{}, fmt.Errorf("%w: at least two waypoints are required", domain.ErrValidation)
	}
	if err := m.c.requireKey("directions", "GOOGLE_MAPS_API_KEY"); err != nil {
		return Route{}, err
	}

	q := url.Values{}
	q.Set("origin", waypoints[0].String())
	q.Set("destination", waypoints[len(waypoints)-1].String())
	if mid := waypoints[1 : len(waypoints)-1]; len(mid) > 0 {
		parts := []string{"optimize:true"}
		for _, p := range mid {
			parts = append(parts, p.String())
		}
		q.Set("waypoints", strings.Join(parts, "|"))
	}
	q.Set("mode", "driving")
	q.Set("key", m.c.key)

	type textValue struct {
		Text  string `json:"text"`
		Value int    `json:"value"`
	}
	var body struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Routes       []struct {
			WaypointOrder []int `json:"waypoint_order"`
			Legs          []struct {
				StartAddress string    `json:"start_address"`
				EndAddress   string    `json:"end_address"`
				Distance     textValue `json:"distance"`
				Duration     textValue `json:"duration"`
			} `json:"legs"`
			OverviewPolyline struct {
				Points string `json:"points"`
			} `json:"overview_polyline"`
		} `json:"routes"`
	}
	if err := m.c.getJSON(ctx, "directions", "/maps/api/directions/json", q, nil, &body); err != nil {
		return Route{}, withHints(err, "Failed to calculate route. Please check your locations and try again.")
	}
	if body.Status != "OK" || len(body.Routes) == 0 {
		return Route{}, withHints(m.statusError("directions", body.Status, body.ErrorMessage),
			"Failed to calculate route. Please check your locations and try again.")
	}

	r := body.Routes[0]
	route := Route{
		WaypointOrder: r.WaypointOrder,
		Legs:          make([]Leg, 0, len(r.Legs)),
		Polyline:      r.OverviewPolyline.Points,
		Markers:       make([]Marker, 0, len(waypoints)),
	}
	if route.WaypointOrder == nil {
		route.WaypointOrder = []int{}
	}
	for _, l := range r.Legs {
		route.Legs = append(route.Legs, Leg{
			StartAddress:    l.StartAddress,
			EndAddress:      l.EndAddress,
			DistanceMeters:  l.Distance.Value,
			DistanceText:    l.Distance.Text,
			DurationSeconds: l.Duration.Value,
			DurationText:    l.Duration.Text,
		})
	}
	for i, p := range waypoints {
		route.Markers = append(route.Markers, Marker{Label: strconv.Itoa(i + 1), Position: p})
	}
	return route, nil
}

// statusError maps a Google API status other than OK to an *Error.
func (m *Maps) statusError(op, status, msg string) *Error {
	e := m.c.fail(op, 0, msg, fmt.Errorf("status %s", status))
	e.Hints = nil
	switch status {
	case "ZERO_RESULTS", "NOT_FOUND":
		e.Hints = []string{"Try a more specific location."}
	case "REQUEST_DENIED":
		e.Hints = []string{"Check that GOOGLE_MAPS_API_KEY is valid and the API is enabled."}
	case "OVER_QUERY_LIMIT":
		e.Hints = []string{"The service is rate limiting requests. Try again in a minute."}
	}
	return e
}
