package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/handler"
	"github.com/pkordes/tripplanner/internal/provider"
)

type mockWeather struct {
	dailyForecasts func(ctx context.Context, destination string) ([]provider.DailyForecast, error)
}

func (m *mockWeather) DailyForecasts(ctx context.Context, destination string) ([]provider.DailyForecast, error) {
	return m.dailyForecasts(ctx, destination)
}

type mockPlaces struct {
	search func(ctx context.Context, query string, bias *provider.LatLng) ([]provider.Place, error)
}

func (m *mockPlaces) Search(ctx context.Context, query string, bias *provider.LatLng) ([]provider.Place, error) {
	return m.search(ctx, query, bias)
}

type mockMaps struct {
	geocode    func(ctx context.Context, address string) (provider.GeocodeResult, error)
	directions func(ctx context.Context, waypoints []provider.LatLng) (provider.Route, error)
}

func (m *mockMaps) Geocode(ctx context.Context, address string) (provider.GeocodeResult, error) {
	return m.geocode(ctx, address)
}
func (m *mockMaps) Directions(ctx context.Context, waypoints []provider.LatLng) (provider.Route, error) {
	return m.directions(ctx, waypoints)
}

var (
	_ handler.WeatherSource = (*mockWeather)(nil)
	_ handler.PlaceSearcher = (*mockPlaces)(nil)
	_ handler.Mapper        = (*mockMaps)(nil)
)

func TestGetTripWeather(t *testing.T) {
	trip := tripFixture()
	weather := &mockWeather{dailyForecasts: func(_ context.Context, dest string) ([]provider.DailyForecast, error) {
		assert.Equal(t, "Goa", dest)
		return []provider.DailyForecast{{Date: "2025-06-01", Weekday: "Sun", Temp: 29, Description: "light rain"}}, nil
	}}
	h := newHTTPHandler(handler.Deps{Trips: storeWith(trip), Weather: weather})

	rec := serve(h, http.MethodGet, "/trips/"+trip.ID.String()+"/weather", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.TripWeather](t, rec)
	assert.Equal(t, "Goa", got.Destination)
	require.Len(t, got.Days, 1)
	assert.Equal(t, 29, got.Days[0].Temp)
}

func TestGetTripWeather_providerError_returns502WithHints(t *testing.T) {
	trip := tripFixture()
	weather := &mockWeather{dailyForecasts: func(context.Context, string) ([]provider.DailyForecast, error) {
		return nil, &provider.Error{
			Provider: "openweather",
			Op:       "geocode",
			Message:  `location "Goa" not found`,
			Hints:    []string{`Try a more specific location (e.g., "London, UK").`},
		}
	}}
	h := newHTTPHandler(handler.Deps{Trips: storeWith(trip), Weather: weather})

	rec := serve(h, http.MethodGet, "/trips/"+trip.ID.String()+"/weather", nil)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, handler.ErrorDetail{
		Code:    "provider_error",
		Message: `location "Goa" not found`,
		Hints:   []string{`Try a more specific location (e.g., "London, UK").`},
	}, decode[handler.ErrorResponse](t, rec).Error)
}

func TestSearchPlaces_bias(t *testing.T) {
	var gotBias *provider.LatLng
	places := &mockPlaces{search: func(_ context.Context, q string, bias *provider.LatLng) ([]provider.Place, error) {
		gotBias = bias
		return []provider.Place{{ID: "a1", Name: "Fort Aguada", Categories: []string{"Fort"}}}, nil
	}}
	h := newHTTPHandler(handler.Deps{Trips: storeWith(), Places: places})

	rec := serve(h, http.MethodGet, "/places?query=fort", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotBias, "no coordinates means no bias")
	got := decode[handler.PlaceResults](t, rec)
	assert.Equal(t, "fort", got.Query)
	require.Len(t, got.Results, 1)

	rec = serve(h, http.MethodGet, "/places?query=fort&lat=15.5&lng=73.75", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &provider.LatLng{Lat: 15.5, Lng: 73.75}, gotBias)
}

func TestSearchPlaces_badCoordinates_returns422(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Trips: storeWith(), Places: &mockPlaces{}})

	for _, q := range []string{"lat=15.5", "lat=north&lng=1", "lat=1&lng=200"} {
		rec := serve(h, http.MethodGet, "/places?query=fort&"+q, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, q)
	}
}

func TestSearchPlaces_blankQuery_returns422(t *testing.T) {
	places := &mockPlaces{search: func(context.Context, string, *provider.LatLng) ([]provider.Place, error) {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrValidation)
	}}
	h := newHTTPHandler(handler.Deps{Trips: storeWith(), Places: places})

	rec := serve(h, http.MethodGet, "/places", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "search query is required", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestGeocode(t *testing.T) {
	maps := &mockMaps{geocode: func(_ context.Context, addr string) (provider.GeocodeResult, error) {
		assert.Equal(t, "Panaji", addr)
		return provider.GeocodeResult{Address: "Panaji, Goa, India", Location: provider.LatLng{Lat: 15.49, Lng: 73.82}}, nil
	}}
	h := newHTTPHandler(handler.Deps{Trips: storeWith(), Maps: maps})

	rec := serve(h, http.MethodGet, "/geocode?address=Panaji", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"address":"Panaji, Goa, India","location":{"lat":15.49,"lng":73.82}}`, rec.Body.String())
}

func TestPostDirections(t *testing.T) {
	maps := &mockMaps{directions: func(_ context.Context, wps []provider.LatLng) (provider.Route, error) {
		require.Len(t, wps, 3)
		return provider.Route{
			WaypointOrder: []int{0},
			Legs:          []provider.Leg{},
			Polyline:      "abc",
			Markers:       []provider.Marker{{Label: "1", Position: wps[0]}, {Label: "2", Position: wps[1]}, {Label: "3", Position: wps[2]}},
		}, nil
	}}
	h := newHTTPHandler(handler.Deps{Trips: storeWith(), Maps: maps})

	rec := serve(h, http.MethodPost, "/directions", strings.NewReader(
		`{"waypoints":[{"lat":15.5,"lng":73.8},{"lat":15.4,"lng":73.9},{"lat":15.3,"lng":74.0}]}`))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[provider.Route](t, rec)
	assert.Equal(t, "abc", got.Polyline)
	assert.Equal(t, "3", got.Markers[2].Label)
}

func TestProviders_notConfigured_return503(t *testing.T) {
	trip := tripFixture()
	h := newHTTPHandler(handler.Deps{Trips: storeWith(trip)})

	for _, target := range []string{"/places?query=x", "/geocode?address=x", "/trips/" + trip.ID.String() + "/weather"} {
		rec := serve(h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}
