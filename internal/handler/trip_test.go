package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/handler"
)

// mockTripStore is a test double for handler.TripStore.
// Set only the method fields your test needs.
type mockTripStore struct {
	list     func() []domain.Trip
	findByID func(id uuid.UUID) (domain.Trip, error)
	add      func(ctx context.Context, draft domain.Trip) (domain.Trip, error)
	delete   func(ctx context.Context, id uuid.UUID) error
	now      func() time.Time
}

func (m *mockTripStore) List() []domain.Trip { return m.list() }
func (m *mockTripStore) FindByID(id uuid.UUID) (domain.Trip, error) {
	return m.findByID(id)
}
func (m *mockTripStore) Add(ctx context.Context, draft domain.Trip) (domain.Trip, error) {
	return m.add(ctx, draft)
}
func (m *mockTripStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripStore) Now() time.Time { return m.now() }

// compile-time check: mockTripStore must satisfy handler.TripStore.
var _ handler.TripStore = (*mockTripStore)(nil)

// ---- helpers ---------------------------------------------------------------

var testNow = time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)

// newHTTPHandler wires a Server with the given dependencies, exactly as
// main.go does in production.
func newHTTPHandler(d handler.Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return handler.NewServer(d).Routes()
}

func tripFixture() domain.Trip {
	budget := 50000.0
	travelers := 2
	return domain.Trip{
		ID:            uuid.New(),
		Title:         "Monsoon Escape",
		Destination:   "Goa",
		StartDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Budget:        &budget,
		Travelers:     &travelers,
		Accommodation: domain.AccommodationResort,
		CreatedAt:     testNow.Add(-time.Hour),
	}
}

// storeWith serves trips from a fixed slice.
func storeWith(trips ...domain.Trip) *mockTripStore {
	return &mockTripStore{
		list: func() []domain.Trip { return trips },
		findByID: func(id uuid.UUID) (domain.Trip, error) {
			for _, t := range trips {
				if t.ID == id {
					return t, nil
				}
			}
			return domain.Trip{}, fmt.Errorf("trip %s: %w", id, domain.ErrNotFound)
		},
		now: func() time.Time { return testNow },
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// ---- ListTrips ---------------------------------------------------------------

func TestListTrips_paginates(t *testing.T) {
	a, b, c := tripFixture(), tripFixture(), tripFixture()
	h := newHTTPHandler(handler.Deps{Trips: storeWith(a, b, c)})

	rec := serve(h, http.MethodGet, "/trips?page=2&limit=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.TripList](t, rec)
	require.Len(t, got.Data, 1)
	assert.Equal(t, c.ID, got.Data[0].ID)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 2, Total: 3}, got.Pagination)
}

func TestListTrips_emptyIsArray(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Trips: storeWith()})

	rec := serve(h, http.MethodGet, "/trips", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":20,"total":0}}`, rec.Body.String())
}

// ---- CreateTrip --------------------------------------------------------------

func TestCreateTrip_returns201(t *testing.T) {
	var got domain.Trip
	store := storeWith()
	store.add = func(_ context.Context, draft domain.Trip) (domain.Trip, error) {
		got = draft
		draft.ID = uuid.New()
		draft.CreatedAt = testNow
		return draft, nil
	}
	h := newHTTPHandler(handler.Deps{Trips: store})

	rec := serve(h, http.MethodPost, "/trips", bytes.NewBufferString(`{
		"title": "Monsoon Escape",
		"destination": "Goa",
		"startDate": "2025-06-01",
		"endDate": "2025-06-03",
		"budget": 50000,
		"travelers": 2,
		"accommodation": "resort"
	}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Goa", got.Destination)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got.StartDate)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), got.EndDate)
	require.NotNil(t, got.Budget)
	assert.Equal(t, 50000.0, *got.Budget)
	assert.Equal(t, domain.AccommodationResort, got.Accommodation)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-01", body["startDate"])
	assert.Equal(t, "2025-06-03", body["endDate"])
	assert.Equal(t, "resort", body["accommodation"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateTrip_validationError_returns422(t *testing.T) {
	store := storeWith()
	store.add = func(context.Context, domain.Trip) (domain.Trip, error) {
		return domain.Trip{}, fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	h := newHTTPHandler(handler.Deps{Trips: store})

	rec := serve(h, http.MethodPost, "/trips", jsonBody(t, map[string]string{"title": "No destination"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", got.Error.Code)
	assert.Equal(t, "destination is required", got.Error.Message)
}

func TestCreateTrip_badBody_returns422(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Trips: storeWith()})

	rec := serve(h, http.MethodPost, "/trips", bytes.NewBufferString(`{"startDate":"June"}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[handler.ErrorResponse](t, rec).Error.Message, "malformed request body")

	rec = serve(h, http.MethodPost, "/trips", bytes.NewBufferString(""))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "request body is required", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestCreateTrip_storeFailure_returns500(t *testing.T) {
	store := storeWith()
	store.add = func(context.Context, domain.Trip) (domain.Trip, error) {
		return domain.Trip{}, errors.New("disk full")
	}
	h := newHTTPHandler(handler.Deps{Trips: store})

	rec := serve(h, http.MethodPost, "/trips", jsonBody(t, map[string]string{"destination": "Goa"}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "internal_error", got.Error.Code)
	assert.NotContains(t, got.Error.Message, "disk full")
}

// ---- GetTrip / DeleteTrip ----------------------------------------------------

func TestGetTrip(t *testing.T) {
	trip := tripFixture()
	h := newHTTPHandler(handler.Deps{Trips: storeWith(trip)})

	rec := serve(h, http.MethodGet, "/trips/"+trip.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.Trip](t, rec)
	assert.Equal(t, trip.ID, got.ID)
	assert.Equal(t, "Goa", got.Destination)
	assert.Equal(t, 2, *got.Travelers)
}

func TestGetTrip_notFound_returns404(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Trips: storeWith()})

	rec := serve(h, http.MethodGet, "/trips/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.ErrorDetail{Code: "not_found", Message: "trip not found"}, decode[handler.ErrorResponse](t, rec).Error)
}

func TestGetTrip_badID_returns422(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Trips: storeWith()})

	rec := serve(h, http.MethodGet, "/trips/not-a-uuid", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "id must be a UUID", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestDeleteTrip_returns204(t *testing.T) {
	var deleted uuid.UUID
	store := storeWith()
	store.delete = func(_ context.Context, id uuid.UUID) error {
		deleted = id
		return nil
	}
	h := newHTTPHandler(handler.Deps{Trips: store})
	id := uuid.New()

	rec := serve(h, http.MethodDelete, "/trips/"+id.String(), nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, deleted)
}

// ---- derived views -----------------------------------------------------------

func TestGetUpcomingTrip(t *testing.T) {
	past := tripFixture()
	past.StartDate = testNow.AddDate(0, 0, -3)
	later := tripFixture()
	later.StartDate = testNow.AddDate(0, 1, 0)
	soon := tripFixture()
	soon.StartDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	h := newHTTPHandler(handler.Deps{Trips: storeWith(past, later, soon)})

	rec := serve(h, http.MethodGet, "/trips/upcoming", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.UpcomingTrip](t, rec)
	assert.Equal(t, soon.ID, got.Trip.ID)
	assert.Equal(t, soon.ID, got.Countdown.TripID)
	assert.Equal(t, "1 day", got.Countdown.Label)
}

func TestGetUpcomingTrip_none_returns404(t *testing.T) {
	past := tripFixture()
	past.StartDate = testNow.AddDate(0, 0, -1)
	h := newHTTPHandler(handler.Deps{Trips: storeWith(past)})

	rec := serve(h, http.MethodGet, "/trips/upcoming", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTripCountdown(t *testing.T) {
	trip := tripFixture()
	trip.StartDate = testNow.Add(5 * time.Hour)
	h := newHTTPHandler(handler.Deps{Trips: storeWith(trip)})

	rec := serve(h, http.MethodGet, "/trips/"+trip.ID.String()+"/countdown", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5 hours", decode[handler.Countdown](t, rec).Label)
}

func TestGetTripDays(t *testing.T) {
	trip := tripFixture()
	h := newHTTPHandler(handler.Deps{Trips: storeWith(trip)})

	rec := serve(h, http.MethodGet, "/trips/"+trip.ID.String()+"/days", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handler.TripDays{
		TripID: trip.ID,
		Days:   []string{"2025-06-01", "2025-06-02", "2025-06-03"},
	}, decode[handler.TripDays](t, rec))
}
