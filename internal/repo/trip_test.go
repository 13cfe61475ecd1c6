package repo_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/kv"
	"github.com/pkordes/tripplanner/internal/repo"
)

// stubStore is a hand-written kv.Store double. Unset fields panic, so a test
// documents exactly which calls it expects.
type stubStore struct {
	get func(ctx context.Context, key string) ([]byte, error)
	set func(ctx context.Context, key string, value []byte) error
	del func(ctx context.Context, key string) error
}

func (s *stubStore) Get(ctx context.Context, key string) ([]byte, error) { return s.get(ctx, key) }
func (s *stubStore) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, key, value)
}
func (s *stubStore) Delete(ctx context.Context, key string) error { return s.del(ctx, key) }

var _ kv.Store = (*stubStore)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// tripFixture returns a fully populated trip for round-trip tests.
func tripFixture() domain.Trip {
	budget := 1500.5
	travelers := 2
	return domain.Trip{
		ID:            uuid.MustParse("0190a0a0-0000-7000-8000-000000000001"),
		Title:         "Monsoon Escape",
		Destination:   "Goa",
		StartDate:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		Budget:        &budget,
		Travelers:     &travelers,
		Accommodation: domain.AccommodationResort,
		Description:   "Beach week",
		Notes:         "Carry an umbrella",
		CreatedAt:     time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC),
	}
}

func TestTripRepo_LoadAll_AbsentKey(t *testing.T) {
	r := repo.NewTripRepo(kv.NewMemory(), discardLogger())

	got, err := r.LoadAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r := repo.NewTripRepo(kv.NewMemory(), discardLogger())

	second := tripFixture()
	second.ID = uuid.MustParse("0190a0a0-0000-7000-8000-000000000002")
	second.Title = "Hill Station"
	second.Budget = nil
	second.Travelers = nil
	second.Accommodation = ""

	want := []domain.Trip{tripFixture(), second}
	require.NoError(t, r.SaveAll(ctx, want))

	got, err := r.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.True(t, want[i].StartDate.Equal(got[i].StartDate), "StartDate mismatch")
		assert.True(t, want[i].EndDate.Equal(got[i].EndDate), "EndDate mismatch")
		assert.Equal(t, want[i].Budget, got[i].Budget)
		assert.Equal(t, want[i].Travelers, got[i].Travelers)
		assert.Equal(t, want[i].Accommodation, got[i].Accommodation)
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "CreatedAt mismatch")
	}
}

func TestTripRepo_SaveAll_WireFormat(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	r := repo.NewTripRepo(store, discardLogger())

	require.NoError(t, r.SaveAll(ctx, []domain.Trip{tripFixture()}))

	raw, err := store.Get(ctx, repo.TripsKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"startDate":"2024-07-01"`)
	assert.Contains(t, string(raw), `"endDate":"2024-07-05"`)
	assert.Contains(t, string(raw), `"accommodation":"resort"`)
	assert.Contains(t, string(raw), `"createdAt":"2024-05-10T08:30:00Z"`)
}

func TestTripRepo_SaveAll_EmptyWritesArray(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	r := repo.NewTripRepo(store, discardLogger())

	require.NoError(t, r.SaveAll(ctx, nil))

	raw, err := store.Get(ctx, repo.TripsKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestTripRepo_LoadAll_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, repo.TripsKey, []byte(`{not json`)))

	var logs bytes.Buffer
	r := repo.NewTripRepo(store, slog.New(slog.NewJSONHandler(&logs, nil)))

	got, err := r.LoadAll(ctx)

	require.NoError(t, err, "corruption must not reach the caller")
	assert.Empty(t, got)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "storage corruption")
}

func TestTripRepo_LoadAll_NullPayload(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, repo.TripsKey, []byte(`null`)))
	r := repo.NewTripRepo(store, discardLogger())

	got, err := r.LoadAll(ctx)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripRepo_LoadAll_StoreError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := repo.NewTripRepo(&stubStore{
		get: func(context.Context, string) ([]byte, error) { return nil, boom },
	}, discardLogger())

	_, err := r.LoadAll(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "repo.TripRepo.LoadAll")
}

func TestTripRepo_SaveAll_StoreError(t *testing.T) {
	boom := errors.New("quota exceeded")
	r := repo.NewTripRepo(&stubStore{
		set: func(context.Context, string, []byte) error { return boom },
	}, discardLogger())

	err := r.SaveAll(context.Background(), []domain.Trip{tripFixture()})

	assert.ErrorIs(t, err, boom)
}
