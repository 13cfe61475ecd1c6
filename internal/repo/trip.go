package repo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/kv"
)

// TripRepo defines the persistence operations for the trip collection.
// The trip store depends on this interface, not on the KV implementation,
// which allows the store to be unit-tested with a mock.
type TripRepo interface {
	// LoadAll returns every persisted trip in insertion order.
	// A missing or unreadable collection yields an empty slice and no error.
	LoadAll(ctx context.Context) ([]domain.Trip, error)

	// SaveAll replaces the persisted collection with trips.
	SaveAll(ctx context.Context, trips []domain.Trip) error
}

// tripRecord is the JSON shape stored under TripsKey.
type tripRecord struct {
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

type kvTripRepo struct {
	snap snapshot[tripRecord]
}

// NewTripRepo constructs a TripRepo backed by store. A nil logger falls back
// to slog.Default.
func NewTripRepo(store kv.Store, logger *slog.Logger) TripRepo {
	return &kvTripRepo{snap: newSnapshot[tripRecord](store, logger)}
}

func (r *kvTripRepo) LoadAll(ctx context.Context) ([]domain.Trip, error) {
	recs, err := r.snap.load(ctx, TripsKey)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.LoadAll: %w", err)
	}
	trips := make([]domain.Trip, 0, len(recs))
	for _, rec := range recs {
		trips = append(trips, tripFromRecord(rec))
	}
	return trips, nil
}

func (r *kvTripRepo) SaveAll(ctx context.Context, trips []domain.Trip) error {
	recs := make([]tripRecord, 0, len(trips))
	for _, t := range trips {
		recs = append(recs, tripToRecord(t))
	}
	if err := r.snap.save(ctx, TripsKey, recs); err != nil {
		return fmt.Errorf("repo.TripRepo.SaveAll: %w", err)
	}
	return nil
}

func tripToRecord(t domain.Trip) tripRecord {
	return tripRecord{
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

func tripFromRecord(rec tripRecord) domain.Trip {
	return domain.Trip{
		ID:            rec.ID,
		Title:         rec.Title,
		Destination:   rec.Destination,
		StartDate:     domain.Date(rec.StartDate.Time),
		EndDate:       domain.Date(rec.EndDate.Time),
		Budget:        rec.Budget,
		Travelers:     rec.Travelers,
		Accommodation: domain.ParseAccommodation(rec.Accommodation),
		Description:   rec.Description,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
	}
}
