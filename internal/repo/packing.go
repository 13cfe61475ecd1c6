package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/kv"
)

// PackingRepo persists one packing list per trip under PackingKey.
type PackingRepo interface {
	TripScoped

	// Load returns the trip's items in insertion order.
	Load(ctx context.Context, tripID uuid.UUID) ([]domain.PackingItem, error)

	// Save replaces the trip's packing list with items.
	Save(ctx context.Context, tripID uuid.UUID, items []domain.PackingItem) error
}

// packingRecord is the JSON shape of one item. The owning trip is implied
// by the key and not repeated in the record.
type packingRecord struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Packed   bool      `json:"packed"`
}

type kvPackingRepo struct {
	store kv.Store
	snap  snapshot[packingRecord]
}

// NewPackingRepo constructs a PackingRepo backed by store.
func NewPackingRepo(store kv.Store, logger *slog.Logger) PackingRepo {
	return &kvPackingRepo{store: store, snap: newSnapshot[packingRecord](store, logger)}
}

func (r *kvPackingRepo) Load(ctx context.Context, tripID uuid.UUID) ([]domain.PackingItem, error) {
	recs, err := r.snap.load(ctx, PackingKey(tripID))
	if err != nil {
		return nil, fmt.Errorf("repo.PackingRepo.Load: %w", err)
	}
	items := make([]domain.PackingItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, domain.PackingItem{
			ID:       rec.ID,
			TripID:   tripID,
			Name:     rec.Name,
			Category: domain.ParsePackingCategory(rec.Category),
			Packed:   rec.Packed,
		})
	}
	return items, nil
}

func (r *kvPackingRepo) Save(ctx context.Context, tripID uuid.UUID, items []domain.PackingItem) error {
	recs := make([]packingRecord, 0, len(items))
	for _, it := range items {
		recs = append(recs, packingRecord{
			ID:       it.ID,
			Name:     it.Name,
			Category: string(it.Category),
			Packed:   it.Packed,
		})
	}
	if err := r.snap.save(ctx, PackingKey(tripID), recs); err != nil {
		return fmt.Errorf("repo.PackingRepo.Save: %w", err)
	}
	return nil
}

// DeleteForTrip drops the whole packing list of tripID.
func (r *kvPackingRepo) DeleteForTrip(ctx context.Context, tripID uuid.UUID) error {
	if err := r.store.Delete(ctx, PackingKey(tripID)); err != nil {
		return fmt.Errorf("repo.PackingRepo.DeleteForTrip: %w", err)
	}
	return nil
}
