// Package repo maps trip-planner collections onto the durable key-value store.
// Each collection is one JSON array under a fixed key, rewritten in full on
// every save. No business logic lives here, only keys and record mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/kv"
)

// Storage keys. The formats are part of the on-disk contract and must not change.
const (
	TripsKey = "trips"
)

// PackingKey is the storage key for one trip's packing list.
func PackingKey(tripID uuid.UUID) string { return "packing-list-" + tripID.String() }

// TimelineKey is the storage key for one trip's timeline events.
func TimelineKey(tripID uuid.UUID) string { return "timeline-" + tripID.String() }

// TripScoped is implemented by repos whose data lives under a per-trip key.
// The trip store uses it to cascade a trip deletion.
type TripScoped interface {
	DeleteForTrip(ctx context.Context, tripID uuid.UUID) error
}

// snapshot reads and writes a JSON array of records of type R under one key.
type snapshot[R any] struct {
	store  kv.Store
	logger *slog.Logger
}

// load returns the stored records. An absent key is an empty collection. A
// payload that fails to parse is logged and also treated as empty, so a
// corrupt entry never prevents the application from starting.
func (s snapshot[R]) load(ctx context.Context, key string) ([]R, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []R{}, nil
		}
		return nil, err
	}

	var recs []R
	if err := json.Unmarshal(raw, &recs); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable collection",
			"key", key,
			"error", fmt.Errorf("%w: %v", domain.ErrStorageCorruption, err),
		)
		return []R{}, nil
	}
	if recs == nil {
		recs = []R{}
	}
	return recs, nil
}

func (s snapshot[R]) save(ctx context.Context, key string, recs []R) error {
	if recs == nil {
		recs = []R{}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, raw)
}

func newSnapshot[R any](store kv.Store, logger *slog.Logger) snapshot[R] {
	if logger == nil {
		logger = slog.Default()
	}
	return snapshot[R]{store: store, logger: logger}
}
