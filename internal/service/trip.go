// Package service contains the business logic of the trip planner.
// Services validate input, assign identifiers and timestamps, and keep the
// in-memory state and the durable store in step. No storage encoding lives
// here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/repo"
)

// TripStore is the single source of truth for the trip collection.
//
// The collection is held in memory and written through to the repo in full on
// every mutation. A mutation becomes visible only after the write succeeded,
// so a reader sees either the state before a mutation or the state after it.
type TripStore struct {
	repo repo.TripRepo
	opts options

	mu      sync.RWMutex
	trips   []domain.Trip
	cascade []repo.TripScoped
}

// NewTripStore constructs an empty TripStore. Call Load before serving reads.
func NewTripStore(r repo.TripRepo, opts ...Option) *TripStore {
	o := newOptions(opts)
	return &TripStore{repo: r, opts: o, trips: []domain.Trip{}, cascade: o.cascade}
}

// CascadeTo registers per-trip collections to drop when a trip is deleted.
// Services that check the trip and write under their own lock should be
// registered themselves rather than their repos, so a delete waits for an
// in-flight write and never leaves it behind.
func (s *TripStore) CascadeTo(scoped ...repo.TripScoped) {
	s.mu.Lock()
	s.cascade = append(s.cascade, scoped...)
	s.mu.Unlock()
}

// Load replaces the in-memory collection with the persisted one.
func (s *TripStore) Load(ctx context.Context) error {
	trips, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("service.TripStore.Load: %w", err)
	}
	s.mu.Lock()
	s.trips = trips
	s.mu.Unlock()
	return nil
}

// List returns a copy of the trips in insertion order.
func (s *TripStore) List() []domain.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.trips)
}

// FindByID returns the trip with the given id or domain.ErrNotFound.
func (s *TripStore) FindByID(id uuid.UUID) (domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("service.TripStore.FindByID: trip %s: %w", id, domain.ErrNotFound)
}

// Now reports the store clock's current time.
func (s *TripStore) Now() time.Time { return s.opts.clock.Now() }

// Add validates draft, assigns its ID and CreatedAt, and appends it.
// Returns domain.ErrValidation when destination or either date is missing.
// If the write fails the collection is left unchanged.
func (s *TripStore) Add(ctx context.Context, draft domain.Trip) (domain.Trip, error) {
	trip, err := normalizeTrip(draft)
	if err != nil {
		return domain.Trip{}, err
	}

	s.mu.Lock()
	trip.ID, err = s.freshID()
	if err != nil {
		s.mu.Unlock()
		return domain.Trip{}, fmt.Errorf("service.TripStore.Add: %w", err)
	}
	trip.CreatedAt = s.opts.clock.Now().UTC()

	before := s.trips
	after := append(slices.Clone(before), trip)
	if err := s.repo.SaveAll(ctx, after); err != nil {
		s.mu.Unlock()
		return domain.Trip{}, fmt.Errorf("service.TripStore.Add: %w", err)
	}
	s.trips = after
	s.mu.Unlock()

	s.notify(ctx, events.KindTripCreated, trip.ID, before, after)
	return trip, nil
}

// Delete removes the trip with the given id and drops its packing list and
// timeline. Deleting an unknown id is a no-op.
func (s *TripStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.trips, func(t domain.Trip) bool { return t.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	before := s.trips
	after := slices.Delete(slices.Clone(before), idx, idx+1)
	if err := s.repo.SaveAll(ctx, after); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("service.TripStore.Delete: %w", err)
	}
	s.trips = after
	cascade := slices.Clone(s.cascade)
	s.mu.Unlock()

	// The trip is gone from the collection, so the cascade must finish even
	// if the caller goes away.
	cascadeCtx := context.WithoutCancel(ctx)
	for _, scoped := range cascade {
		if err := scoped.DeleteForTrip(cascadeCtx, id); err != nil {
			s.opts.logger.ErrorContext(ctx, "cascade delete failed", "trip_id", id, "error", err)
		}
	}

	s.notify(ctx, events.KindTripDeleted, id, before, after)
	return nil
}

// freshID returns a v7 UUID not used by any trip. Caller holds s.mu.
func (s *TripStore) freshID() (uuid.UUID, error) {
	for {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.Nil, err
		}
		if !slices.ContainsFunc(s.trips, func(t domain.Trip) bool { return t.ID == id }) {
			return id, nil
		}
	}
}

func (s *TripStore) notify(ctx context.Context, kind events.Kind, tripID uuid.UUID, before, after []domain.Trip) {
	changes, err := events.TripChanges(before, after)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "compute trip changelog", "error", err)
	}
	events.Notify(ctx, s.opts.publisher, s.opts.logger,
		events.New(kind, tripID, s.opts.clock.Now().UTC(), changes))
}

// normalizeTrip checks required fields and clamps the optional numbers.
func normalizeTrip(t domain.Trip) (domain.Trip, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Destination = strings.TrimSpace(t.Destination)
	if t.Destination == "" {
		return domain.Trip{}, fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if t.StartDate.IsZero() {
		return domain.Trip{}, fmt.Errorf("%w: start date is required", domain.ErrValidation)
	}
	if t.EndDate.IsZero() {
		return domain.Trip{}, fmt.Errorf("%w: end date is required", domain.ErrValidation)
	}
	t.StartDate = domain.Date(t.StartDate)
	t.EndDate = domain.Date(t.EndDate)

	if t.Budget != nil {
		b := domain.ClampAmount(*t.Budget)
		t.Budget = &b
	}
	if t.Travelers != nil {
		n := max(*t.Travelers, 1)
		t.Travelers = &n
	}
	t.Accommodation = domain.ParseAccommodation(string(t.Accommodation))
	return t, nil
}
