package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/repo"
)

// TripFinder looks up a trip by id. *TripStore satisfies it.
type TripFinder interface {
	FindByID(id uuid.UUID) (domain.Trip, error)
}

// PackingService manages each trip's packing list.
// Read-modify-write cycles are serialized so concurrent toggles on the same
// list cannot lose each other's update.
type PackingService struct {
	trips TripFinder
	repo  repo.PackingRepo
	opts  options

	mu sync.Mutex
}

// NewPackingService constructs a PackingService.
func NewPackingService(trips TripFinder, r repo.PackingRepo, opts ...Option) *PackingService {
	return &PackingService{trips: trips, repo: r, opts: newOptions(opts)}
}

// Load returns the trip's items in insertion order. An unknown trip has an
// empty list.
func (s *PackingService) Load(ctx context.Context, tripID uuid.UUID) ([]domain.PackingItem, error) {
	items, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.PackingService.Load: %w", err)
	}
	return items, nil
}

// Add appends a new, unpacked item to the trip's list.
// Returns domain.ErrValidation for a blank name and domain.ErrNotFound when
// the trip does not exist.
func (s *PackingService) Add(ctx context.Context, tripID uuid.UUID, draft domain.PackingItem) (domain.PackingItem, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.PackingItem{}, fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.PackingService.Add: %w", err)
	}
	item := domain.PackingItem{
		ID:       id,
		TripID:   tripID,
		Name:     name,
		Category: domain.ParsePackingCategory(string(draft.Category)),
	}

	err = s.mutate(ctx, tripID, func(items []domain.PackingItem) ([]domain.PackingItem, error) {
		if _, err := s.trips.FindByID(tripID); err != nil {
			return nil, err
		}
		return append(items, item), nil
	})
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.PackingService.Add: %w", err)
	}
	return item, nil
}

// TogglePacked flips the packed flag of one item and returns the result.
// Returns domain.ErrNotFound when the trip or the item does not exist.
func (s *PackingService) TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error) {
	var toggled domain.PackingItem
	err := s.mutate(ctx, tripID, func(items []domain.PackingItem) ([]domain.PackingItem, error) {
		if _, err := s.trips.FindByID(tripID); err != nil {
			return nil, err
		}
		idx := slices.IndexFunc(items, func(it domain.PackingItem) bool { return it.ID == itemID })
		if idx < 0 {
			return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
		}
		items[idx].Packed = !items[idx].Packed
		toggled = items[idx]
		return items, nil
	})
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.PackingService.TogglePacked: %w", err)
	}
	return toggled, nil
}

// Delete removes one item. Deleting an unknown item is a no-op.
func (s *PackingService) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	err := s.mutate(ctx, tripID, func(items []domain.PackingItem) ([]domain.PackingItem, error) {
		idx := slices.IndexFunc(items, func(it domain.PackingItem) bool { return it.ID == itemID })
		if idx < 0 {
			return nil, nil
		}
		return slices.Delete(items, idx, idx+1), nil
	})
	if err != nil {
		return fmt.Errorf("service.PackingService.Delete: %w", err)
	}
	return nil
}

// DeleteForTrip drops the trip's whole list. It takes the same lock as every
// write, so an Add that found the trip either lands before the drop or sees
// the trip gone.
func (s *PackingService) DeleteForTrip(ctx context.Context, tripID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteForTrip(ctx, tripID); err != nil {
		return fmt.Errorf("service.PackingService.DeleteForTrip: %w", err)
	}
	return nil
}

// mutate loads the list, applies f to a copy and saves the result, all under
// s.mu. A nil slice from f means "nothing changed": no write, no event.
func (s *PackingService) mutate(ctx context.Context, tripID uuid.UUID, f func([]domain.PackingItem) ([]domain.PackingItem, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return err
	}
	after, err := f(slices.Clone(before))
	if err != nil || after == nil {
		return err
	}
	if err := s.repo.Save(ctx, tripID, after); err != nil {
		return err
	}

	changes, err := events.PackingChanges(before, after)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "compute packing changelog", "error", err)
	}
	events.Notify(ctx, s.opts.publisher, s.opts.logger,
		events.New(events.KindPackingChanged, tripID, s.opts.clock.Now().UTC(), changes))
	return nil
}

// PackingProgress counts packed items.
type PackingProgress struct {
	Packed int
	Total  int
}

// Progress reports how many of items are packed.
func Progress(items []domain.PackingItem) PackingProgress {
	p := PackingProgress{Total: len(items)}
	for _, it := range items {
		if it.Packed {
			p.Packed++
		}
	}
	return p
}

// CategoryGroup is the items of one category, with its display label.
type CategoryGroup struct {
	Category domain.PackingCategory
	Label    string
	Items    []domain.PackingItem
}

var categoryLabels = map[domain.PackingCategory]string{
	domain.PackingClothing:    "👕 Clothing",
	domain.PackingElectronics: "📱 Electronics",
	domain.PackingToiletries:  "🧴 Toiletries",
	domain.PackingDocuments:   "📄 Documents",
	domain.PackingOther:       "📦 Other",
}

// GroupByCategory groups items in the fixed category order, skipping empty
// categories. Items keep their insertion order within a group.
func GroupByCategory(items []domain.PackingItem) []CategoryGroup {
	groups := []CategoryGroup{}
	for _, c := range domain.PackingCategories {
		var in []domain.PackingItem
		for _, it := range items {
			if it.Category == c {
				in = append(in, it)
			}
		}
		if len(in) > 0 {
			groups = append(groups, CategoryGroup{Category: c, Label: categoryLabels[c], Items: in})
		}
	}
	return groups
}
