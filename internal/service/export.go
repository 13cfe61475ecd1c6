package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
)

// TripLister returns the current trips. *TripStore satisfies it.
type TripLister interface {
	List() []domain.Trip
}

// PackingLoader returns one trip's packing list. *PackingService satisfies it.
type PackingLoader interface {
	Load(ctx context.Context, tripID uuid.UUID) ([]domain.PackingItem, error)
}

// ExportService assembles a flat export of every trip and its packing list.
type ExportService struct {
	trips   TripLister
	packing PackingLoader
}

// NewExportService constructs an ExportService.
func NewExportService(trips TripLister, packing PackingLoader) *ExportService {
	return &ExportService{trips: trips, packing: packing}
}

// Export returns one ExportRow per packing item across all trips, in trip
// insertion order. A trip with no items contributes one row with empty item
// fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}
	for _, t := range s.trips.List() {
		items, err := s.packing.Load(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}

		base := domain.ExportRow{
			TripID:        t.ID.String(),
			TripTitle:     t.Title,
			Destination:   t.Destination,
			TripStartDate: t.StartDate.Format(time.DateOnly),
			TripEndDate:   t.EndDate.Format(time.DateOnly),
			Accommodation: string(t.Accommodation),
		}
		if len(items) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, it := range items {
			row := base
			row.ItemName = it.Name
			row.ItemCategory = string(it.Category)
			row.ItemPacked = it.Packed
			rows = append(rows, row)
		}
	}
	return rows, nil
}
