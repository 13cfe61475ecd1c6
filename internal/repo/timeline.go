package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/kv"
)

// TimelineRepo persists one event list per trip under TimelineKey.
type TimelineRepo interface {
	TripScoped

	Load(ctx context.Context, tripID uuid.UUID) ([]domain.TimelineEvent, error)
	Save(ctx context.Context, tripID uuid.UUID, events []domain.TimelineEvent) error
}

type timelineRecord struct {
	ID          uuid.UUID `json:"id"`
	Day         int       `json:"day"`
	Time        string    `json:"time"`
	Title       string    `json:"title"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

type kvTimelineRepo struct {
	store kv.Store
	snap  snapshot[timelineRecord]
}

// NewTimelineRepo constructs a TimelineRepo backed by store.
func NewTimelineRepo(store kv.Store, logger *slog.Logger) TimelineRepo {
	return &kvTimelineRepo{store: store, snap: newSnapshot[timelineRecord](store, logger)}
}

func (r *kvTimelineRepo) Load(ctx context.Context, tripID uuid.UUID) ([]domain.TimelineEvent, error) {
	recs, err := r.snap.load(ctx, TimelineKey(tripID))
	if err != nil {
		return nil, fmt.Errorf("repo.TimelineRepo.Load: %w", err)
	}
	events := make([]domain.TimelineEvent, 0, len(recs))
	for _, rec := range recs {
		events = append(events, domain.TimelineEvent{
			ID:          rec.ID,
			TripID:      tripID,
			Day:         rec.Day,
			Time:        rec.Time,
			Title:       rec.Title,
			Location:    rec.Location,
			Description: rec.Description,
		})
	}
	return events, nil
}

func (r *kvTimelineRepo) Save(ctx context.Context, tripID uuid.UUID, events []domain.TimelineEvent) error {
	recs := make([]timelineRecord, 0, len(events))
	for _, e := range events {
		recs = append(recs, timelineRecord{
			ID:          e.ID,
			Day:         e.Day,
			Time:        e.Time,
			Title:       e.Title,
			Location:    e.Location,
			Description: e.Description,
		})
	}
	if err := r.snap.save(ctx, TimelineKey(tripID), recs); err != nil {
		return fmt.Errorf("repo.TimelineRepo.Save: %w", err)
	}
	return nil
}

func (r *kvTimelineRepo) DeleteForTrip(ctx context.Context, tripID uuid.UUID) error {
	if err := r.store.Delete(ctx, TimelineKey(tripID)); err != nil {
		return fmt.Errorf("repo.TimelineRepo.DeleteForTrip: %w", err)
	}
	return nil
}
