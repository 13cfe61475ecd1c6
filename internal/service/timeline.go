package service

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/repo"
)

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// TimelineService manages the day-by-day events of each trip.
type TimelineService struct {
	trips TripFinder
	repo  repo.TimelineRepo
	opts  options

	mu sync.Mutex
}

// NewTimelineService constructs a TimelineService.
func NewTimelineService(trips TripFinder, r repo.TimelineRepo, opts ...Option) *TimelineService {
	return &TimelineService{trips: trips, repo: r, opts: newOptions(opts)}
}

// Load returns the trip's events in insertion order.
func (s *TimelineService) Load(ctx context.Context, tripID uuid.UUID) ([]domain.TimelineEvent, error) {
	evs, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TimelineService.Load: %w", err)
	}
	return evs, nil
}

// Add schedules an event on one day of the trip.
// Day, time and title are required; the day must fall within the trip.
func (s *TimelineService) Add(ctx context.Context, tripID uuid.UUID, draft domain.TimelineEvent) (domain.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Checked under s.mu so a concurrent trip delete cannot run its cascade
	// between the check and the save.
	trip, err := s.trips.FindByID(tripID)
	if err != nil {
		return domain.TimelineEvent{}, fmt.Errorf("service.TimelineService.Add: %w", err)
	}
	ev, err := validateEvent(draft, tripDays(trip))
	if err != nil {
		return domain.TimelineEvent{}, err
	}
	ev.ID, err = uuid.NewV7()
	if err != nil {
		return domain.TimelineEvent{}, fmt.Errorf("service.TimelineService.Add: %w", err)
	}
	ev.TripID = tripID

	before, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return domain.TimelineEvent{}, fmt.Errorf("service.TimelineService.Add: %w", err)
	}
	after := append(slices.Clone(before), ev)
	if err := s.repo.Save(ctx, tripID, after); err != nil {
		return domain.TimelineEvent{}, fmt.Errorf("service.TimelineService.Add: %w", err)
	}
	s.notify(ctx, tripID, before, after)
	return ev, nil
}

// DeleteForTrip drops the trip's whole timeline under the write lock.
func (s *TimelineService) DeleteForTrip(ctx context.Context, tripID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteForTrip(ctx, tripID); err != nil {
		return fmt.Errorf("service.TimelineService.DeleteForTrip: %w", err)
	}
	return nil
}

// Delete removes one event. Deleting an unknown event is a no-op.
func (s *TimelineService) Delete(ctx context.Context, tripID, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.repo.Load(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TimelineService.Delete: %w", err)
	}
	idx := slices.IndexFunc(before, func(e domain.TimelineEvent) bool { return e.ID == eventID })
	if idx < 0 {
		return nil
	}
	after := slices.Delete(slices.Clone(before), idx, idx+1)
	if err := s.repo.Save(ctx, tripID, after); err != nil {
		return fmt.Errorf("service.TimelineService.Delete: %w", err)
	}
	s.notify(ctx, tripID, before, after)
	return nil
}

func (s *TimelineService) notify(ctx context.Context, tripID uuid.UUID, before, after []domain.TimelineEvent) {
	changes, err := events.TimelineChanges(before, after)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "compute timeline changelog", "error", err)
	}
	events.Notify(ctx, s.opts.publisher, s.opts.logger,
		events.New(events.KindTimelineChanged, tripID, s.opts.clock.Now().UTC(), changes))
}

// tripDays is the number of calendar days the trip spans, or 0 for an
// inverted range.
func tripDays(t domain.Trip) int {
	start, end := domain.Date(t.StartDate), domain.Date(t.EndDate)
	if end.Before(start) {
		return 0
	}
	return int((end.Unix()-start.Unix())/86400) + 1
}

func validateEvent(e domain.TimelineEvent, days int) (domain.TimelineEvent, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Time = strings.TrimSpace(e.Time)
	e.Location = strings.TrimSpace(e.Location)
	if e.Title == "" {
		return e, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !clockTime.MatchString(e.Time) {
		return e, fmt.Errorf("%w: time must be HH:MM", domain.ErrValidation)
	}
	if e.Day < 1 || e.Day > days {
		return e, fmt.Errorf("%w: day must be between 1 and %d", domain.ErrValidation, days)
	}
	return e, nil
}
