// Package events carries change notifications out of the trip store: to live
// WebSocket viewers through the in-process Broker, and optionally to RabbitMQ
// or Google Cloud Pub/Sub for other consumers.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/r3labs/diff/v3"
)

// Kind names what changed. It doubles as the broker routing key.
type Kind string

const (
	KindTripCreated     Kind = "trip.created"
	KindTripDeleted     Kind = "trip.deleted"
	KindPackingChanged  Kind = "packing.changed"
	KindTimelineChanged Kind = "timeline.changed"
)

// Event is one committed change to a trip or one of its sub-collections.
type Event struct {
	ID      uuid.UUID      `json:"id"`
	Kind    Kind           `json:"kind"`
	TripID  uuid.UUID      `json:"tripId"`
	At      time.Time      `json:"at"`
	Changes diff.Changelog `json:"changes,omitempty"`
}

// New stamps an event with a fresh time-ordered id.
func New(kind Kind, tripID uuid.UUID, at time.Time, changes diff.Changelog) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{ID: id, Kind: kind, TripID: tripID, At: at, Changes: changes}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher. All publishers are attempted;
// their errors are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notify publishes e and logs a failure instead of returning it. A committed
// change must not be reported as failed because a notification was lost.
func Notify(ctx context.Context, p Publisher, logger *slog.Logger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "publish change event",
			"kind", e.Kind,
			"trip_id", e.TripID,
			"error", err,
		)
	}
}
