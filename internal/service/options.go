package service

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/repo"
)

// options holds the collaborators shared by every service. Zero values are
// replaced with working defaults by newOptions.
type options struct {
	publisher events.Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	cascade   []repo.TripScoped
}

// Option configures a service.
type Option func(*options)

// WithPublisher sends a change event after every committed mutation.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger used for recoverable failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCascade registers per-trip collections to drop when a trip is deleted.
// Only TripStore uses it. See TripStore.CascadeTo.
func WithCascade(scoped ...repo.TripScoped) Option {
	return func(o *options) { o.cascade = append(o.cascade, scoped...) }
}

func newOptions(opts []Option) options {
	o := options{
		publisher: events.Nop{},
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
