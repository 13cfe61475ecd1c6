// Package countdown drives a live countdown: it recomputes a value on a fixed
// interval and on demand, for as long as an observer is attached.
package countdown

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is how often a live countdown is recomputed.
const DefaultInterval = 60 * time.Second

// Watch calls compute and passes the result to emit once immediately, then
// after every interval tick and every value received on refresh. A nil
// refresh channel disables on-demand recomputation.
//
// Watch blocks until ctx is done or emit returns an error. The ticker is
// stopped before Watch returns, so no timer outlives the observer.
func Watch[T any](
	ctx context.Context,
	clock clockwork.Clock,
	interval time.Duration,
	compute func(now time.Time) T,
	emit func(T) error,
	refresh <-chan struct{},
) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if err := emit(compute(clock.Now())); err != nil {
		return err
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		case _, ok := <-refresh:
			if !ok {
				refresh = nil
				continue
			}
		}
		if err := emit(compute(clock.Now())); err != nil {
			return err
		}
	}
}
