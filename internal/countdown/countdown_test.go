package countdown_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/countdown"
)

// recorder collects emitted values on a channel so the test can wait for them.
type recorder struct {
	ch chan time.Time
}

func newRecorder() *recorder { return &recorder{ch: make(chan time.Time, 16)} }

func (r *recorder) emit(v time.Time) error {
	r.ch <- v
	return nil
}

func (r *recorder) next(t *testing.T) time.Time {
	t.Helper()
	select {
	case v := <-r.ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an emitted value")
		return time.Time{}
	}
}

func identity(now time.Time) time.Time { return now }

func TestWatch_EmitsImmediatelyAndOnEveryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	rec := newRecorder()

	done := make(chan error, 1)
	go func() {
		done <- countdown.Watch(ctx, clock, time.Minute, identity, rec.emit, nil)
	}()

	assert.Equal(t, start, rec.next(t))

	for i := 1; i <= 3; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(time.Minute)
		assert.Equal(t, start.Add(time.Duration(i)*time.Minute), rec.next(t))
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_Refresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	refresh := make(chan struct{})

	go func() {
		_ = countdown.Watch(ctx, clock, time.Minute, identity, rec.emit, refresh)
	}()
	rec.next(t)

	refresh <- struct{}{}
	assert.Equal(t, clock.Now(), rec.next(t), "refresh recomputes without waiting for a tick")
}

func TestWatch_StopsTickerOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := clockwork.NewFakeClock()
	rec := newRecorder()

	done := make(chan error, 1)
	go func() {
		done <- countdown.Watch(ctx, clock, time.Minute, identity, rec.emit, nil)
	}()
	rec.next(t)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	cancel()
	<-done

	// With the ticker released there is nothing left to fire.
	clock.Advance(time.Hour)
	select {
	case v := <-rec.ch:
		t.Fatalf("unexpected emission after cancel: %v", v)
	default:
	}
}

func TestWatch_EmitErrorStops(t *testing.T) {
	boom := errors.New("client went away")
	clock := clockwork.NewFakeClock()

	err := countdown.Watch(context.Background(), clock, time.Minute, identity,
		func(time.Time) error { return boom }, nil)

	assert.ErrorIs(t, err, boom)
}

func TestWatch_DefaultInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	rec := newRecorder()

	go func() {
		_ = countdown.Watch(ctx, clock, 0, identity, rec.emit, nil)
	}()
	rec.next(t)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(countdown.DefaultInterval)
	assert.Equal(t, start.Add(countdown.DefaultInterval), rec.next(t))
}
