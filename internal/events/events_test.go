package events_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/tripplanner/internal/events"
)

// mockPublisher is a hand-written test double for events.Publisher.
type mockPublisher struct {
	publish func(ctx context.Context, e events.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.publish(ctx, e)
}

var _ events.Publisher = (*mockPublisher)(nil)

func sampleEvent(kind events.Kind) events.Event {
	return events.New(kind, uuid.MustParse("0190a0a0-0000-7000-8000-000000000001"),
		time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC), nil)
}

func TestNew_AssignsUniqueIDs(t *testing.T) {
	a := sampleEvent(events.KindTripCreated)
	b := sampleEvent(events.KindTripCreated)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, events.KindTripCreated, a.Kind)
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	errA := errors.New("a down")
	var calls int
	ok := &mockPublisher{publish: func(context.Context, events.Event) error { calls++; return nil }}
	bad := &mockPublisher{publish: func(context.Context, events.Event) error { calls++; return errA }}

	err := events.Multi{bad, ok}.Publish(context.Background(), sampleEvent(events.KindTripDeleted))

	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 2, calls, "a failing publisher must not stop the others")
}

func TestNop(t *testing.T) {
	assert.NoError(t, events.Nop{}.Publish(context.Background(), sampleEvent(events.KindTripCreated)))
}

func TestNotify_LogsFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	p := &mockPublisher{publish: func(context.Context, events.Event) error { return errors.New("broker unreachable") }}

	events.Notify(context.Background(), p, logger, sampleEvent(events.KindPackingChanged))

	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "broker unreachable")
	assert.Contains(t, logs.String(), `"kind":"packing.changed"`)
}

func TestNotify_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		events.Notify(context.Background(), nil, slog.Default(), sampleEvent(events.KindTripCreated))
	})
}
