package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pkordes/tripplanner/internal/events"
)

// newFakePubSub starts an in-process Pub/Sub server and a client connected to it.
func newFakePubSub(t *testing.T) (*pstest.Server, *pubsub.Client) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(context.Background(), "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return srv, client
}

func TestPubSubPublisher_CreatesTopicAndPublishes(t *testing.T) {
	ctx := context.Background()
	srv, client := newFakePubSub(t)

	p, err := events.NewPubSubPublisher(ctx, client, "trip-events")
	require.NoError(t, err)
	defer p.Close()

	e := sampleEvent(events.KindTripCreated)
	require.NoError(t, p.Publish(ctx, e))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, e.TripID.String(), msgs[0].Attributes[events.AttrTripID])
	assert.Equal(t, "trip.created", msgs[0].Attributes[events.AttrKind])

	var got events.Event
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, e.ID, got.ID)
}

func TestPubSubPublisher_ReusesExistingTopic(t *testing.T) {
	ctx := context.Background()
	_, client := newFakePubSub(t)

	_, err := client.CreateTopic(ctx, "trip-events")
	require.NoError(t, err)

	p, err := events.NewPubSubPublisher(ctx, client, "trip-events")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
