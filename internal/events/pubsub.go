package events

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// Message attributes set on every published event, usable in subscription filters.
const (
	AttrTripID = "tripId"
	AttrKind   = "kind"
)

// PubSubPublisher publishes events to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	owned  bool
}

// NewPubSubPublisher publishes through client to topicID, creating the
// topic when it does not exist yet.
func NewPubSubPublisher(ctx context.Context, client *pubsub.Client, topicID string) (*PubSubPublisher, error) {
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("events.NewPubSubPublisher: check topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("events.NewPubSubPublisher: create topic %s: %w", topicID, err)
		}
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

// DialPubSub creates a client for projectID and a publisher on topicID.
// Close releases both.
func DialPubSub(ctx context.Context, projectID, topicID string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("events.DialPubSub: %w", err)
	}
	p, err := NewPubSubPublisher(ctx, client, topicID)
	if err != nil {
		client.Close()
		return nil, err
	}
	p.owned = true
	return p, nil
}

// Publish waits for the server to acknowledge the message.
func (p *PubSubPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events.PubSubPublisher.Publish: marshal: %w", err)
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			AttrTripID: e.TripID.String(),
			AttrKind:   string(e.Kind),
		},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("events.PubSubPublisher.Publish: topic %s: %w", p.topic.ID(), err)
	}
	return nil
}

// Close flushes pending messages and closes the client if DialPubSub created it.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	if p.owned {
		return p.client.Close()
	}
	return nil
}
