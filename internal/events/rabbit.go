package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange every change event is published to.
const Exchange = "trip_events"

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes events to a RabbitMQ topic exchange, routed by Kind.
type RabbitPublisher struct {
	ch   amqpChannel
	conn *amqp.Connection
}

// NewRabbitPublisher publishes over an already-open channel. The exchange
// must exist.
func NewRabbitPublisher(ch amqpChannel) *RabbitPublisher {
	return &RabbitPublisher{ch: ch}
}

// DialRabbit connects to url, opens a channel and declares the exchange.
func DialRabbit(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events.DialRabbit: connect: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events.DialRabbit: open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events.DialRabbit: declare exchange: %w", err)
	}
	return &RabbitPublisher{ch: ch, conn: conn}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events.RabbitPublisher.Publish: marshal: %w", err)
	}
	err = p.ch.PublishWithContext(ctx,
		Exchange,       // exchange
		string(e.Kind), // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   e.ID.String(),
			Timestamp:   e.At,
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("events.RabbitPublisher.Publish: %w", err)
	}
	return nil
}

// Close closes the channel and, when DialRabbit opened it, the connection.
func (p *RabbitPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
