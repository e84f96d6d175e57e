package repository

import (
	"context"
	"fmt"
	"time"

	"trading_hub/internal/realtime/domain"

	"github.com/goccy/go-json"
	"github.com/streadway/amqp"
)

// RabbitMirror definition rabbitmq topic exchange mirror
type RabbitMirror struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewRabbitMirror declare the topic exchange and create RabbitMirror
func NewRabbitMirror(conn *amqp.Connection, ch *amqp.Channel, exchange string) (*RabbitMirror, error) {
	if exchange == "" {
		exchange = "realtime.events"
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitMirror{conn: conn, ch: ch, exchange: exchange}, nil
}

// RoutingKey <scope>.<action>, e.g. room.newMessage
func RoutingKey(evt domain.MirroredEvent) string {
	return string(evt.Scope) + "." + string(evt.Event.Action)
}

// Publish the event, amqp publish does not take a context
func (r *RabbitMirror) Publish(_ context.Context, evt domain.MirroredEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return r.ch.Publish(r.exchange, RoutingKey(evt), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.UnixMilli(evt.EmittedAt),
		Body:        data,
	})
}

// Close channel then connection
func (r *RabbitMirror) Close() error {
	if err := r.ch.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
