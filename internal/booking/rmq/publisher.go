package rmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaikfardeenhussain/fixroute/internal/booking/model"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/common/mq"
)

// Publisher fans booking lifecycle events out on a topic exchange, routed
// by event type (booking.created, booking.accepted, bill.sent, ...).
type Publisher struct {
	channel  *amqp.Channel
	exchange string
	log      logger.Logger
}

type BookingEvent struct {
	Type         model.BookingEventType `json:"type"`
	BookingID    string                 `json:"booking_id"`
	UserID       string                 `json:"user_id"`
	ServicemanID string                 `json:"serviceman_id"`
	Status       model.BookingStatus    `json:"status"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

func NewPublisher(rabbit *mq.RabbitMQ, exchange string, log logger.Logger) (*Publisher, error) {
	if err := rabbit.Channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{channel: rabbit.Channel, exchange: exchange, log: log}, nil
}

// Publish sends the event, routing key = event type. Event fanout is
// observability, not state: errors are logged and swallowed so a broker
// hiccup never fails the booking operation that emitted the event.
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Errorf("failed to marshal booking event: %v", err)
		return
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.log.Errorf("failed to publish %s for booking %s: %v", event.Type, event.BookingID, err)
		return
	}

	p.log.Debugw("booking event published", map[string]any{
		"type":       event.Type,
		"booking_id": event.BookingID,
	})
}
