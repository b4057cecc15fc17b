// Package notify publishes booking messages to RabbitMQ for downstream
// consumers (confirmation mails, analytics). Publishing is best effort.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devevent/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const BookingCreatedQueue string = "booking.created"

type BookingCreatedMessage struct {
	BookingId string    `json:"bookingId"`
	EventId   string    `json:"eventId"`
	Slug      string    `json:"slug,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewBookingCreatedMessage(booking model.Booking, slug string) BookingCreatedMessage {
	return BookingCreatedMessage{
		BookingId: booking.Id.Hex(),
		EventId:   booking.EventId.Hex(),
		Slug:      slug,
		Email:     booking.Email,
		CreatedAt: booking.CreatedAt,
	}
}

// Publisher dials the broker per message. An empty url turns it into a no-op.
type Publisher struct {
	url    string
	logger *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger.Named("notify")}
}

func (p *Publisher) Enabled() bool {
	return p.url != ""
}

func (p *Publisher) BookingCreated(ctx context.Context, booking model.Booking, slug string) error {
	if !p.Enabled() {
		return nil
	}

	body, err := json.Marshal(NewBookingCreatedMessage(booking, slug))
	if err != nil {
		return fmt.Errorf("marshal booking message: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(BookingCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", BookingCreatedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.logger.Debug("booking message published", zap.String("booking_id", booking.Id.Hex()))
	return nil
}
