package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

// BookingSource resolves booking ids.
type BookingSource interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

// EventSource resolves event ids.
type EventSource interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// UserSource resolves user ids.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Sender delivers the confirmation message. Satisfied by *Mailer.
type Sender interface {
	SendBookingConfirmed(ctx context.Context, to, eventTitle string, date time.Time, clock string) error
}

// Consumer drains booking.confirmed messages and emails the booking's user.
// Delivery is best-effort: a message that cannot be processed is logged and
// dropped, never retried.
type Consumer struct {
	url      string
	exchange string
	queue    string

	bookings BookingSource
	events   EventSource
	users    UserSource
	mailer   Sender

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewConsumer constructs a Consumer.
func NewConsumer(url, exchange, queue string, bookings BookingSource, events EventSource, users UserSource, mailer Sender) *Consumer {
	return &Consumer{
		url:      url,
		exchange: exchange,
		queue:    queue,
		bookings: bookings,
		events:   events,
		users:    users,
		mailer:   mailer,
	}
}

// Connect dials the broker and binds the queue to booking.confirmed.
func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(c.queue, KeyBookingConfirmed, c.exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("bind queue: %w", err)
	}
	c.conn, c.ch = conn, ch
	return nil
}

// Run consumes messages until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				log.Printf("process %s: %v", KeyBookingConfirmed, err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var msg BookingConfirmed
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	booking, err := c.bookings.GetByID(ctx, msg.BookingID)
	if err != nil {
		return err
	}
	// Only confirmed bookings generate mail; anything else was raced by a
	// later transition and is skipped.
	if booking.Status != model.StatusConfirmed {
		log.Printf("booking %s is %s, skipping email", booking.ID, booking.Status)
		return nil
	}

	event, err := c.events.GetByID(ctx, booking.EventID)
	if err != nil {
		return err
	}
	user, err := c.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return err
	}

	if err := c.mailer.SendBookingConfirmed(ctx, user.Email, event.Title, booking.BookingDate, booking.BookingTime); err != nil {
		return err
	}
	log.Printf("confirmation email sent to %s for booking %s", user.Email, booking.ID)
	return nil
}

// Close releases the channel and connection.
func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
