package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url, name string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	msg := nats.NewMsg(subject)
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		msg.Header.Set("X-Request-ID", requestID)
	}
	return n.conn.PublishMsg(msg)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

func toMessage(msg *nats.Msg) *Message {
	id := msg.Header.Get(nats.MsgIdHdr)
	if id == "" {
		id = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: time.Now(),
		ID:        id,
	}
}

// Event types and subjects
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"

	GuestUpdated = "guest.updated"
)

// Event payloads
type BookingCreatedEvent struct {
	BookingID  int64     `json:"booking_id"`
	CabinID    int64     `json:"cabin_id"`
	GuestID    int64     `json:"guest_id"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	NumNights  int       `json:"num_nights"`
	NumGuests  int       `json:"num_guests"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

type BookingUpdatedEvent struct {
	BookingID int64     `json:"booking_id"`
	GuestID   int64     `json:"guest_id"`
	Changes   []string  `json:"changes"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingDeletedEvent struct {
	BookingID int64     `json:"booking_id"`
	GuestID   int64     `json:"guest_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type GuestUpdatedEvent struct {
	GuestID     int64     `json:"guest_id"`
	Nationality string    `json:"nationality"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
