package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/zenith-cabins/pkg/events"
	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/pkg/mailer"
)

const sendTimeout = 15 * time.Second

// Notifier turns booking events into guest emails.
type Notifier struct {
	mailer mailer.Service
}

func NewNotifier(m mailer.Service) *Notifier {
	return &Notifier{mailer: m}
}

// Subscribe registers the notifier on the bus. Instances sharing queue split
// the deliveries between them.
func (n *Notifier) Subscribe(bus events.Subscriber, queue string) error {
	return bus.QueueSubscribe(events.BookingCreated, queue, func(msg *events.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.HandleBookingCreated(ctx, msg.Data); err != nil {
			logger.ErrorContext(ctx, "Failed to send booking confirmation",
				"message_id", msg.ID,
				"error", err,
			)
		}
	})
}

func (n *Notifier) HandleBookingCreated(ctx context.Context, data []byte) error {
	var event events.BookingCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("invalid booking.created payload: %w", err)
	}
	if event.GuestEmail == "" {
		logger.WarnContext(ctx, "Booking has no guest email, skipping confirmation", "booking_id", event.BookingID)
		return nil
	}

	err := n.mailer.SendBookingConfirmation(ctx, mailer.BookingConfirmation{
		BookingID:  event.BookingID,
		GuestName:  event.GuestName,
		GuestEmail: event.GuestEmail,
		StartDate:  event.StartDate,
		EndDate:    event.EndDate,
		NumNights:  event.NumNights,
		NumGuests:  event.NumGuests,
		TotalPrice: event.TotalPrice,
	})
	if err != nil {
		return fmt.Errorf("send confirmation for booking %d: %w", event.BookingID, err)
	}

	logger.InfoContext(ctx, "Booking confirmation sent", "booking_id", event.BookingID)
	return nil
}
