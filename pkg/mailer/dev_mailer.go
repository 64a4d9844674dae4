package mailer

import (
	"context"

	"github.com/diagnosis/zenith-cabins/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	logger.InfoContext(ctx, "📧 [DEV MAIL] Booking confirmation",
		"to", c.GuestEmail,
		"name", c.GuestName,
		"subject", confirmationSubject(c),
		"booking_id", c.BookingID,
		"start_date", c.StartDate.Format(dateLayout),
		"end_date", c.EndDate.Format(dateLayout),
		"total_price", c.TotalPrice,
	)
	return nil
}
