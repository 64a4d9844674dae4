package mailer

import (
	"context"
	"time"
)

// BookingConfirmation is what a guest is told once a reservation is stored.
type BookingConfirmation struct {
	BookingID  int64
	GuestName  string
	GuestEmail string
	StartDate  time.Time
	EndDate    time.Time
	NumNights  int
	NumGuests  int
	TotalPrice float64
}

type Service interface {
	SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error
}
