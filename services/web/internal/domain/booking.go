package domain

import "time"

type BookingStatus string

const (
	BookingUnconfirmed BookingStatus = "unconfirmed"
	BookingCheckedIn   BookingStatus = "checked-in"
	BookingCheckedOut  BookingStatus = "checked-out"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingUnconfirmed, BookingCheckedIn, BookingCheckedOut:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

type Booking struct {
	ID           int64         `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	NumNights    int           `json:"num_nights"`
	NumGuests    int           `json:"num_guests"`
	CabinPrice   float64       `json:"cabin_price"`
	ExtrasPrice  float64       `json:"extras_price"`
	TotalPrice   float64       `json:"total_price"`
	Status       BookingStatus `json:"status"`
	HasBreakfast bool          `json:"has_breakfast"`
	IsPaid       bool          `json:"is_paid"`
	Observations string        `json:"observations"`
	CabinID      int64         `json:"cabin_id"`
	GuestID      int64         `json:"guest_id"`

	// Filled by list queries that join the cabin row.
	CabinName  string `json:"cabin_name,omitempty"`
	CabinImage string `json:"cabin_image,omitempty"`
}

// IsPast reports whether the stay has already started.
func (b *Booking) IsPast(now time.Time) bool {
	return !b.StartDate.After(now)
}

// BookingDraft is the part of a booking chosen on the cabin page before the
// reservation form is submitted.
type BookingDraft struct {
	CabinID    int64
	StartDate  time.Time
	EndDate    time.Time
	NumNights  int
	CabinPrice float64
}

// Business Rules
const (
	MaxObservationsOnCreate = 1000
	MaxObservationsOnUpdate = 500
	MinGuests               = 1
)

// Nights counts whole days between two dates.
func Nights(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
