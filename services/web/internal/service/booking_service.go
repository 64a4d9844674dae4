package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/repository"
)

// BookingService answers read questions about bookings. Actions use it to
// authorize mutations, pages use it to render reservation lists.
type BookingService interface {
	GetBookings(ctx context.Context, guestID int64) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookedDatesByCabinID(ctx context.Context, cabinID int64) ([]time.Time, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	now         func() time.Time
}

func NewBookingService(bookingRepo repository.BookingRepository) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		now:         time.Now,
	}
}

func (s *bookingService) GetBookings(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByGuestID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

// GetBookedDatesByCabinID expands every upcoming or ongoing stay of a cabin
// into the individual days it occupies.
func (s *bookingService) GetBookedDatesByCabinID(ctx context.Context, cabinID int64) ([]time.Time, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	bookings, err := s.bookingRepo.ListActiveByCabinID(ctx, cabinID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list cabin bookings: %w", err)
	}

	var dates []time.Time
	for _, b := range bookings {
		dates = append(dates, expandDays(b.StartDate, b.EndDate)...)
	}
	return dates, nil
}

func expandDays(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
