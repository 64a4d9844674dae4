// Package actions holds the mutation entry points invoked by form submissions.
// Each action receives the caller's session explicitly, validates its input,
// checks booking ownership where a booking already exists, performs exactly
// one write, and then declares the affected views stale.
package actions

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/diagnosis/zenith-cabins/pkg/events"
	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/pkg/utils"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

// View paths touched by actions.
const (
	PathProfile      = "/account/profile"
	PathReservations = "/account/reservations"
	PathThankYou     = "/cabins/thankyou"
)

func CabinPath(cabinID int64) string {
	return "/cabins/" + strconv.FormatInt(cabinID, 10)
}

func EditReservationPath(id int64) string {
	return "/account/reservations/edit/" + strconv.FormatInt(id, 10)
}

// BookingLister is the read side used for ownership checks.
type BookingLister interface {
	GetBookings(ctx context.Context, guestID int64) ([]domain.Booking, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	UpdateGuestFields(ctx context.Context, id int64, numGuests int, observations string) error
	Delete(ctx context.Context, id int64) error
}

type GuestStore interface {
	UpdateProfile(ctx context.Context, guestID int64, p domain.GuestProfile) error
}

type ViewInvalidator interface {
	MarkStale(ctx context.Context, path string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Outcome tells the caller what happened after a successful action. Navigate
// is empty when the caller should stay on the current view.
type Outcome struct {
	Stale    []string
	Navigate string
}

type Actions struct {
	bookings BookingLister
	store    BookingStore
	guests   GuestStore
	views    ViewInvalidator
	events   EventPublisher
	now      func() time.Time
}

func New(bookings BookingLister, store BookingStore, guests GuestStore, views ViewInvalidator, publisher EventPublisher) *Actions {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Actions{
		bookings: bookings,
		store:    store,
		guests:   guests,
		views:    views,
		events:   publisher,
		now:      time.Now,
	}
}

func requireSession(sess *domain.Session) (*domain.Session, error) {
	if sess == nil || sess.GuestID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

// assertOwnsBooking re-reads the guest's own bookings on every call and
// returns the matching one. The booking id comes from the client and is never
// trusted on its own.
func (a *Actions) assertOwnsBooking(ctx context.Context, sess *domain.Session, bookingID int64) (*domain.Booking, error) {
	bookings, err := a.bookings.GetBookings(ctx, sess.GuestID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load guest bookings: %w", domain.ErrPersistence, err)
	}
	i := slices.IndexFunc(bookings, func(b domain.Booking) bool { return b.ID == bookingID })
	if i < 0 {
		logger.WarnContext(ctx, "Booking ownership check failed", "guest_id", sess.GuestID, "booking_id", bookingID)
		return nil, fmt.Errorf("%w: booking %d", domain.ErrUnauthorizedMutation, bookingID)
	}
	return &bookings[i], nil
}

// UpdateGuest stores nationality and national ID on the session's guest.
func (a *Actions) UpdateGuest(ctx context.Context, sess *domain.Session, in UpdateGuestInput) (*Outcome, error) {
	sess, err := requireSession(sess)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	profile := domain.GuestProfile{
		Nationality: in.Nationality,
		CountryFlag: in.CountryFlag,
		NationalID:  in.NationalID,
	}
	if err := a.guests.UpdateProfile(ctx, sess.GuestID, profile); err != nil {
		return nil, fmt.Errorf("%w: guest could not be updated: %w", domain.ErrPersistence, err)
	}

	a.publish(ctx, events.GuestUpdated, events.GuestUpdatedEvent{
		GuestID:     sess.GuestID,
		Nationality: in.Nationality,
		UpdatedAt:   a.now(),
	})
	return a.finish(ctx, "", PathProfile), nil
}

// CreateBooking inserts a new unconfirmed booking for the session's guest and
// sends the caller to the thank-you page. The cabin's booked dates and the
// guest's reservation list both change.
func (a *Actions) CreateBooking(ctx context.Context, sess *domain.Session, draft domain.BookingDraft, in CreateBookingInput) (*Outcome, error) {
	sess, err := requireSession(sess)
	if err != nil {
		return nil, err
	}
	if in.NumGuests < domain.MinGuests {
		return nil, fmt.Errorf("%w: number of guests must be at least %d", domain.ErrInvalidInput, domain.MinGuests)
	}
	if draft.CabinID <= 0 {
		return nil, fmt.Errorf("%w: missing cabin", domain.ErrInvalidInput)
	}

	booking := &domain.Booking{
		StartDate:    draft.StartDate,
		EndDate:      draft.EndDate,
		NumNights:    draft.NumNights,
		CabinPrice:   draft.CabinPrice,
		CabinID:      draft.CabinID,
		GuestID:      sess.GuestID,
		NumGuests:    in.NumGuests,
		Observations: utils.Truncate(in.Observations, domain.MaxObservationsOnCreate),
		ExtrasPrice:  0,
		TotalPrice:   draft.CabinPrice,
		IsPaid:       false,
		HasBreakfast: false,
		Status:       domain.BookingUnconfirmed,
	}

	created, err := a.store.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("%w: booking could not be created: %w", domain.ErrPersistence, err)
	}

	a.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  created.ID,
		CabinID:    created.CabinID,
		GuestID:    sess.GuestID,
		GuestName:  sess.Name,
		GuestEmail: sess.Email,
		StartDate:  created.StartDate,
		EndDate:    created.EndDate,
		NumNights:  created.NumNights,
		NumGuests:  created.NumGuests,
		TotalPrice: created.TotalPrice,
		CreatedAt:  a.now(),
	})
	return a.finish(ctx, PathThankYou, CabinPath(draft.CabinID), PathReservations), nil
}

// UpdateReservation changes the guest count and observations of a booking the
// session owns, then sends the caller back to the reservation list.
func (a *Actions) UpdateReservation(ctx context.Context, sess *domain.Session, in UpdateReservationInput) (*Outcome, error) {
	sess, err := requireSession(sess)
	if err != nil {
		return nil, err
	}
	if _, err := a.assertOwnsBooking(ctx, sess, in.ReservationID); err != nil {
		return nil, err
	}
	if in.NumGuests < domain.MinGuests {
		return nil, fmt.Errorf("%w: number of guests must be at least %d", domain.ErrInvalidInput, domain.MinGuests)
	}

	observations := utils.Truncate(in.Observations, domain.MaxObservationsOnUpdate)
	if err := a.store.UpdateGuestFields(ctx, in.ReservationID, in.NumGuests, observations); err != nil {
		return nil, fmt.Errorf("%w: booking could not be updated: %w", domain.ErrPersistence, err)
	}

	a.publish(ctx, events.BookingUpdated, events.BookingUpdatedEvent{
		BookingID: in.ReservationID,
		GuestID:   sess.GuestID,
		Changes:   []string{"num_guests", "observations"},
		UpdatedAt: a.now(),
	})
	return a.finish(ctx, PathReservations, EditReservationPath(in.ReservationID), PathReservations), nil
}

// DeleteReservation removes a booking the session owns and frees its dates on
// the cabin page. The caller stays on the current view.
func (a *Actions) DeleteReservation(ctx context.Context, sess *domain.Session, bookingID int64) (*Outcome, error) {
	sess, err := requireSession(sess)
	if err != nil {
		return nil, err
	}
	owned, err := a.assertOwnsBooking(ctx, sess, bookingID)
	if err != nil {
		return nil, err
	}

	if err := a.store.Delete(ctx, bookingID); err != nil {
		return nil, fmt.Errorf("%w: booking could not be deleted: %w", domain.ErrPersistence, err)
	}

	a.publish(ctx, events.BookingDeleted, events.BookingDeletedEvent{
		BookingID: bookingID,
		GuestID:   sess.GuestID,
		DeletedAt: a.now(),
	})
	return a.finish(ctx, "", PathReservations, EditReservationPath(bookingID), CabinPath(owned.CabinID)), nil
}

// finish declares paths stale once the write has succeeded. A failed
// invalidation is logged; the write already happened and is not undone.
func (a *Actions) finish(ctx context.Context, navigate string, stale ...string) *Outcome {
	for _, path := range stale {
		if err := a.views.MarkStale(ctx, path); err != nil {
			logger.ErrorContext(ctx, "Failed to mark view stale", "path", path, "error", err)
		}
	}
	return &Outcome{Stale: stale, Navigate: navigate}
}

func (a *Actions) publish(ctx context.Context, subject string, event interface{}) {
	if err := a.events.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
