package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
)

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "home", "Welcome to paradise", func(context.Context, *domain.Session) (any, error) {
		return nil, nil
	})
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) != nil {
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	h.page(w, r, "login", "Login", func(context.Context, *domain.Session) (any, error) {
		return nil, nil
	})
}

type filterOption struct {
	Value  domain.CapacityFilter
	Label  string
	Active bool
}

type cabinsView struct {
	Cabins  []domain.Cabin
	Filters []filterOption
}

var capacityFilters = []filterOption{
	{Value: domain.CapacityAll, Label: "All cabins"},
	{Value: domain.CapacitySmall, Label: "1–3 guests"},
	{Value: domain.CapacityMedium, Label: "4–7 guests"},
	{Value: domain.CapacityLarge, Label: "8–12 guests"},
}

func (h *Handlers) ListCabins(w http.ResponseWriter, r *http.Request) {
	filter := domain.ParseCapacityFilter(r.URL.Query().Get("capacity"))

	h.page(w, r, "cabins", "Cabins", func(ctx context.Context, _ *domain.Session) (any, error) {
		cabins, err := h.cabins.ListCabins(ctx, filter)
		if err != nil {
			return nil, err
		}
		filters := slices.Clone(capacityFilters)
		for i := range filters {
			filters[i].Active = filters[i].Value == filter
		}
		return cabinsView{Cabins: cabins, Filters: filters}, nil
	})
}

func parseCabinID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (h *Handlers) CabinDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseCabinID(r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	h.page(w, r, "cabin", "Cabin", func(ctx context.Context, _ *domain.Session) (any, error) {
		return h.cabins.LoadReservationData(ctx, id)
	})
}

func (h *Handlers) ThankYou(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "thankyou", "Thank you", func(context.Context, *domain.Session) (any, error) {
		return nil, nil
	})
}

func (h *Handlers) Account(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "account", "Guest area", func(_ context.Context, sess *domain.Session) (any, error) {
		return sess.FirstName(), nil
	})
}

type profileView struct {
	Guest     *domain.Guest
	Countries []countryOption
}

func (h *Handlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "profile", "Update profile", func(ctx context.Context, sess *domain.Session) (any, error) {
		guest, err := h.guests.GetByID(ctx, sess.GuestID)
		if err != nil {
			return nil, fmt.Errorf("failed to load guest: %w", err)
		}
		if guest == nil {
			return nil, domain.ErrNotFound
		}
		return profileView{Guest: guest, Countries: countryOptions(guest.Nationality)}, nil
	})
}

type reservationRow struct {
	domain.Booking
	Past bool
}

func (h *Handlers) ReservationsPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "reservations", "Reservations", func(ctx context.Context, sess *domain.Session) (any, error) {
		bookings, err := h.bookings.GetBookings(ctx, sess.GuestID)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		rows := make([]reservationRow, 0, len(bookings))
		for _, b := range bookings {
			rows = append(rows, reservationRow{Booking: b, Past: b.IsPast(now)})
		}
		return rows, nil
	})
}

type editView struct {
	Booking   domain.Booking
	MaxGuests int
}

// EditReservationPage only renders bookings found among the session's own.
func (h *Handlers) EditReservationPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.fail(w, r, domain.ErrNotFound, "")
		return
	}

	h.page(w, r, "edit", "Edit reservation", func(ctx context.Context, sess *domain.Session) (any, error) {
		return h.loadOwnedBooking(ctx, sess, id)
	})
}

func (h *Handlers) loadOwnedBooking(ctx context.Context, sess *domain.Session, id int64) (*editView, error) {
	bookings, err := h.bookings.GetBookings(ctx, sess.GuestID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(bookings, func(b domain.Booking) bool { return b.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrUnauthorizedMutation, id)
	}

	booking := bookings[idx]
	view := &editView{Booking: booking, MaxGuests: 1}
	cabin, err := h.cabins.GetCabin(ctx, booking.CabinID)
	if err != nil {
		return nil, err
	}
	view.MaxGuests = max(cabin.MaxCapacity, booking.NumGuests)
	return view, nil
}
