package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/zenith-cabins/services/web/internal/actions"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
)

const formDateLayout = "2006-01-02"

// finish performs the outcome's navigation, or returns to stay when the
// action leaves the caller on the current view.
func finish(w http.ResponseWriter, r *http.Request, out *actions.Outcome, stay, notice string) {
	if notice != "" {
		SetFlash(w, "success", notice)
	}
	target := out.Navigate
	if target == "" {
		target = stay
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: malformed form", domain.ErrInvalidInput)
	}
	return nil
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.fail(w, r, err, actions.PathProfile)
		return
	}
	in, err := actions.ParseUpdateGuestInput(r.PostForm)
	if err != nil {
		h.fail(w, r, err, actions.PathProfile)
		return
	}

	out, err := h.actions.UpdateGuest(r.Context(), session.FromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err, actions.PathProfile)
		return
	}
	finish(w, r, out, actions.PathProfile, "Profile updated")
}

// bookingDraft prices the selected stay from the cabin row.
func (h *Handlers) bookingDraft(ctx context.Context, cabinID int64, start, end string) (domain.BookingDraft, error) {
	startDate, err := time.Parse(formDateLayout, strings.TrimSpace(start))
	if err != nil {
		return domain.BookingDraft{}, fmt.Errorf("%w: select a start date", domain.ErrInvalidInput)
	}
	endDate, err := time.Parse(formDateLayout, strings.TrimSpace(end))
	if err != nil {
		return domain.BookingDraft{}, fmt.Errorf("%w: select an end date", domain.ErrInvalidInput)
	}
	nights := domain.Nights(startDate, endDate)
	if nights < 1 {
		return domain.BookingDraft{}, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}

	cabin, err := h.cabins.GetCabin(ctx, cabinID)
	if err != nil {
		return domain.BookingDraft{}, err
	}

	return domain.BookingDraft{
		CabinID:    cabin.ID,
		StartDate:  startDate,
		EndDate:    endDate,
		NumNights:  nights,
		CabinPrice: float64(nights) * cabin.NightlyPrice(),
	}, nil
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	cabinID, err := parseCabinID(r)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	back := actions.CabinPath(cabinID)

	sess := session.FromContext(r.Context())
	if sess == nil {
		h.fail(w, r, domain.ErrUnauthorized, back)
		return
	}

	if err := parseForm(r); err != nil {
		h.fail(w, r, err, back)
		return
	}
	in, err := actions.ParseCreateBookingInput(r.PostForm)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	draft, err := h.bookingDraft(r.Context(), cabinID, r.PostForm.Get("startDate"), r.PostForm.Get("endDate"))
	if err != nil {
		h.fail(w, r, err, back)
		return
	}

	out, err := h.actions.CreateBooking(r.Context(), sess, draft, in)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	finish(w, r, out, back, "")
}

func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.fail(w, r, err, actions.PathReservations)
		return
	}
	in, err := actions.ParseUpdateReservationInput(r.PostForm)
	if err != nil {
		back := actions.PathReservations
		if id, idErr := actions.ParseBookingID(r.PostForm.Get("reservationId")); idErr == nil {
			back = actions.EditReservationPath(id)
		}
		h.fail(w, r, err, back)
		return
	}

	out, err := h.actions.UpdateReservation(r.Context(), session.FromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err, actions.EditReservationPath(in.ReservationID))
		return
	}
	finish(w, r, out, actions.PathReservations, "Reservation updated")
}

func (h *Handlers) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := actions.ParseBookingID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, actions.PathReservations)
		return
	}

	out, err := h.actions.DeleteReservation(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, actions.PathReservations)
		return
	}
	finish(w, r, out, actions.PathReservations, "Reservation deleted")
}
