package actions

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

// UpdateGuestInput is the parsed profile form.
type UpdateGuestInput struct {
	NationalID  string
	Nationality string
	CountryFlag string
}

func (in UpdateGuestInput) validate() error {
	if !domain.ValidNationalID(in.NationalID) {
		return fmt.Errorf("%w: invalid national ID", domain.ErrInvalidInput)
	}
	return nil
}

// ParseUpdateGuestInput validates the national ID exactly as submitted.
// Surrounding whitespace is not trimmed and fails the pattern.
func ParseUpdateGuestInput(form url.Values) (UpdateGuestInput, error) {
	nationality, flag := domain.ParseNationality(form.Get("nationality"))
	in := UpdateGuestInput{
		NationalID:  form.Get("nationalID"),
		Nationality: nationality,
		CountryFlag: flag,
	}
	if err := in.validate(); err != nil {
		return UpdateGuestInput{}, err
	}
	return in, nil
}

// CreateBookingInput is the parsed reservation form. Status, payment and
// extras fields in the form are ignored.
type CreateBookingInput struct {
	NumGuests    int
	Observations string
}

func ParseCreateBookingInput(form url.Values) (CreateBookingInput, error) {
	n, err := parseNumGuests(form)
	if err != nil {
		return CreateBookingInput{}, err
	}
	return CreateBookingInput{
		NumGuests:    n,
		Observations: form.Get("observations"),
	}, nil
}

// UpdateReservationInput is the parsed edit-reservation form.
type UpdateReservationInput struct {
	ReservationID int64
	NumGuests     int
	Observations  string
}

func ParseUpdateReservationInput(form url.Values) (UpdateReservationInput, error) {
	id, err := ParseBookingID(form.Get("reservationId"))
	if err != nil {
		return UpdateReservationInput{}, err
	}
	n, err := parseNumGuests(form)
	if err != nil {
		return UpdateReservationInput{}, err
	}
	return UpdateReservationInput{
		ReservationID: id,
		NumGuests:     n,
		Observations:  form.Get("observations"),
	}, nil
}

// ParseBookingID accepts a positive decimal id.
func ParseBookingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid booking id %q", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

func parseNumGuests(form url.Values) (int, error) {
	raw := strings.TrimSpace(form.Get("numGuests"))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: number of guests must be a number", domain.ErrInvalidInput)
	}
	if n < domain.MinGuests {
		return 0, fmt.Errorf("%w: number of guests must be at least %d", domain.ErrInvalidInput, domain.MinGuests)
	}
	return n, nil
}
