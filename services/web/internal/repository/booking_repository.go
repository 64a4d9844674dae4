package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByGuestID(ctx context.Context, guestID int64) ([]domain.Booking, error)
	ListActiveByCabinID(ctx context.Context, cabinID int64, since time.Time) ([]domain.Booking, error)
	UpdateGuestFields(ctx context.Context, id int64, numGuests int, observations string) error
	Delete(ctx context.Context, id int64) error
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `b.id, b.created_at, b.start_date, b.end_date,
b.num_nights, b.num_guests, b.cabin_price, b.extras_price, b.total_price,
b.status, b.has_breakfast, b.is_paid, b.observations, b.cabin_id, b.guest_id`

func scanBooking(row pgx.Row, b *domain.Booking, extra ...any) error {
	dest := []any{
		&b.ID, &b.CreatedAt, &b.StartDate, &b.EndDate,
		&b.NumNights, &b.NumGuests, &b.CabinPrice, &b.ExtrasPrice, &b.TotalPrice,
		&b.Status, &b.HasBreakfast, &b.IsPaid, &b.Observations, &b.CabinID, &b.GuestID,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *bookingRepository) Create(ctx context.Context, in *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings AS b (
		start_date, end_date, num_nights, num_guests,
		cabin_price, extras_price, total_price,
		status, has_breakfast, is_paid, observations,
		cabin_id, guest_id
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q,
		in.StartDate, in.EndDate, in.NumNights, in.NumGuests,
		in.CabinPrice, in.ExtrasPrice, in.TotalPrice,
		in.Status, in.HasBreakfast, in.IsPaid, in.Observations,
		in.CabinID, in.GuestID,
	), &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings b WHERE b.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q, id), &b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) ListByGuestID(ctx context.Context, guestID int64) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + `, c.name, c.image
	FROM bookings b JOIN cabins c ON c.id = b.cabin_id
	WHERE b.guest_id=$1
	ORDER BY b.start_date`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b, &b.CabinName, &b.CabinImage); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ListActiveByCabinID returns bookings of a cabin that start on or after since,
// plus any stay currently checked in.
func (r *bookingRepository) ListActiveByCabinID(ctx context.Context, cabinID int64, since time.Time) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings b
	WHERE b.cabin_id=$1 AND (b.start_date >= $2 OR b.status = $3)
	ORDER BY b.start_date`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, cabinID, since, domain.BookingCheckedIn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) UpdateGuestFields(ctx context.Context, id int64, numGuests int, observations string) error {
	const q = `UPDATE bookings SET num_guests=$2, observations=$3 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, numGuests, observations)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
