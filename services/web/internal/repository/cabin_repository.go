package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

type CabinRepository interface {
	List(ctx context.Context) ([]domain.Cabin, error)
	GetByID(ctx context.Context, id int64) (*domain.Cabin, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

type cabinRepository struct {
	pool *pgxpool.Pool
}

func NewCabinRepository(pool *pgxpool.Pool) CabinRepository {
	return &cabinRepository{pool: pool}
}

const cabinCols = `id, name, max_capacity, regular_price, discount,
coalesce(description, ''), coalesce(image, '')`

func (r *cabinRepository) List(ctx context.Context) ([]domain.Cabin, error) {
	const q = `SELECT ` + cabinCols + ` FROM cabins ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cabins []domain.Cabin
	for rows.Next() {
		var c domain.Cabin
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxCapacity, &c.RegularPrice, &c.Discount, &c.Description, &c.Image); err != nil {
			return nil, err
		}
		cabins = append(cabins, c)
	}
	return cabins, rows.Err()
}

func (r *cabinRepository) GetByID(ctx context.Context, id int64) (*domain.Cabin, error) {
	const q = `SELECT ` + cabinCols + ` FROM cabins WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Cabin
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.MaxCapacity, &c.RegularPrice, &c.Discount, &c.Description, &c.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	const q = `SELECT min_booking_length, max_booking_length, max_guests_per_booking, breakfast_price
	FROM settings LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Settings
	if err := r.pool.QueryRow(ctx, q).Scan(&s.MinBookingLength, &s.MaxBookingLength, &s.MaxGuestsPerBooking, &s.BreakfastPrice); err != nil {
		return nil, err
	}
	return &s, nil
}
