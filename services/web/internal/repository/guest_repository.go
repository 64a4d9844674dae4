package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
)

type GuestRepository interface {
	Create(ctx context.Context, fullName, email string) (*domain.Guest, error)
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
	GetByEmail(ctx context.Context, email string) (*domain.Guest, error)
	UpdateProfile(ctx context.Context, id int64, p domain.GuestProfile) error
}

type guestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &guestRepository{pool: pool}
}

const guestCols = `id, created_at, full_name, email,
coalesce(nationality, ''), coalesce(country_flag, ''), coalesce(national_id, '')`

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(&g.ID, &g.CreatedAt, &g.FullName, &g.Email, &g.Nationality, &g.CountryFlag, &g.NationalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *guestRepository) Create(ctx context.Context, fullName, email string) (*domain.Guest, error) {
	const q = `INSERT INTO guests (full_name, email) VALUES ($1, lower($2))
	ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
	RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanGuest(r.pool.QueryRow(ctx, q, fullName, email))
}

func (r *guestRepository) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanGuest(r.pool.QueryRow(ctx, q, id))
}

func (r *guestRepository) GetByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE email=lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanGuest(r.pool.QueryRow(ctx, q, email))
}

func (r *guestRepository) UpdateProfile(ctx context.Context, id int64, p domain.GuestProfile) error {
	const q = `UPDATE guests SET nationality=$2, country_flag=$3, national_id=$4 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, p.Nationality, p.CountryFlag, p.NationalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
