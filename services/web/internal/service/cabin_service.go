package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/repository"
)

// ReservationData is everything the reservation widget of a cabin page needs.
type ReservationData struct {
	Cabin       *domain.Cabin
	Settings    *domain.Settings
	BookedDates []time.Time
}

type CabinService interface {
	ListCabins(ctx context.Context, filter domain.CapacityFilter) ([]domain.Cabin, error)
	GetCabin(ctx context.Context, id int64) (*domain.Cabin, error)
	GetSettings(ctx context.Context) (*domain.Settings, error)
	LoadReservationData(ctx context.Context, cabinID int64) (*ReservationData, error)
}

type cabinService struct {
	cabinRepo    repository.CabinRepository
	settingsRepo repository.SettingsRepository
	bookings     BookingService
}

func NewCabinService(
	cabinRepo repository.CabinRepository,
	settingsRepo repository.SettingsRepository,
	bookings BookingService,
) CabinService {
	return &cabinService{
		cabinRepo:    cabinRepo,
		settingsRepo: settingsRepo,
		bookings:     bookings,
	}
}

func (s *cabinService) ListCabins(ctx context.Context, filter domain.CapacityFilter) ([]domain.Cabin, error) {
	cabins, err := s.cabinRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cabins: %w", err)
	}

	filtered := make([]domain.Cabin, 0, len(cabins))
	for _, c := range cabins {
		if filter.Matches(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *cabinService) GetCabin(ctx context.Context, id int64) (*domain.Cabin, error) {
	cabin, err := s.cabinRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cabin: %w", err)
	}
	if cabin == nil {
		return nil, domain.ErrNotFound
	}
	return cabin, nil
}

func (s *cabinService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// LoadReservationData fetches settings and booked dates concurrently and joins
// them before returning.
func (s *cabinService) LoadReservationData(ctx context.Context, cabinID int64) (*ReservationData, error) {
	cabin, err := s.GetCabin(ctx, cabinID)
	if err != nil {
		return nil, err
	}

	data := &ReservationData{Cabin: cabin}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings, err := s.GetSettings(gctx)
		if err != nil {
			return err
		}
		data.Settings = settings
		return nil
	})
	g.Go(func() error {
		dates, err := s.bookings.GetBookedDatesByCabinID(gctx, cabinID)
		if err != nil {
			return err
		}
		data.BookedDates = dates
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
