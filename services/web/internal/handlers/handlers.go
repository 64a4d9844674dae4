package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/diagnosis/zenith-cabins/pkg/middleware"
	"github.com/diagnosis/zenith-cabins/services/web/internal/actions"
	"github.com/diagnosis/zenith-cabins/services/web/internal/domain"
	"github.com/diagnosis/zenith-cabins/services/web/internal/service"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
)

type SessionProvider interface {
	Load(next http.Handler) http.Handler
	SignIn(w http.ResponseWriter, r *http.Request, provider, redirectTo string) error
	Callback(w http.ResponseWriter, r *http.Request, provider string) (string, error)
	SignOut(w http.ResponseWriter, r *http.Request, redirectTo string)
}

// PageCache stores rendered pages per path and scope.
type PageCache interface {
	Get(ctx context.Context, path, scope string) ([]byte, bool, error)
	Put(ctx context.Context, path, scope string, body []byte) error
}

type GuestReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
}

type Handlers struct {
	cabins   service.CabinService
	bookings service.BookingService
	guests   GuestReader
	actions  *actions.Actions
	sessions SessionProvider
	pages    PageCache
	views    *templates
}

func New(
	cabins service.CabinService,
	bookings service.BookingService,
	guests GuestReader,
	acts *actions.Actions,
	sessions SessionProvider,
	pages PageCache,
) *Handlers {
	return &Handlers{
		cabins:   cabins,
		bookings: bookings,
		guests:   guests,
		actions:  acts,
		sessions: sessions,
		pages:    pages,
		views:    mustParseTemplates(),
	}
}

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	Limiter        *mw.RateLimiter
}

// Routes builds the web router.
func (h *Handlers) Routes(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName(cfg.ServiceName))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware())
	}
	r.Use(LoadFlash)
	r.Use(h.sessions.Load)

	r.Get("/", h.Home)
	r.Get("/login", h.LoginPage)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", h.SignIn)
		r.Get("/callback/{provider}", h.Callback)
		r.Post("/signout", h.SignOut)
	})

	r.Route("/cabins", func(r chi.Router) {
		r.Get("/", h.ListCabins)
		r.Get("/thankyou", h.ThankYou)
		r.Get("/{id}", h.CabinDetail)
		r.Post("/{id}/reservations", h.CreateBooking)
	})

	r.Route("/account", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(session.Require)
			r.Get("/", h.Account)
			r.Get("/profile", h.ProfilePage)
			r.Get("/reservations", h.ReservationsPage)
			r.Get("/reservations/edit/{id}", h.EditReservationPage)
		})

		// Mutations check the session themselves.
		r.Post("/profile", h.UpdateProfile)
		r.Post("/reservations/edit", h.UpdateReservation)
		r.Post("/reservations/{id}/delete", h.DeleteReservation)
	})

	return r
}
