package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/diagnosis/zenith-cabins/pkg/config"
	"github.com/diagnosis/zenith-cabins/pkg/database"
	"github.com/diagnosis/zenith-cabins/pkg/events"
	"github.com/diagnosis/zenith-cabins/pkg/logger"
	mw "github.com/diagnosis/zenith-cabins/pkg/middleware"
	"github.com/diagnosis/zenith-cabins/services/web/internal/actions"
	"github.com/diagnosis/zenith-cabins/services/web/internal/handlers"
	"github.com/diagnosis/zenith-cabins/services/web/internal/repository"
	"github.com/diagnosis/zenith-cabins/services/web/internal/service"
	"github.com/diagnosis/zenith-cabins/services/web/internal/session"
	"github.com/diagnosis/zenith-cabins/services/web/internal/views"
)

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}
	cfg := config.Load()
	logger.Setup("web", cfg.LogLevel)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// The site keeps working without a broker; events are dropped.
	var publisher events.Publisher = events.NopPublisher{}
	if bus, err := events.NewNATSEventBus(cfg.NATS.URL, "zenith-web"); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
	} else {
		publisher = bus
	}
	defer publisher.Close()

	// Repositories
	bookingRepo := repository.NewBookingRepository(pool)
	guestRepo := repository.NewGuestRepository(pool)
	cabinRepo := repository.NewCabinRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	// Services
	bookingService := service.NewBookingService(bookingRepo)
	cabinService := service.NewCabinService(cabinRepo, settingsRepo, bookingService)

	viewCache := views.New(rdb, views.Config{Prefix: cfg.Views.Prefix, TTL: cfg.Views.CacheTTL})
	acts := actions.New(bookingService, bookingRepo, guestRepo, viewCache, publisher)

	identityProviders := map[string]session.IdentityProvider{}
	if cfg.Auth.GoogleClientID != "" {
		identityProviders["google"] = session.NewGoogleProvider(
			cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL,
		)
	} else {
		logger.Warn("AUTH_GOOGLE_ID not set, sign-in disabled")
	}
	sessions := session.NewProvider(session.Config{
		Secret: cfg.Auth.SessionSecret,
		TTL:    cfg.Auth.SessionTTL,
		Secure: cfg.Auth.SecureCookies,
	}, guestRepo, identityProviders)

	limiter := mw.NewRateLimiter(rdb, mw.RateLimitConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
		SkipFunc: mw.OnlyMutations,
	})

	h := handlers.New(cabinService, bookingService, guestRepo, acts, sessions, viewCache)
	r := h.Routes(handlers.RouterConfig{
		ServiceName:    "web",
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down web service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Web service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting web service", "port", cfg.Server.Port, "base_url", cfg.Server.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Web service error", "error", err)
		os.Exit(1)
	}
}
