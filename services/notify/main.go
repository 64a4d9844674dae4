package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/diagnosis/zenith-cabins/pkg/config"
	"github.com/diagnosis/zenith-cabins/pkg/events"
	"github.com/diagnosis/zenith-cabins/pkg/logger"
	"github.com/diagnosis/zenith-cabins/pkg/mailer"
	mw "github.com/diagnosis/zenith-cabins/pkg/middleware"
	"github.com/diagnosis/zenith-cabins/services/notify/internal/service"
)

func newMailer(cfg config.EmailConfig) mailer.Service {
	if cfg.DevMode || cfg.MailerSendKey == "" {
		logger.Info("Using dev mailer, emails are logged only")
		return mailer.NewDevMailer()
	}
	return mailer.NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.FromEmail)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}
	cfg := config.Load()
	logger.Setup("notify", cfg.LogLevel)

	bus, err := events.NewNATSEventBus(cfg.NATS.URL, "zenith-notify")
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	notifier := service.NewNotifier(newMailer(cfg.Email))
	if err := notifier.Subscribe(bus, cfg.NATS.QueueGroup); err != nil {
		logger.Error("Failed to subscribe", "subject", events.BookingCreated, "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("notify"))
	r.Use(mw.Logging)
	r.Use(mw.Health)

	srv := &http.Server{
		Addr:         ":8086",
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down notify service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Notify service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting notify service", "port", "8086", "queue", cfg.NATS.QueueGroup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Notify service error", "error", err)
		os.Exit(1)
	}
}
