package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bharatTiffin/elitemeet-backend/internal/app"
	"github.com/bharatTiffin/elitemeet-backend/internal/auth"
	"github.com/bharatTiffin/elitemeet-backend/internal/clock"
	"github.com/bharatTiffin/elitemeet-backend/internal/config"
	"github.com/bharatTiffin/elitemeet-backend/internal/notify"
	"github.com/bharatTiffin/elitemeet-backend/internal/observability"
	"github.com/bharatTiffin/elitemeet-backend/internal/payment"
	"github.com/bharatTiffin/elitemeet-backend/internal/storage/postgres"
	transporthttp "github.com/bharatTiffin/elitemeet-backend/internal/transport/http"
	"github.com/bharatTiffin/elitemeet-backend/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if path, err := config.LoadEnvFile(); err != nil {
		log.WithError(err).Warn("failed to load .env")
	} else if path != "" {
		log.WithField("path", path).Info("loaded env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	metrics := observability.New()
	clk := clock.NewSystem()

	slotRepo := postgres.NewSlotRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)

	provider := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.KeyID, cfg.Payment.KeySecret)

	sender := notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	dispatcher := notify.NewDispatcher(sender, 64, log)
	defer dispatcher.Close()

	bookingSvc := app.NewBookingService(
		slotRepo, bookingRepo, provider, clk, log, metrics,
		app.WithHoldTTL(cfg.HoldTTL),
	)
	confirmSvc := app.NewConfirmService(
		slotRepo, bookingRepo, provider, dispatcher, clk, log, metrics,
		cfg.Payment.WebhookSecret, cfg.Payment.KeySecret, cfg.AdminEmail,
	)
	sweeperSvc := app.NewSweeperService(slotRepo, bookingRepo, clk, log, metrics, cfg.ReservedGrace)
	reconcileSvc := app.NewReconcileService(slotRepo, bookingRepo, log, metrics)
	slotSvc := app.NewSlotService(slotRepo, clk)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeperSvc.Run(sweepCtx, cfg.SweepInterval)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Slots:       slotSvc,
		Bookings:    bookingSvc,
		Webhooks:    confirmSvc,
		Reconciler:  reconcileSvc,
		Sweeper:     sweeperSvc,
		Verifier:    auth.NewJWTVerifier(cfg.AuthSecret),
		Registry:    metrics.Registry,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	stopSweeper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
