package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	web "courtside/internal/adapters/http"
	"courtside/internal/adapters/storage"
	accountStore "courtside/internal/adapters/storage/account"
	coachStore "courtside/internal/adapters/storage/coach"
	groupStore "courtside/internal/adapters/storage/group"
	holidayStore "courtside/internal/adapters/storage/holiday"
	invoiceStore "courtside/internal/adapters/storage/invoice"
	periodStore "courtside/internal/adapters/storage/period"
	rateStore "courtside/internal/adapters/storage/rate"
	registerStore "courtside/internal/adapters/storage/register"
	sessionPlanStore "courtside/internal/adapters/storage/sessionplan"
	"courtside/internal/application/orchestrators"
	"courtside/internal/config"
	"courtside/internal/metrics"
	"courtside/internal/platform/logger"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logger.New(cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer raw.Close()
	if err := storage.InitDB(ctx, raw); err != nil {
		return err
	}

	m := metrics.New()
	db := storage.NewTimedDB(raw, m, cfg.SlowQueryMs)

	acctStore := accountStore.NewSQLiteStore(db)
	cStore := coachStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:     acctStore,
		CoachStore:       cStore,
		PeriodStore:      periodStore.NewSQLiteStore(db),
		HolidayStore:     holidayStore.NewSQLiteStore(db),
		GroupStore:       groupStore.NewSQLiteStore(db),
		RateStore:        rateStore.NewSQLiteStore(db),
		RegisterStore:    registerStore.NewSQLiteStore(db),
		SessionPlanStore: sessionPlanStore.NewSQLiteStore(db),
		InvoiceStore:     invoiceStore.NewSQLiteStore(db),
	}

	// Seed the first super admin when the database has no accounts
	if cfg.AdminEmail != "" {
		seedDeps := orchestrators.CreateAccountDeps{
			AccountStore: acctStore,
			CoachStore:   cStore,
			GenerateID:   func() string { return uuid.New().String() },
			Now:          time.Now,
		}
		if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	csrfKey := cfg.CSRFKeyBytes()
	if cfg.CSRFKey == "" {
		// Development only: sessions and CSRF tokens do not survive a restart.
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			return err
		}
		slog.Warn("csrf_key_generated", "reason", "COURTSIDE_CSRF_KEY not set")
	}

	handler := web.NewMux(stores, web.Options{
		StaticDir:          cfg.StaticDir,
		CSRFKey:            csrfKey,
		Secure:             cfg.IsProduction(),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequestMs:      cfg.SlowRequestMs,
		Metrics:            m,
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
	})
	go web.RunMaintenance(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_started", "version", version, "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
