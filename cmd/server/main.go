package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymhub/internal/adapters/cache"
	emailPkg "gymhub/internal/adapters/email"
	web "gymhub/internal/adapters/http"
	"gymhub/internal/adapters/http/perf"
	"gymhub/internal/adapters/storage"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/config"
	"gymhub/internal/domain/outbox"
	"gymhub/internal/logging"
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
	logCloser := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()

	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		return err
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	stores := web.NewStores(timedDB, timedDB.RawDB())

	ctx := context.Background()
	if cfg.AdminEmail != "" {
		seeded, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if seeded {
			slog.Info("admin_seeded", "email", cfg.AdminEmail)
		}
	}

	// Demo data for development only
	if cfg.Env == config.EnvDevelopment {
		seeded, err := orchestrators.ExecuteSeedDemo(ctx, orchestrators.SeedDemoDeps{
			AccountStore:   stores.AccountStore,
			MemberStore:    stores.MemberStore,
			TrainerStore:   stores.TrainerStore,
			ClassStore:     stores.ClassStore,
			EquipmentStore: stores.EquipmentStore,
			PaymentStore:   stores.PaymentStore,
		})
		if err != nil {
			return err
		}
		if seeded {
			slog.Info("demo_seeded", "password", orchestrators.DemoPassword)
		}
	}

	var sender emailPkg.Sender = emailPkg.NewNoopSender()
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	} else if cfg.IsProduction() {
		slog.Warn("email_sender_disabled", "hint", "set GYM_RESEND_KEY for delivery")
	}
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
	})

	var dashboardCache cache.Store = cache.NewMemory()
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		dashboardCache = redisCache
		slog.Info("cache_configured", "backend", "redis", "addr", cfg.RedisAddr)
	}

	handler := web.NewMux(stores, collector, web.Options{
		CSRFKey:       cfg.CSRFKey,
		SecureCookies: cfg.IsProduction(),
		CORSOrigins:   cfg.CORSOrigins,
		SlowRequest:   cfg.SlowRequest,
		Cache:         dashboardCache,
		Outbox:        processor,
	})

	stopCh := make(chan struct{})
	workerDone := orchestrators.StartBackgroundWorker(cfg.WorkerInterval, stopCh,
		orchestrators.OutboxJob(processor),
		orchestrators.ExpiryJob(orchestrators.ExpireMembershipsDeps{MemberStore: stores.MemberStore}),
		web.SweepJob(),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		serveErr <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			close(stopCh)
			<-workerDone
			return err
		}
	case sig := <-sigCh:
		slog.Info("server_stopping", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
	close(stopCh)
	<-workerDone
	slog.Info("server_stopped")
	return nil
}
