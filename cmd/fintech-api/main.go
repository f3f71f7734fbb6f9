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
	"golang.org/x/sync/errgroup"

	"fintechapi/internal/auth"
	"fintechapi/internal/config"
	"fintechapi/internal/core"
	apphttp "fintechapi/internal/http"
	applog "fintechapi/internal/log"
	"fintechapi/internal/services"
	"fintechapi/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.Setup(applog.FromEnv())

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	hasher := auth.NewHasher(cfg.BCryptCost)
	sessions := auth.NewSessionStore(10000, cfg.SessionTTL)
	defer sessions.Close()

	users := services.NewUserService(repo, hasher)
	catalog := services.NewCatalogService(repo)
	expenses := services.NewLedgerService(repo, core.RecordExpense)
	incomes := services.NewLedgerService(repo, core.RecordIncome)

	srv := apphttp.NewServer(cfg, users, catalog, expenses, incomes, sessions)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintech-api",
			"port", cfg.Port,
			"auth_mode", cfg.AuthMode,
			"db_path", cfg.SQLiteDBPath,
			applog.FieldComponent, applog.ComponentApp)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
