package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ambi360/ambi360-backend/config"
	"github.com/ambi360/ambi360-backend/internal/bootstrap"
	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/storage/postgres"
)

const serviceName = "ambi360-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{
		Level:     cfg.App.LogLevel,
		Format:    cfg.App.LogFormat,
		Timestamp: true,
		Caller:    !cfg.IsProduction(),
		Output:    os.Stdout,
	})
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db.SQL); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate database")
		}
		logging.Info().Msg("database schema applied")
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	router, err := bootstrap.BuildRouter(ctx, bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().
			Str("port", cfg.Server.Port).
			Str("env", cfg.App.Environment).
			Str("version", cfg.App.Version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
