package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ambi360/ambi360-backend/config"
	"github.com/ambi360/ambi360-backend/internal/auth"
	"github.com/ambi360/ambi360-backend/internal/auth/domain"
	authrepo "github.com/ambi360/ambi360-backend/internal/auth/repository"
	authservice "github.com/ambi360/ambi360-backend/internal/auth/service"
	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/retention"
	"github.com/ambi360/ambi360-backend/internal/storage/postgres"
	toursrepo "github.com/ambi360/ambi360-backend/internal/tours/repository"
)

const usage = "usage: worker <migrate|seed-admin|retention [--once]>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{
		Level:     cfg.App.LogLevel,
		Format:    cfg.App.LogFormat,
		Timestamp: true,
		Output:    os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	switch os.Args[1] {
	case "migrate":
		err = postgres.Migrate(ctx, db)
		if err == nil {
			logging.Info().Msg("database schema applied")
		}
	case "seed-admin":
		err = seedAdmin(ctx, cfg, db)
	case "retention":
		err = runRetention(ctx, cfg, db, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logging.Fatal().Err(err).Str("command", os.Args[1]).Msg("worker command failed")
	}
}

func seedAdmin(ctx context.Context, cfg *config.Config, db *sql.DB) error {
	if cfg.App.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required to seed the admin user")
	}

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return err
	}
	svc := authservice.NewAuthService(authrepo.NewUserRepository(db), tokens, auth.NewHasher(cfg.Security.BcryptCost))

	created, err := svc.EnsureAdmin(ctx, domain.RegisterRequest{
		Username: cfg.App.AdminUsername,
		Email:    cfg.App.AdminEmail,
		Password: cfg.App.AdminPassword,
	})
	if err != nil {
		return err
	}
	if created {
		logging.Info().Str("username", cfg.App.AdminUsername).Msg("admin user created")
	} else {
		logging.Info().Msg("an admin user already exists, nothing to do")
	}
	return nil
}

func runRetention(ctx context.Context, cfg *config.Config, db *sql.DB, args []string) error {
	fs := flag.NewFlagSet("retention", flag.ContinueOnError)
	once := fs.Bool("once", false, "run a single purge and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := retention.NewScheduler(
		toursrepo.NewAccessLogRepository(db),
		cfg.App.AccessLogRetentionDays,
		cfg.App.RetentionCron,
	)
	if *once {
		_, err := s.RunOnce(ctx)
		return err
	}
	return s.Run(ctx)
}
