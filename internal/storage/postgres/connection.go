package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ambi360/ambi360-backend/config"
	_ "github.com/lib/pq"
)

// NewConnection opens a lib/pq backed *sql.DB. The API server shares its
// pgx pool instead; this connection serves the worker commands.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
