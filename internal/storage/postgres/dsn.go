package postgres

import (
	"fmt"

	"github.com/ambi360/ambi360-backend/config"
)

// DSN prefers an explicit DB_DSN and otherwise builds a keyword/value string
// understood by both pgx and lib/pq.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode,
	)
}
