package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/config"
)

func TestDSN(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		cfg := &config.DatabaseConfig{DSN: "postgres://u:p@db:5432/ambi360", Host: "ignored"}
		assert.Equal(t, "postgres://u:p@db:5432/ambi360", DSN(cfg))
	})

	t.Run("built from parts", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Name: "ambi360"}
		assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=ambi360 sslmode=disable", DSN(cfg))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("applies schema in a transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`create table if not exists users`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, Migrate(context.Background(), db))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`create table if not exists users`).WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		err := Migrate(context.Background(), db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "apply schema")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
