package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"pennywise/internal/config"
	"pennywise/internal/logger"
)

func init() {
	logger.Init("test")
}

func mockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	m, err := open(postgres.New(postgres.Config{Conn: conn}), &Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return m, mock
}

func TestConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "budget", DBPassword: "p@ss word",
		DBName: "pennywise", DBSSLMode: "disable",
	})

	assert.Equal(t, "host=db port=5432 user=budget password=p@ss word dbname=pennywise sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://budget:p%40ss%20word@db:5432/pennywise?sslmode=disable", cfg.URL())
	assert.Equal(t, "file://migrations", cfg.MigrationsURL)
}

func TestWaitForDatabase(t *testing.T) {
	t.Run("succeeds once the database answers", func(t *testing.T) {
		m, mock := mockManager(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		err := m.WaitForDatabase(context.Background(), 3, time.Millisecond)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		m, mock := mockManager(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := m.WaitForDatabase(context.Background(), 2, time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		m, mock := mockManager(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := m.WaitForDatabase(ctx, 5, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
