// Package dbtest opens throwaway SQLite databases with the full schema for
// package tests.
package dbtest

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"moviedb/internal/config"
	"moviedb/internal/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// Config returns a SQLite configuration rooted in a per-test directory.
func Config(t testing.TB) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver:             config.DriverSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "movies.db"),
		MaxOpenConns:       1,
		MaxIdleConns:       1,
		QueryTimeout:       5 * time.Second,
		SlowQueryThreshold: time.Second,
	}
}

func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.WarnLevel)
	return log
}

// New returns a migrated database that is closed when the test ends.
func New(t testing.TB) *database.Database {
	t.Helper()

	cfg := Config(t)
	db, err := database.Open(sqlite.Open(cfg.DSN()), cfg, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}
