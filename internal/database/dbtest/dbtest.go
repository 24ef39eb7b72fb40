// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/config"
	"github.com/stemsi/faculty-backend/internal/database"
)

// Config returns a configuration pointing at a fresh sqlite file and upload
// directory under t.TempDir().
func Config(t testing.TB) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		GinMode:        "test",
		DBDriver:       config.DriverSQLite,
		DatabaseURL:    filepath.Join(dir, "faculty.db"),
		MaxDBConns:     1,
		UploadDir:      filepath.Join(dir, "uploads"),
		MaxUploadBytes: 16 << 20,
	}
}

// Open migrates and opens the database described by cfg. It is closed when
// the test ends.
func Open(t testing.TB, cfg *config.Config) *sqlx.DB {
	t.Helper()
	log := zerolog.Nop()

	if err := database.Migrate(cfg, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// New opens a migrated database in a fresh temp directory.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	return Open(t, Config(t))
}
