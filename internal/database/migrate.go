package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator builds a migrate instance over the embedded migrations for the
// configured driver. Callers own the returned instance and must Close it.
func NewMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	dir := "migrations/sqlite"
	if cfg.DBDriver == config.DriverPostgres {
		dir = "migrations/postgres"
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	dbURL, err := migrationURL(cfg)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

// Migrate applies all pending up migrations.
func Migrate(cfg *config.Config, log zerolog.Logger) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema up to date")
	return nil
}

func migrationURL(cfg *config.Config) (string, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		if err := ensureSQLiteDir(cfg.DatabaseURL); err != nil {
			return "", err
		}
		return "sqlite3://" + sqlitePath(cfg.DatabaseURL), nil
	case config.DriverPostgres:
		for _, scheme := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(cfg.DatabaseURL, scheme) {
				return "pgx5://" + strings.TrimPrefix(cfg.DatabaseURL, scheme), nil
			}
		}
		return "", fmt.Errorf("DATABASE_URL must be a postgres:// URL for driver %q", cfg.DBDriver)
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
