package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"storefront-be/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate applies the embedded migrations. Closing the migrator closes db, so
// callers hand in a connection they do not reuse afterwards.
func Migrate(db *sql.DB, mode string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("init migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	switch mode {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.L().Info("migrations already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", mode, err)
	}

	version, dirty, _ := m.Version()
	logger.L().Info("migrations applied",
		zap.String("mode", mode),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
