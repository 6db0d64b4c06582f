package postgres

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // registers the file:// source

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Migrate applies all pending schema migrations from cfg.MigrationPath.
// A database already at the latest version is not an error.
func Migrate(cfg config.DatabaseConfig, log logging.Logger) error {
	m, err := migrate.New("file://"+cfg.MigrationPath, DSN("pgx5", cfg))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "cannot initialise migrator")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn("migration source close failed", logging.Err(srcErr))
		}
		if dbErr != nil {
			log.Warn("migration database close failed", logging.Err(dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database schema is up to date")
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "schema migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "cannot read schema version")
	}
	log.Info("database schema migrated",
		logging.Int("version", int(version)), logging.Bool("dirty", dirty))
	return nil
}
