// Package postgres provides the PostgreSQL connection pool, the snapshot
// loader reading the concept vocabulary from it, and the schema migrator.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexicon-health/lexicon/internal/config"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// DSN renders the connection URL for cfg with the given scheme ("postgres"
// for pgx, "pgx5" for golang-migrate).
func DSN(scheme string, cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.DBName,
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// NewPool connects a pgx pool with the configured limits and verifies the
// connection with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(DSN("postgres", cfg))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "invalid postgres configuration")
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "cannot create postgres pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "cannot connect to postgres")
	}
	return pool, nil
}
