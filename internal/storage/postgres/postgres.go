// Package postgres stores characters, combat sessions and exploration state in
// PostgreSQL through pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/agentrpg/internal/config"
)

// Pool is the connection pool shared by the character, session and exploration
// repositories. main also pings it from the db-health ticker.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool dials the database described by cfg and pings it once before returning.
//
// Precondition: cfg.DSN() must be parseable by pgxpool.
// Postcondition: on success the pool has answered a ping; on failure nothing is left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable at startup: %w", err)
	}
	return &Pool{pool: pool}, nil
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database config for %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	return pc, nil
}

// Health pings the database, giving up after timeout. It backs GET /health and the
// db-health ticker.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() { p.pool.Close() }

// DB exposes the raw pool to the repository constructors.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }

// isDuplicateKeyError reports a unique_violation (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
