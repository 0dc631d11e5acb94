// Package repository provides the PostgreSQL-backed card store.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/config"
)

// DB wraps the pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB opens a connection pool and verifies it with a ping.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{pool: pool, logger: logger}, nil
}

// Pool exposes the underlying pgx pool for callers issuing their own SQL.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Stats reports connection pool statistics.
func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

// Close shuts the pool down.
func (db *DB) Close() {
	db.pool.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS cards (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	tier    INTEGER NOT NULL CHECK (tier BETWEEN 1 AND 5),
	attack  INTEGER NOT NULL CHECK (attack >= 0),
	health  INTEGER NOT NULL CHECK (health >= 1),
	color   TEXT NOT NULL,
	tags    TEXT[] NOT NULL DEFAULT '{}',
	ability TEXT NOT NULL DEFAULT '',
	copies  INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS cards_tier_idx ON cards (tier);
`

// EnsureSchema creates the cards table when it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
