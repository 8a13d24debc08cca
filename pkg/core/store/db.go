package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// Schema creates the tables used by FactsCache and StatementRepo.
const Schema = `
CREATE TABLE IF NOT EXISTS company_facts (
	cik         TEXT PRIMARY KEY,
	entity_name TEXT,
	data        JSONB NOT NULL,
	fetched_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quarterly_statements (
	id          UUID PRIMARY KEY,
	cik         TEXT NOT NULL,
	entity_name TEXT,
	table_json  JSONB NOT NULL,
	source      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_quarterly_statements_cik_created
	ON quarterly_statements (cik, created_at DESC);
`

// InitDB initializes the database connection pool using the DATABASE_URL environment variable
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		pool, err = openPool(ctx, os.Getenv("DATABASE_URL"))
	})
	return err
}

// openPool connects and applies Schema. A pool whose schema could not be
// applied is closed, and nil is returned with the error.
func openPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if _, err := p.Exec(ctx, Schema); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return p, nil
}

// GetPool returns the database connection pool, or nil when InitDB was not
// called or failed.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool. It is safe to call without one.
func Close() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}
