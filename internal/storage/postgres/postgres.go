// Package postgres implements internal/storage's interfaces on top of
// pgx/v5, used whenever DATABASE_URL is configured.
package postgres

import (
	"context"

	"github.com/fdg312/health-hub/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the Postgres-backed Storage implementation.
type PostgresStorage struct {
	*PostgresComparisonsStorage
	pool *pgxpool.Pool
}

// New opens a connection pool against databaseURL and verifies it with a
// Ping before returning.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		PostgresComparisonsStorage: NewPostgresComparisonsStorage(pool),
		pool:                       pool,
	}, nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

var _ storage.Storage = (*PostgresStorage)(nil)
