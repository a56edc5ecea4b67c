package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/health-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresComparisonsStorage is a Postgres-backed ComparisonsStorage.
type PostgresComparisonsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresComparisonsStorage(pool *pgxpool.Pool) *PostgresComparisonsStorage {
	return &PostgresComparisonsStorage{pool: pool}
}

func (s *PostgresComparisonsStorage) CreateComparison(ctx context.Context, rec *storage.ComparisonRecord) error {
	query := `
		INSERT INTO comparisons (
			id, requested_by, people, max_price_per_person_cents,
			recommended_solver, recommended_score,
			request_payload, result_payload,
			format, object_key, size_bytes, status, error,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		rec.ID,
		rec.RequestedBy,
		rec.People,
		rec.MaxPricePerPersonCents,
		rec.RecommendedSolver,
		rec.RecommendedScore,
		rec.RequestPayload,
		rec.ResultPayload,
		rec.Format,
		rec.ObjectKey,
		rec.SizeBytes,
		rec.Status,
		rec.Error,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comparison: %w", err)
	}
	return nil
}

func (s *PostgresComparisonsStorage) GetComparison(ctx context.Context, id uuid.UUID) (*storage.ComparisonRecord, error) {
	query := `
		SELECT id, requested_by, people, max_price_per_person_cents,
		       recommended_solver, recommended_score,
		       request_payload, result_payload,
		       format, object_key, size_bytes, status, error,
		       created_at, updated_at
		FROM comparisons
		WHERE id = $1
	`

	var rec storage.ComparisonRecord
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.RequestedBy,
		&rec.People,
		&rec.MaxPricePerPersonCents,
		&rec.RecommendedSolver,
		&rec.RecommendedScore,
		&rec.RequestPayload,
		&rec.ResultPayload,
		&rec.Format,
		&rec.ObjectKey,
		&rec.SizeBytes,
		&rec.Status,
		&rec.Error,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("comparison not found: %w", err)
	}
	return &rec, nil
}

func (s *PostgresComparisonsStorage) ListComparisons(ctx context.Context, limit, offset int) ([]storage.ComparisonRecord, error) {
	query := `
		SELECT id, requested_by, people, max_price_per_person_cents,
		       recommended_solver, recommended_score,
		       request_payload, result_payload,
		       format, object_key, size_bytes, status, error,
		       created_at, updated_at
		FROM comparisons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	defer rows.Close()

	var out []storage.ComparisonRecord
	for rows.Next() {
		var rec storage.ComparisonRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestedBy,
			&rec.People,
			&rec.MaxPricePerPersonCents,
			&rec.RecommendedSolver,
			&rec.RecommendedScore,
			&rec.RequestPayload,
			&rec.ResultPayload,
			&rec.Format,
			&rec.ObjectKey,
			&rec.SizeBytes,
			&rec.Status,
			&rec.Error,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *PostgresComparisonsStorage) DeleteComparison(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM comparisons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comparison: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comparison not found")
	}
	return nil
}

func (s *PostgresComparisonsStorage) SetComparisonExport(ctx context.Context, id uuid.UUID, export storage.ExportUpdate) error {
	query := `
		UPDATE comparisons
		SET format = $2, object_key = $3, size_bytes = $4, status = $5, error = $6, updated_at = NOW()
		WHERE id = $1
	`
	result, err := s.pool.Exec(ctx, query, id, export.Format, export.ObjectKey, export.SizeBytes, export.Status, export.Error)
	if err != nil {
		return fmt.Errorf("set comparison export: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comparison not found")
	}
	return nil
}
