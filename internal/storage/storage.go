package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the aggregate persistence interface implemented by both the
// in-memory and Postgres backends.
type Storage interface {
	ComparisonsStorage

	// Close releases any underlying connection (no-op for memory mode).
	Close() error
}

// ComparisonsStorage persists the audit history of bundle comparisons: the
// request that was planned and the outcome from every solver that ran
// against it.
type ComparisonsStorage interface {
	// CreateComparison stores a new comparison record.
	CreateComparison(ctx context.Context, rec *ComparisonRecord) error

	// GetComparison returns a comparison record by ID.
	GetComparison(ctx context.Context, id uuid.UUID) (*ComparisonRecord, error)

	// ListComparisons returns comparison records ordered by CreatedAt DESC.
	ListComparisons(ctx context.Context, limit, offset int) ([]ComparisonRecord, error)

	// DeleteComparison removes a comparison record (and its export data).
	DeleteComparison(ctx context.Context, id uuid.UUID) error

	// SetComparisonExport attaches a generated PDF/CSV export to an
	// already-persisted comparison record.
	SetComparisonExport(ctx context.Context, id uuid.UUID, export ExportUpdate) error
}

// ExportUpdate carries the result of generating a report export for a
// previously-recorded comparison.
type ExportUpdate struct {
	Format    string
	ObjectKey *string // set in S3 mode
	Data      []byte  // set in local mode
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string
}

// ComparisonRecord is the persisted outcome of one planning request: the
// inputs, the chosen solution, and an optional exported report.
type ComparisonRecord struct {
	ID          uuid.UUID
	RequestedBy string // bearer-token subject, "" when auth is disabled

	People                 int
	MaxPricePerPersonCents int
	RecommendedSolver      string // MILP | GREEDY | BRUTE_FORCE
	RecommendedScore       int

	RequestPayload []byte // JSON snapshot of the planning request
	ResultPayload  []byte // JSON snapshot of the full BundleComparison response

	Format    string  // "pdf" or "csv", empty if no export was generated
	ObjectKey *string // S3 object key (nil for memory mode or no export)
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Data []byte // raw export bytes, memory mode only
}
