package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-hub/internal/storage"
	"github.com/google/uuid"
)

// ComparisonsMemoryStorage is an in-memory ComparisonsStorage, used when no
// DATABASE_URL is configured.
type ComparisonsMemoryStorage struct {
	mu          sync.RWMutex
	comparisons map[uuid.UUID]*storage.ComparisonRecord
}

func NewComparisonsMemoryStorage() *ComparisonsMemoryStorage {
	return &ComparisonsMemoryStorage{
		comparisons: make(map[uuid.UUID]*storage.ComparisonRecord),
	}
}

func (s *ComparisonsMemoryStorage) CreateComparison(ctx context.Context, rec *storage.ComparisonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	s.comparisons[rec.ID] = &stored
	return nil
}

func (s *ComparisonsMemoryStorage) GetComparison(ctx context.Context, id uuid.UUID) (*storage.ComparisonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.comparisons[id]
	if !ok {
		return nil, fmt.Errorf("comparison not found")
	}
	copied := *rec
	return &copied, nil
}

func (s *ComparisonsMemoryStorage) ListComparisons(ctx context.Context, limit, offset int) ([]storage.ComparisonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]storage.ComparisonRecord, 0, len(s.comparisons))
	for _, rec := range s.comparisons {
		all = append(all, *rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := offset
	if start > len(all) {
		return []storage.ComparisonRecord{}, nil
	}
	end := start + limit
	if end > len(all) || limit <= 0 {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *ComparisonsMemoryStorage) DeleteComparison(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comparisons[id]; !ok {
		return fmt.Errorf("comparison not found")
	}
	delete(s.comparisons, id)
	return nil
}

func (s *ComparisonsMemoryStorage) SetComparisonExport(ctx context.Context, id uuid.UUID, export storage.ExportUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comparisons[id]
	if !ok {
		return fmt.Errorf("comparison not found")
	}

	rec.Format = export.Format
	rec.ObjectKey = export.ObjectKey
	rec.Data = export.Data
	rec.SizeBytes = export.SizeBytes
	rec.Status = export.Status
	rec.Error = export.Error
	rec.UpdatedAt = time.Now()
	return nil
}
