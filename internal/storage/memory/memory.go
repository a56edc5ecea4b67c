// Package memory implements internal/storage's interfaces with plain Go
// maps guarded by a mutex, used when no DATABASE_URL is configured.
package memory

import (
	"github.com/fdg312/health-hub/internal/storage"
)

// MemoryStorage is the in-memory Storage implementation.
type MemoryStorage struct {
	*ComparisonsMemoryStorage
}

// NewMemoryStorage returns a MemoryStorage ready for use.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		ComparisonsMemoryStorage: NewComparisonsMemoryStorage(),
	}
}

func (s *MemoryStorage) Close() error { return nil }

var _ storage.Storage = (*MemoryStorage)(nil)
