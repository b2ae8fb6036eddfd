package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/dogmatch/internal/db/jsondb"
)

// MemoryStorage keeps state for the lifetime of the process only.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty store.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewInMemory(),
	}, nil
}

// Close is a no-op.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping always succeeds.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
