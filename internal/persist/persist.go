// Package persist mirrors one in-memory value into one storage key as JSON.
// Stores call Save after every successful mutation, which keeps the backend
// swappable without touching store logic.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a stored value that could not be decoded.
var ErrCorrupt = errors.New("persisted value is corrupt")

type keyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Mirror reads and writes values of type T under a fixed key.
type Mirror[T any] struct {
	db  keyValueStore
	key string
}

// New returns a mirror of key in db.
func New[T any](db keyValueStore, key string) *Mirror[T] {
	return &Mirror[T]{db: db, key: key}
}

// Key returns the storage key the mirror writes to.
func (m *Mirror[T]) Key() string {
	return m.key
}

// Load returns the stored value. found is false when the key is absent. A
// value that does not decode is reported as ErrCorrupt.
func (m *Mirror[T]) Load(ctx context.Context) (value T, found bool, err error) {
	raw, found, err := m.db.Get(ctx, m.key)
	if err != nil || !found {
		return value, false, err
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		var zero T
		return zero, false, fmt.Errorf("%w: key %q: %v", ErrCorrupt, m.key, err)
	}

	return value, true, nil
}

// Save overwrites the stored value.
func (m *Mirror[T]) Save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("persist: encoding %q: %w", m.key, err)
	}

	return m.db.Set(ctx, m.key, raw)
}

// Remove deletes the key.
func (m *Mirror[T]) Remove(ctx context.Context) error {
	return m.db.Delete(ctx, m.key)
}
