// Package mockstorage provides a testify-based mock of storage.Storage. Store
// tests use it to assert exactly what gets written after each mutation.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// StorageMock is a testify mock implementing storage.Storage.
type StorageMock struct {
	mock.Mock

	// OnPing, when set, replaces the generic mock handler for Ping so tests
	// that do not care about health checks need no expectation for it.
	OnPing func(ctx context.Context) error
}

// Get mocks reading a key.
func (m *StorageMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1), args.Error(2)
}

// Set mocks writing a key.
func (m *StorageMock) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete mocks removing a key.
func (m *StorageMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Ping mocks a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the backend.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
