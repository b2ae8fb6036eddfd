// Package storage declares the key-value contract the client persists its
// session and favorites through. Every backend in internal/db implements it.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage is closed")

// Storage is a string-keyed store of opaque serialized values. Set always
// overwrites the whole value; Delete of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte) error

	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	Close() error
}
