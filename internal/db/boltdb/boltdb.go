// Package boltdb keeps state in an embedded bbolt database file.
package boltdb

import (
	"context"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/patric-chuzhbe/dogmatch/internal/db/storage"
)

const boltBucketState = "state" // key: state key -> serialized value

// BoltDB stores every key in one bucket of a bbolt file.
type BoltDB struct {
	storage *bbolt.DB
}

// New opens (or creates) the database at path.
func New(path string, openTimeout time.Duration) (*BoltDB, error) {
	if openTimeout <= 0 {
		openTimeout = time.Second
	}

	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketState))
		return err
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &BoltDB{storage: instance}, nil
}

// Get reads key from the bucket.
func (b *BoltDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte

	err := b.storage.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(boltBucketState)).Get([]byte(key))
		if data != nil {
			value = make([]byte, len(data))
			copy(value, data)
		}
		return nil
	})
	if err != nil {
		return nil, false, wrapClosed(err)
	}

	return value, value != nil, nil
}

// Set writes value under key in one transaction.
func (b *BoltDB) Set(ctx context.Context, key string, value []byte) error {
	err := b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketState)).Put([]byte(key), value)
	})

	return wrapClosed(err)
}

// Delete removes key; a missing key is not an error.
func (b *BoltDB) Delete(ctx context.Context, key string) error {
	err := b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketState)).Delete([]byte(key))
	})

	return wrapClosed(err)
}

// Ping reports whether the database is still open.
func (b *BoltDB) Ping(ctx context.Context) error {
	return wrapClosed(b.storage.View(func(tx *bbolt.Tx) error { return nil }))
}

// Close releases the file lock.
func (b *BoltDB) Close() error {
	return b.storage.Close()
}

func wrapClosed(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return storage.ErrClosed
	}

	return err
}
