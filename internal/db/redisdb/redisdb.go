// Package redisdb keeps state in Redis under a common key prefix.
package redisdb

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/patric-chuzhbe/dogmatch/internal/db/storage"
)

const keyPrefix = "dogmatch:"

// RedisDB stores every key as a Redis string under a common prefix.
type RedisDB struct {
	client *redis.Client
	prefix string
}

// InitOption customizes New.
type InitOption func(*RedisDB)

// WithKeyPrefix overrides the prefix prepended to every key.
func WithKeyPrefix(prefix string) InitOption {
	return func(db *RedisDB) {
		db.prefix = prefix
	}
}

// New connects to addr and pings it within connectionTimeout.
func New(ctx context.Context, addr string, connectionTimeout time.Duration, optionsProto ...InitOption) (*RedisDB, error) {
	db := &RedisDB{
		client: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: connectionTimeout,
		}),
		prefix: keyPrefix,
	}
	for _, protoOption := range optionsProto {
		protoOption(db)
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.client.Close()
		return nil, err
	}

	return db, nil
}

// Get reads the prefixed key.
func (db *RedisDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := db.client.Get(ctx, db.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapClosed(err)
	}

	return value, true, nil
}

// Set writes the prefixed key without expiry.
func (db *RedisDB) Set(ctx context.Context, key string, value []byte) error {
	return wrapClosed(db.client.Set(ctx, db.prefix+key, value, 0).Err())
}

// Delete removes the prefixed key.
func (db *RedisDB) Delete(ctx context.Context, key string) error {
	return wrapClosed(db.client.Del(ctx, db.prefix+key).Err())
}

// Ping checks the connection.
func (db *RedisDB) Ping(ctx context.Context) error {
	return wrapClosed(db.client.Ping(ctx).Err())
}

// Close closes the client.
func (db *RedisDB) Close() error {
	return db.client.Close()
}

func wrapClosed(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return storage.ErrClosed
	}

	return err
}
