package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/dogmatch/internal/db/storage"
)

func TestBoltDB(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.bolt")

	db, err := New(path, time.Second)
	require.NoError(t, err)

	_, found, err := db.Get(ctx, "favorites")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.Set(ctx, "favorites", []byte(`[{"id":"dog1"}]`)))
	require.NoError(t, db.Set(ctx, "favorites", []byte(`[]`)))

	value, found, err := db.Get(ctx, "favorites")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(value), "Set() should overwrite the whole value")

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.Delete(ctx, "favorites"))
	require.NoError(t, db.Delete(ctx, "never-there"))
	require.NoError(t, db.Set(ctx, "user", []byte(`{"name":"Ann"}`)))
	require.NoError(t, db.Close())

	reopened, err := New(path, time.Second)
	require.NoError(t, err)
	defer reopened.Close()

	_, found, err = reopened.Get(ctx, "favorites")
	require.NoError(t, err)
	assert.False(t, found)

	value, found, err = reopened.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"name":"Ann"}`, string(value))

	assert.ErrorIs(t, db.Set(ctx, "user", nil), storage.ErrClosed)
}
