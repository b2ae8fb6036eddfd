package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/dogmatch/internal/db/memorystorage"
	"github.com/patric-chuzhbe/dogmatch/internal/mockstorage"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

var (
	rex = models.Dog{ID: "dog1", Name: "Rex", Breed: "Pug", Age: 3, ZipCode: "12345", Img: "https://img/1"}
	ace = models.Dog{ID: "dog2", Name: "Ace", Breed: "Beagle", Age: 1, ZipCode: "54321", Img: "https://img/2"}
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func newMemoryStore(t *testing.T) (*Store, *memorystorage.MemoryStorage) {
	t.Helper()
	db, err := memorystorage.New()
	require.NoError(t, err)
	store, err := New(context.Background(), db)
	require.NoError(t, err)
	return store, db
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	once, _ := newMemoryStore(t)
	twice, _ := newMemoryStore(t)

	require.NoError(t, once.Add(ctx, rex))
	require.NoError(t, twice.Add(ctx, rex))
	require.NoError(t, twice.Add(ctx, rex))

	assert.Equal(t, once.List(), twice.List())
	assert.Equal(t, 1, twice.Count())
	assert.True(t, twice.IsFavorite("dog1"))
}

func TestEveryMutationPersistsFullSet(t *testing.T) {
	ctx := context.Background()
	db := &mockstorage.StorageMock{}
	db.On("Get", mock.Anything, Key).Return(nil, false, nil)

	store, err := New(ctx, db)
	require.NoError(t, err)

	db.On("Set", mock.Anything, Key, mustJSON(t, []models.Dog{rex})).Return(nil).Twice()
	require.NoError(t, store.Add(ctx, rex))
	require.NoError(t, store.Add(ctx, rex))

	db.On("Set", mock.Anything, Key, mustJSON(t, []models.Dog{rex, ace})).Return(nil).Twice()
	require.NoError(t, store.Add(ctx, ace))
	require.NoError(t, store.Remove(ctx, "missing"))

	db.On("Set", mock.Anything, Key, mustJSON(t, []models.Dog{ace})).Return(nil).Once()
	require.NoError(t, store.Remove(ctx, "dog1"))

	db.On("Set", mock.Anything, Key, []byte("[]")).Return(nil).Once()
	require.NoError(t, store.Clear(ctx))

	db.AssertExpectations(t)
	db.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryStore(t)
	require.NoError(t, store.Add(ctx, rex))

	before := store.List()
	require.NoError(t, store.Remove(ctx, "nobody"))

	assert.Equal(t, before, store.List())
	assert.Equal(t, 1, store.Count())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store, db := newMemoryStore(t)
	require.NoError(t, store.Add(ctx, rex))
	require.NoError(t, store.Add(ctx, ace))

	require.NoError(t, store.Clear(ctx))
	assert.Zero(t, store.Count())
	assert.False(t, store.IsFavorite("dog1"))

	raw, found, err := db.Get(ctx, Key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(raw))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, db := newMemoryStore(t)
	require.NoError(t, store.Add(ctx, ace))
	require.NoError(t, store.Add(ctx, rex))

	rehydrated, err := New(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, []string{"dog2", "dog1"}, rehydrated.IDs())
	assert.Equal(t, store.List(), rehydrated.List())
}

func TestRehydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicates", func(t *testing.T) {
		db := &mockstorage.StorageMock{}
		db.On("Get", mock.Anything, Key).Return(mustJSON(t, []models.Dog{rex, ace, rex}), true, nil)

		store, err := New(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, []string{"dog1", "dog2"}, store.IDs())
	})

	t.Run("unparseable", func(t *testing.T) {
		db := &mockstorage.StorageMock{}
		db.On("Get", mock.Anything, Key).Return([]byte(`{"oops":`), true, nil)

		store, err := New(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, store.Count())
		assert.Empty(t, store.IDs())
	})

	t.Run("storage failure", func(t *testing.T) {
		db := &mockstorage.StorageMock{}
		db.On("Get", mock.Anything, Key).Return(nil, false, errors.New("gone"))

		_, err := New(ctx, db)
		assert.Error(t, err)
	})
}

func TestFailedPersistKeepsSet(t *testing.T) {
	ctx := context.Background()
	db := &mockstorage.StorageMock{}
	db.On("Get", mock.Anything, Key).Return(nil, false, nil)
	db.On("Set", mock.Anything, Key, mock.Anything).Return(errors.New("read-only"))

	store, err := New(ctx, db)
	require.NoError(t, err)

	assert.Error(t, store.Add(ctx, rex))
	assert.False(t, store.IsFavorite("dog1"))
	assert.Equal(t, "read-only", store.State().Err)
}
