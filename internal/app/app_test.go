package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/dogmatch/internal/config"
	"github.com/patric-chuzhbe/dogmatch/internal/db/memorystorage"
	"github.com/patric-chuzhbe/dogmatch/internal/fakeapi"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

func TestGetAvailableStorageType(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want int
	}{
		{name: "memory", cfg: config.Config{}, want: models.StorageTypeMemory},
		{name: "file", cfg: config.Config{FileStoragePath: "state.json"}, want: models.StorageTypeFile},
		{name: "bolt over file", cfg: config.Config{FileStoragePath: "state.json", BoltStoragePath: "state.db"}, want: models.StorageTypeBolt},
		{name: "redis over bolt", cfg: config.Config{BoltStoragePath: "state.db", RedisAddr: "localhost:6379"}, want: models.StorageTypeRedis},
		{name: "postgres first", cfg: config.Config{RedisAddr: "localhost:6379", DatabaseDSN: "postgres://x"}, want: models.StorageTypePostgresql},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getAvailableStorageType(&tt.cfg))
		})
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(fakeapi.New(fakeapi.SeedCatalog(30), []byte("k")).Handler())
	defer srv.Close()

	cfg := &config.Config{
		APIBaseURL:      srv.URL,
		LogLevel:        "error",
		FileStoragePath: filepath.Join(t.TempDir(), "state.json"),
	}

	first, err := New(ctx, cfg, WithoutLoggerInit())
	require.NoError(t, err)
	require.NoError(t, first.Session.Login(ctx, "Test User", "test@example.com"))
	require.NoError(t, first.Search.Search(ctx))
	dog := first.Search.State().Dogs[0]
	require.NoError(t, first.Favorites.Add(ctx, dog))
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, WithoutLoggerInit())
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.Session.IsAuthenticated())
	assert.Equal(t, []string{dog.ID}, second.Favorites.IDs())

	matched, err := second.Matcher.Generate(ctx)
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, dog.ID, matched.ID)
}

func TestWithStorage(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	app, err := New(context.Background(), &config.Config{APIBaseURL: "http://127.0.0.1:1"}, WithStorage(db), WithoutLoggerInit())
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.Session.IsAuthenticated())
	assert.Zero(t, app.Favorites.Count())
	assert.Equal(t, "http://127.0.0.1:1", app.Config().APIBaseURL)
}
