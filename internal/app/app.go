// Package app builds every client component once, wires them together and
// hands them out by reference. It owns the storage backend and the logger.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/dogmatch/internal/apiclient"
	"github.com/patric-chuzhbe/dogmatch/internal/config"
	"github.com/patric-chuzhbe/dogmatch/internal/db/boltdb"
	"github.com/patric-chuzhbe/dogmatch/internal/db/jsondb"
	"github.com/patric-chuzhbe/dogmatch/internal/db/memorystorage"
	"github.com/patric-chuzhbe/dogmatch/internal/db/postgresdb"
	"github.com/patric-chuzhbe/dogmatch/internal/db/redisdb"
	"github.com/patric-chuzhbe/dogmatch/internal/db/storage"
	"github.com/patric-chuzhbe/dogmatch/internal/favorites"
	"github.com/patric-chuzhbe/dogmatch/internal/logger"
	"github.com/patric-chuzhbe/dogmatch/internal/matcher"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/search"
	"github.com/patric-chuzhbe/dogmatch/internal/session"
)

// App holds the single instance of each store.
type App struct {
	cfg       *config.Config
	db        storage.Storage
	API       *apiclient.Client
	Session   *session.Store
	Favorites *favorites.Store
	Search    *search.Controller
	Matcher   *matcher.Orchestrator
}

type initOptions struct {
	db         storage.Storage
	skipLogger bool
}

// InitOption configures New.
type InitOption func(*initOptions)

// WithStorage uses db instead of the backend selected by the configuration.
func WithStorage(db storage.Storage) InitOption {
	return func(options *initOptions) {
		options.db = db
	}
}

// WithoutLoggerInit leaves the process logger as it is.
func WithoutLoggerInit() InitOption {
	return func(options *initOptions) {
		options.skipLogger = true
	}
}

// New initializes the logger, opens storage, builds the API client and
// rehydrates the session and favorites stores.
func New(ctx context.Context, cfg *config.Config, opts ...InitOption) (*App, error) {
	options := &initOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if !options.skipLogger {
		if err := logger.Init(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	app := &App{cfg: cfg, db: options.db}

	var err error
	if app.db == nil {
		app.db, err = getStorageByType(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	app.API, err = apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	app.Session, err = session.New(ctx, app.API, app.db, session.WithCredentialJar(app.API))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("restoring session: %w", err), app.db.Close())
	}

	app.Favorites, err = favorites.New(ctx, app.db)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("restoring favorites: %w", err), app.db.Close())
	}

	app.Search = search.New(app.API)
	app.Matcher = matcher.New(app.API, app.Favorites)

	logger.Log.Debugw(
		"client ready",
		"api", cfg.APIBaseURL,
		"storage", storageName(getAvailableStorageType(cfg)),
		"authenticated", app.Session.IsAuthenticated(),
		"favorites", app.Favorites.Count(),
	)

	return app, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Close releases storage and flushes the logger.
func (a *App) Close() error {
	err := a.db.Close()
	if syncErr := logger.Sync(); syncErr != nil {
		err = errors.Join(err, fmt.Errorf("logger sync: %w", syncErr))
	}

	return err
}

func getAvailableStorageType(cfg *config.Config) int {
	switch {
	case cfg.DatabaseDSN != "":
		return models.StorageTypePostgresql
	case cfg.RedisAddr != "":
		return models.StorageTypeRedis
	case cfg.BoltStoragePath != "":
		return models.StorageTypeBolt
	case cfg.FileStoragePath != "":
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func storageName(storageType int) string {
	switch storageType {
	case models.StorageTypePostgresql:
		return "postgres"
	case models.StorageTypeRedis:
		return "redis"
	case models.StorageTypeBolt:
		return "bolt"
	case models.StorageTypeFile:
		return "file"
	case models.StorageTypeMemory:
		return "memory"
	}

	return "unknown"
}

func getStorageByType(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(ctx, cfg.DatabaseDSN, cfg.DBConnectionTimeout)

	case models.StorageTypeRedis:
		return redisdb.New(ctx, cfg.RedisAddr, cfg.DBConnectionTimeout)

	case models.StorageTypeBolt:
		return boltdb.New(cfg.BoltStoragePath, cfg.DBConnectionTimeout)

	case models.StorageTypeFile:
		return jsondb.New(cfg.FileStoragePath)
	}

	return memorystorage.New()
}
