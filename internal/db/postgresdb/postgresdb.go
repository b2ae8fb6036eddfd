// Package postgresdb keeps state in a PostgreSQL table, one row per key.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/dogmatch/internal/db/postgresdb/migrations"
)

// PostgresDB is a PostgreSQL-backed implementation of storage.Storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// New opens the database, applies the embedded migrations and returns a
// ready PostgresDB. Optionally accepts initialization options, such as
// WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("postgresdb: ping: %w", err)
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("postgresdb: goose.SetDialect(): %w", err)
	}

	if err := goose.UpContext(ctx, result.database, "."); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("postgresdb: goose.UpContext(): %w", err)
	}

	return result, nil
}

// Get returns the value stored under key.
func (db *PostgresDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT "value" FROM client_state WHERE "key" = $1`,
		key,
	)
	var value string
	err := row.Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return []byte(value), true, nil
}

// Set upserts the value stored under key.
func (db *PostgresDB) Set(ctx context.Context, key string, value []byte) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO client_state ("key", "value", updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT ("key") DO UPDATE
				SET
					"value" = EXCLUDED."value",
					updated_at = EXCLUDED.updated_at;
		`,
		key,
		string(value),
	)

	return err
}

// Delete removes key; a missing key is not an error.
func (db *PostgresDB) Delete(ctx context.Context, key string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM client_state WHERE "key" = $1`,
		key,
	)

	return err
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every public table before migrating. Meant for tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// Ping verifies connectivity within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.connectionTimeout <= 0 {
		return db.database.PingContext(ctx)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("postgresdb: resetDB(): %w", err)
	}
	return nil
}
