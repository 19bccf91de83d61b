package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	postgresDriver = "pgx"
	// DefaultPostgresDSN is used when the configured DSN is empty.
	DefaultPostgresDSN = "postgres://localhost/selfsim?sslmode=disable"
)

// PostgresPresetStore implements PresetStore on a shared postgres database.
type PostgresPresetStore struct {
	sqlPresetStore
}

// NewPostgresPresetStore connects to dsn, pings it and applies the schema.
func NewPostgresPresetStore(ctx context.Context, dsn string) (*PostgresPresetStore, error) {
	if dsn == "" {
		dsn = DefaultPostgresDSN
	}
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := InitSchema(ctx, db, dialectPostgres); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresPresetStore{
		sqlPresetStore: sqlPresetStore{db: db, dialect: dialectPostgres},
	}, nil
}
