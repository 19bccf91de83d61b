package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/selfsim/internal/constants"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLitePresetStore implements PresetStore on a local sqlite file.
type SQLitePresetStore struct {
	sqlPresetStore
}

// NewSQLitePresetStore opens (creating if needed) dir/presets.db.
func NewSQLitePresetStore(dir string) (*SQLitePresetStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, constants.DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db, dialectSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLitePresetStore{
		sqlPresetStore: sqlPresetStore{db: db, dialect: dialectSQLite},
	}, nil
}
