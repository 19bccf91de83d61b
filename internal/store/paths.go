package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nvandessel/selfsim/internal/config"
	"github.com/nvandessel/selfsim/internal/constants"
)

// LocalPath returns the path to the .selfsim directory for the given project root.
func LocalPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DirName)
}

// Open returns the PresetStore selected by cfg. The sqlite store lives in the
// local .selfsim directory of projectRoot.
func Open(ctx context.Context, cfg config.StoreConfig, projectRoot string) (PresetStore, error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		return NewSQLitePresetStore(LocalPath(projectRoot))
	case config.DriverPostgres:
		return NewPostgresPresetStore(ctx, cfg.DSN)
	case config.DriverMemory:
		return NewInMemoryPresetStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
