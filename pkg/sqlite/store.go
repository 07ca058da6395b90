// Package sqlite provides the public API for the SQLite pasta store.
// This package exposes the factory function while keeping implementation
// details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/pantry/internal/sqlite"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// NewStore returns a store rooted at cfg.DataDir. A nil logger discards
// operation logs. No file is touched until the first operation.
//
// Example:
//
//	store, err := sqlite.NewStore(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".pantry-db",
//	}, nil)
//	pastas, err := store.ReadAll(ctx)
func NewStore(cfg types.Config, logger *slog.Logger) (types.Store, error) {
	s, err := sqlite.NewStore(cfg, sqlite.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return s, nil
}
