package sqlite

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// classify wraps a driver error with the sentinel that best describes it.
// Constraint and busy/locked results are recognized from the SQLite result
// code and take precedence over fallback.
func classify(fallback, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		// Extended result codes carry the primary code in the low byte.
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", types.ErrConstraint, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", types.ErrBusy, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
			return fmt.Errorf("%w: %w", types.ErrConnection, err)
		}
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
