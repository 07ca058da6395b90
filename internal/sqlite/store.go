package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Store implements types.Store on a single SQLite file. It holds no open
// handle between calls: every operation opens the database, runs one
// transaction, and closes it before returning.
type Store struct {
	config types.Config
	logger *slog.Logger

	// open returns a fresh handle for path. Tests swap it for sqlmock.
	open func(ctx context.Context, path string) (*sql.DB, error)
}

var _ types.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for per-operation records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore validates cfg and returns a Store rooted at cfg.DataDir.
// Nothing is opened until the first operation.
func NewStore(cfg types.Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		config: cfg,
		logger: slog.New(slog.DiscardHandler),
		open:   openSQLite,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.config.DatabasePath()
}

// EnsureSchema creates the pasta table if needed and applies the additive
// column migrations.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.run(ctx, "ensure schema", ensureSchema)
}

// ReadAll returns every pasta ordered by creation time (ties by id).
func (s *Store) ReadAll(ctx context.Context) ([]types.Pasta, error) {
	pastas := []types.Pasta{}
	err := s.run(ctx, "read all", func(ctx context.Context, tx dbtx) error {
		if err := ensureSchema(ctx, tx); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, selectAllPastas)
		if err != nil {
			return fmt.Errorf("select pastas: %w", classify(types.ErrStorage, err))
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPasta(rows)
			if err != nil {
				return fmt.Errorf("row %d: %w", len(pastas), err)
			}
			pastas = append(pastas, p)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate pastas: %w", classify(types.ErrStorage, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pastas, nil
}

// Insert stores p under p.ID. A taken ID fails with types.ErrConstraint.
func (s *Store) Insert(ctx context.Context, p *types.Pasta) error {
	if p == nil {
		return types.ErrInvalidData
	}
	return s.run(ctx, "insert", func(ctx context.Context, tx dbtx) error {
		if err := ensureSchema(ctx, tx); err != nil {
			return err
		}
		return insertRow(ctx, tx, p)
	})
}

// Update replaces every column of the row keyed by p.ID. It reports whether
// a row matched; a missing row is not an error.
func (s *Store) Update(ctx context.Context, p *types.Pasta) (bool, error) {
	if p == nil {
		return false, types.ErrInvalidData
	}
	var found bool
	err := s.run(ctx, "update", func(ctx context.Context, tx dbtx) error {
		if err := ensureSchema(ctx, tx); err != nil {
			return err
		}
		row := encodePasta(p)
		res, err := tx.ExecContext(ctx, updatePasta, row.args()...)
		if err != nil {
			return fmt.Errorf("update pasta %d: %w", p.ID, classify(types.ErrStorage, err))
		}
		found, err = affected(res)
		return err
	})
	return found, err
}

// DeleteByID removes the row keyed by id. It reports whether a row matched;
// a missing row is not an error.
func (s *Store) DeleteByID(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := s.run(ctx, "delete", func(ctx context.Context, tx dbtx) error {
		if err := ensureSchema(ctx, tx); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, deletePasta, sql.Named(colID, id))
		if err != nil {
			return fmt.Errorf("delete pasta %d: %w", id, classify(types.ErrStorage, err))
		}
		found, err = affected(res)
		return err
	})
	return found, err
}

// RewriteAll drops the table, recreates it, and inserts pastas in order.
// The whole sequence is one transaction: if any insert fails the previous
// contents are kept.
func (s *Store) RewriteAll(ctx context.Context, pastas []types.Pasta) error {
	return s.run(ctx, "rewrite all", func(ctx context.Context, tx dbtx) error {
		if _, err := tx.ExecContext(ctx, dropPasta); err != nil {
			return fmt.Errorf("drop pasta table: %w", classify(types.ErrSchema, err))
		}
		if err := ensureTableExists(ctx, tx); err != nil {
			return err
		}
		for i := range pastas {
			if err := insertRow(ctx, tx, &pastas[i]); err != nil {
				return fmt.Errorf("record %d of %d: %w", i+1, len(pastas), err)
			}
		}
		return nil
	})
}

func insertRow(ctx context.Context, tx dbtx, p *types.Pasta) error {
	row := encodePasta(p)
	if _, err := tx.ExecContext(ctx, insertPasta, row.args()...); err != nil {
		return fmt.Errorf("insert pasta %d: %w", p.ID, classify(types.ErrStorage, err))
	}
	return nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", classify(types.ErrStorage, err))
	}
	return n > 0, nil
}

// run opens the database, executes fn in a transaction, and closes the
// handle on every path. Errors are prefixed with op.
func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context, tx dbtx) error) error {
	log := s.logger.With("op", op, "op_id", newOpID())
	start := time.Now()
	log.DebugContext(ctx, "storage operation started", "path", s.Path())

	db, err := s.open(ctx, s.Path())
	if err != nil {
		log.ErrorContext(ctx, "open storage failed", "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	if err := withTx(ctx, db, fn); err != nil {
		log.ErrorContext(ctx, "storage operation failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.DebugContext(ctx, "storage operation finished", "duration", time.Since(start))
	return nil
}

// openSQLite creates the data directory if needed, opens the database file,
// and pings it so an unusable path fails here rather than on the first
// statement.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %w", types.ErrConnection, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConnection, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, classify(types.ErrConnection, err))
	}
	return db, nil
}

// newOpID returns a UUID v7 used to correlate the log lines of one call.
func newOpID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
