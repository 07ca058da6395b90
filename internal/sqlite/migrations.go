package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// columnMigration adds one nullable column to a pasta table created by an
// older release. Migrations only ever add columns.
type columnMigration struct {
	column     string
	definition string
}

// columnMigrations run in order before the create-table step. A fresh table
// already has every column, so they only touch existing stores.
var columnMigrations = []columnMigration{
	{column: colTitle, definition: "TEXT"},
}

// ensureSchema applies every additive migration and then makes sure the
// table exists. Safe to call on every operation.
func ensureSchema(ctx context.Context, q dbtx) error {
	for _, m := range columnMigrations {
		if err := ensureColumnPresent(ctx, q, m.column, m.definition); err != nil {
			return err
		}
	}
	return ensureTableExists(ctx, q)
}

// ensureTableExists creates the pasta table with the full column set.
func ensureTableExists(ctx context.Context, q dbtx) error {
	if _, err := q.ExecContext(ctx, createPasta); err != nil {
		return fmt.Errorf("create pasta table: %w", classify(types.ErrSchema, err))
	}
	return nil
}

// ensureColumnPresent adds column to the pasta table if the table exists
// and lacks it. A missing table is left alone; the create-table step will
// include the column.
func ensureColumnPresent(ctx context.Context, q dbtx, column, definition string) error {
	exists, err := tableExists(ctx, q, pastaTable)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	present, err := columnExists(ctx, q, pastaTable, column)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	if _, err := q.ExecContext(ctx, `ALTER TABLE `+pastaTable+` ADD COLUMN `+column+` `+definition); err != nil {
		return fmt.Errorf("add %s.%s: %w", pastaTable, column, classify(types.ErrSchema, err))
	}
	return nil
}

func tableExists(ctx context.Context, q dbtx, table string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`, table).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table, classify(types.ErrSchema, err))
	}
	return exists, nil
}

func columnExists(ctx context.Context, q dbtx, table, column string) (bool, error) {
	rows, err := q.QueryContext(ctx, `PRAGMA table_info(`+table+`)`)
	if err != nil {
		return false, fmt.Errorf("query table info %s: %w", table, classify(types.ErrSchema, err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dfltVal sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dfltVal, &pk); err != nil {
			return false, fmt.Errorf("scan table info %s: %w", table, classify(types.ErrSchema, err))
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate table info %s: %w", table, classify(types.ErrSchema, err))
	}
	return false, nil
}
