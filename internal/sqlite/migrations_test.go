package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// legacyCreatePasta is the table layout from before the title column.
const legacyCreatePasta = `CREATE TABLE pasta (
    id INTEGER PRIMARY KEY,
    content TEXT NOT NULL,
    file_name TEXT,
    file_size INTEGER,
    extension TEXT NOT NULL,
    read_only INTEGER NOT NULL,
    private INTEGER NOT NULL,
    editable INTEGER NOT NULL,
    encrypt_server INTEGER NOT NULL,
    encrypt_client INTEGER NOT NULL,
    encrypted_key TEXT,
    created INTEGER NOT NULL,
    expiration INTEGER NOT NULL,
    last_read INTEGER NOT NULL,
    read_count INTEGER NOT NULL,
    burn_after_reads INTEGER NOT NULL,
    pasta_type TEXT NOT NULL
);`

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableColumns(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`PRAGMA table_info(pasta)`)
	require.NoError(t, err)
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	return cols
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, s.EnsureSchema(ctx))
	}

	cols := tableColumns(t, openRaw(t, s.Path()))
	assert.ElementsMatch(t, pastaColumns, cols)
}

func TestEnsureSchemaUpgradesLegacyTable(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	raw := openRaw(t, s.Path())
	_, err := raw.Exec(legacyCreatePasta)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO pasta (id, content, file_name, file_size, extension, read_only, private,
		editable, encrypt_server, encrypt_client, encrypted_key, created, expiration, last_read,
		read_count, burn_after_reads, pasta_type)
		VALUES (5, 'legacy body', 'old.log', 77, 'log', 1, 0, 1, 0, 0, NULL, 10, 20, 11, 2, 0, 'file')`)
	require.NoError(t, err)
	require.NotContains(t, tableColumns(t, raw), colTitle)
	require.NoError(t, raw.Close())

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	cols := tableColumns(t, openRaw(t, s.Path()))
	assert.Len(t, cols, len(pastaColumns))
	assert.ElementsMatch(t, pastaColumns, cols)

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.Pasta{
		ID:         5,
		Content:    "legacy body",
		File:       &types.PastaFile{Name: "old.log", Size: 77},
		Extension:  "log",
		ReadOnly:   true,
		Editable:   true,
		Created:    10,
		Expiration: 20,
		LastRead:   11,
		ReadCount:  2,
		PastaType:  "file",
	}, got[0])
}

func TestReadAllMigratesLegacyTable(t *testing.T) {
	s := setupStore(t)

	raw := openRaw(t, s.Path())
	_, err := raw.Exec(legacyCreatePasta)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	got, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, tableColumns(t, openRaw(t, s.Path())), colTitle)
}

func TestEnsureColumnPresent(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, db *sql.DB)
	}{
		{
			name: "missing table is left alone",
			check: func(t *testing.T, db *sql.DB) {
				ctx := context.Background()
				require.NoError(t, ensureColumnPresent(ctx, db, colTitle, "TEXT"))
				exists, err := tableExists(ctx, db, pastaTable)
				require.NoError(t, err)
				assert.False(t, exists)
			},
		},
		{
			name: "present column is not added again",
			check: func(t *testing.T, db *sql.DB) {
				ctx := context.Background()
				require.NoError(t, ensureTableExists(ctx, db))
				require.NoError(t, ensureColumnPresent(ctx, db, colTitle, "TEXT"))
				assert.Len(t, tableColumns(t, db), len(pastaColumns))
			},
		},
		{
			name: "new additive column is appended once",
			check: func(t *testing.T, db *sql.DB) {
				ctx := context.Background()
				require.NoError(t, ensureTableExists(ctx, db))
				require.NoError(t, ensureColumnPresent(ctx, db, "language", "TEXT"))
				require.NoError(t, ensureColumnPresent(ctx, db, "language", "TEXT"))

				cols := tableColumns(t, db)
				assert.Len(t, cols, len(pastaColumns)+1)
				assert.Equal(t, "language", cols[len(cols)-1])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, openRaw(t, ":memory:"))
		})
	}
}

func TestEnsureColumnPresentSchemaErrors(t *testing.T) {
	infoColumns := []string{"cid", "name", "type", "notnull", "dflt_value", "pk"}

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name: "table lookup fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs(pastaTable).
					WillReturnError(errors.New("disk I/O error"))
			},
		},
		{
			name: "table info fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs(pastaTable).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info(pasta)")).
					WillReturnError(errors.New("disk I/O error"))
			},
		},
		{
			name: "alter fails",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs(pastaTable).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info(pasta)")).
					WillReturnRows(sqlmock.NewRows(infoColumns).
						AddRow(0, "id", "INTEGER", 0, nil, 1).
						AddRow(1, "content", "TEXT", 1, nil, 0))
				mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE pasta ADD COLUMN title TEXT")).
					WillReturnError(errors.New("attempt to write a readonly database"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.expect(mock)

			err = ensureColumnPresent(context.Background(), db, colTitle, "TEXT")
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrSchema)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoreRollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		call    func(s *Store) error
		wantErr error
	}{
		{
			name: "insert failure after schema ensure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
					WithArgs(pastaTable).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS pasta")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pasta")).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			call: func(s *Store) error {
				p := basicPasta(1, 1)
				return s.Insert(context.Background(), &p)
			},
			wantErr: types.ErrStorage,
		},
		{
			name: "rewrite failure partway through the insert loop",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS pasta")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS pasta")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pasta")).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pasta")).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			call: func(s *Store) error {
				return s.RewriteAll(context.Background(), []types.Pasta{basicPasta(1, 1), basicPasta(2, 2)})
			},
			wantErr: types.ErrStorage,
		},
		{
			name: "begin failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("unable to open database file"))
			},
			call: func(s *Store) error {
				_, err := s.ReadAll(context.Background())
				return err
			},
			wantErr: types.ErrConnection,
		},
		{
			name: "drop failure is a schema error",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS pasta")).
					WillReturnError(errors.New("table is referenced"))
				mock.ExpectRollback()
			},
			call: func(s *Store) error {
				return s.RewriteAll(context.Background(), nil)
			},
			wantErr: types.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)

			s := setupStore(t)
			s.open = func(context.Context, string) (*sql.DB, error) { return db, nil }

			tt.expect(mock)
			mock.ExpectClose()

			err = tt.call(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
