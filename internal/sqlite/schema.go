// Package sqlite implements the SQLite storage backend for Pantry.
package sqlite

import "strings"

// pastaTable is the only table the backend owns.
const pastaTable = "pasta"

// createPasta is the DDL for the current column set. Column order matches
// pastaColumns.
const createPasta = `CREATE TABLE IF NOT EXISTS pasta (
    id INTEGER PRIMARY KEY,
    content TEXT NOT NULL,
    title TEXT,
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

const dropPasta = `DROP TABLE IF EXISTS pasta;`

// Column names. The codec, the select list, and the insert/update statements
// are all generated from pastaColumns.
const (
	colID             = "id"
	colContent        = "content"
	colTitle          = "title"
	colFileName       = "file_name"
	colFileSize       = "file_size"
	colExtension      = "extension"
	colReadOnly       = "read_only"
	colPrivate        = "private"
	colEditable       = "editable"
	colEncryptServer  = "encrypt_server"
	colEncryptClient  = "encrypt_client"
	colEncryptedKey   = "encrypted_key"
	colCreated        = "created"
	colExpiration     = "expiration"
	colLastRead       = "last_read"
	colReadCount      = "read_count"
	colBurnAfterReads = "burn_after_reads"
	colPastaType      = "pasta_type"
)

var pastaColumns = []string{
	colID,
	colContent,
	colTitle,
	colFileName,
	colFileSize,
	colExtension,
	colReadOnly,
	colPrivate,
	colEditable,
	colEncryptServer,
	colEncryptClient,
	colEncryptedKey,
	colCreated,
	colExpiration,
	colLastRead,
	colReadCount,
	colBurnAfterReads,
	colPastaType,
}

// Statements built once from pastaColumns.
var (
	selectAllPastas = "SELECT " + strings.Join(pastaColumns, ", ") +
		" FROM pasta ORDER BY created ASC, id ASC"
	insertPasta = buildInsert()
	updatePasta = buildUpdate()
)

const deletePasta = `DELETE FROM pasta WHERE id = :id`

func buildInsert() string {
	params := make([]string, len(pastaColumns))
	for i, col := range pastaColumns {
		params[i] = ":" + col
	}
	return "INSERT INTO pasta (" + strings.Join(pastaColumns, ", ") +
		") VALUES (" + strings.Join(params, ", ") + ")"
}

func buildUpdate() string {
	sets := make([]string, 0, len(pastaColumns)-1)
	for _, col := range pastaColumns {
		if col == colID {
			continue
		}
		sets = append(sets, col+" = :"+col)
	}
	return "UPDATE pasta SET " + strings.Join(sets, ", ") + " WHERE id = :id"
}
