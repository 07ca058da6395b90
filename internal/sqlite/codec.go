package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// pastaRow is the flat, column-level form of a pasta. Field order follows
// pastaColumns; dest and args walk it in that order.
type pastaRow struct {
	id             int64
	content        string
	title          sql.NullString
	fileName       sql.NullString
	fileSize       sql.NullInt64
	extension      string
	readOnly       int64
	private        int64
	editable       int64
	encryptServer  int64
	encryptClient  int64
	encryptedKey   sql.NullString
	created        int64
	expiration     int64
	lastRead       int64
	readCount      int64
	burnAfterReads int64
	pastaType      string
}

// dest returns scan destinations in pastaColumns order.
func (r *pastaRow) dest() []any {
	return []any{
		&r.id,
		&r.content,
		&r.title,
		&r.fileName,
		&r.fileSize,
		&r.extension,
		&r.readOnly,
		&r.private,
		&r.editable,
		&r.encryptServer,
		&r.encryptClient,
		&r.encryptedKey,
		&r.created,
		&r.expiration,
		&r.lastRead,
		&r.readCount,
		&r.burnAfterReads,
		&r.pastaType,
	}
}

// args returns the row as named statement arguments, one per column.
// Nullable columns are flattened to nil or their plain value.
func (r *pastaRow) args() []any {
	return []any{
		sql.Named(colID, r.id),
		sql.Named(colContent, r.content),
		sql.Named(colTitle, nullable(r.title)),
		sql.Named(colFileName, nullable(r.fileName)),
		sql.Named(colFileSize, nullable(r.fileSize)),
		sql.Named(colExtension, r.extension),
		sql.Named(colReadOnly, r.readOnly),
		sql.Named(colPrivate, r.private),
		sql.Named(colEditable, r.editable),
		sql.Named(colEncryptServer, r.encryptServer),
		sql.Named(colEncryptClient, r.encryptClient),
		sql.Named(colEncryptedKey, nullable(r.encryptedKey)),
		sql.Named(colCreated, r.created),
		sql.Named(colExpiration, r.expiration),
		sql.Named(colLastRead, r.lastRead),
		sql.Named(colReadCount, r.readCount),
		sql.Named(colBurnAfterReads, r.burnAfterReads),
		sql.Named(colPastaType, r.pastaType),
	}
}

// encodePasta maps a pasta to its row form. An absent attachment becomes
// the ("", 0) sentinel; absent title and encrypted key become NULL.
func encodePasta(p *types.Pasta) pastaRow {
	r := pastaRow{
		id:             p.ID,
		content:        p.Content,
		title:          nullString(p.Title),
		fileName:       sql.NullString{String: "", Valid: true},
		fileSize:       sql.NullInt64{Int64: 0, Valid: true},
		extension:      p.Extension,
		readOnly:       boolToInt(p.ReadOnly),
		private:        boolToInt(p.Private),
		editable:       boolToInt(p.Editable),
		encryptServer:  boolToInt(p.EncryptServer),
		encryptClient:  boolToInt(p.EncryptClient),
		encryptedKey:   nullString(p.EncryptedKey),
		created:        p.Created,
		expiration:     p.Expiration,
		lastRead:       p.LastRead,
		readCount:      p.ReadCount,
		burnAfterReads: p.BurnAfterReads,
		pastaType:      p.PastaType,
	}
	if p.File != nil {
		r.fileName.String = p.File.Name
		r.fileSize.Int64 = p.File.Size
	}
	return r
}

// decodePasta maps a row back to a pasta. The attachment is present only
// when the name is non-empty and the size nonzero; anything else, including
// a half-filled pair, decodes as no attachment.
func decodePasta(r *pastaRow) types.Pasta {
	p := types.Pasta{
		ID:             r.id,
		Content:        r.content,
		Title:          stringPtr(r.title),
		Extension:      r.extension,
		ReadOnly:       r.readOnly != 0,
		Private:        r.private != 0,
		Editable:       r.editable != 0,
		EncryptServer:  r.encryptServer != 0,
		EncryptClient:  r.encryptClient != 0,
		EncryptedKey:   stringPtr(r.encryptedKey),
		Created:        r.created,
		Expiration:     r.expiration,
		LastRead:       r.lastRead,
		ReadCount:      r.readCount,
		BurnAfterReads: r.burnAfterReads,
		PastaType:      r.pastaType,
	}
	if r.fileName.Valid && r.fileName.String != "" && r.fileSize.Valid && r.fileSize.Int64 != 0 {
		p.File = &types.PastaFile{Name: r.fileName.String, Size: r.fileSize.Int64}
	}
	return p
}

// scanPasta reads one row from rows and decodes it. A row that does not
// scan means the file is damaged, so the error is also a storage failure.
func scanPasta(rows *sql.Rows) (types.Pasta, error) {
	var r pastaRow
	if err := rows.Scan(r.dest()...); err != nil {
		return types.Pasta{}, fmt.Errorf("%w: %w: %w", types.ErrStorage, types.ErrDecode, err)
	}
	return decodePasta(&r), nil
}

// nullable unwraps a sql.Null* value into nil or its underlying value.
func nullable(v driver.Valuer) any {
	out, err := v.Value()
	if err != nil {
		return nil
	}
	return out
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
