package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func TestEncodePasta(t *testing.T) {
	tests := []struct {
		name  string
		pasta types.Pasta
		check func(t *testing.T, r pastaRow)
	}{
		{
			name:  "booleans become 0 and 1",
			pasta: types.Pasta{ReadOnly: true, Private: false, Editable: true, EncryptServer: false, EncryptClient: true},
			check: func(t *testing.T, r pastaRow) {
				assert.Equal(t, int64(1), r.readOnly)
				assert.Equal(t, int64(0), r.private)
				assert.Equal(t, int64(1), r.editable)
				assert.Equal(t, int64(0), r.encryptServer)
				assert.Equal(t, int64(1), r.encryptClient)
			},
		},
		{
			name:  "absent attachment becomes empty name and zero size",
			pasta: types.Pasta{},
			check: func(t *testing.T, r pastaRow) {
				assert.Equal(t, sql.NullString{String: "", Valid: true}, r.fileName)
				assert.Equal(t, sql.NullInt64{Int64: 0, Valid: true}, r.fileSize)
			},
		},
		{
			name:  "present attachment keeps name and size",
			pasta: types.Pasta{File: &types.PastaFile{Name: "dump.tar", Size: 2048}},
			check: func(t *testing.T, r pastaRow) {
				assert.Equal(t, "dump.tar", r.fileName.String)
				assert.Equal(t, int64(2048), r.fileSize.Int64)
			},
		},
		{
			name:  "absent title and key are NULL",
			pasta: types.Pasta{},
			check: func(t *testing.T, r pastaRow) {
				assert.False(t, r.title.Valid)
				assert.False(t, r.encryptedKey.Valid)
			},
		},
		{
			name:  "present title and key pass through",
			pasta: types.Pasta{Title: types.StringPtr("todo"), EncryptedKey: types.StringPtr("c2VjcmV0")},
			check: func(t *testing.T, r pastaRow) {
				assert.Equal(t, sql.NullString{String: "todo", Valid: true}, r.title)
				assert.Equal(t, sql.NullString{String: "c2VjcmV0", Valid: true}, r.encryptedKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, encodePasta(&tt.pasta))
		})
	}
}

func TestDecodePastaAttachment(t *testing.T) {
	tests := []struct {
		name     string
		fileName sql.NullString
		fileSize sql.NullInt64
		want     *types.PastaFile
	}{
		{
			name:     "name and size present",
			fileName: sql.NullString{String: "photo.png", Valid: true},
			fileSize: sql.NullInt64{Int64: 512, Valid: true},
			want:     &types.PastaFile{Name: "photo.png", Size: 512},
		},
		{
			name:     "sentinel decodes as absent",
			fileName: sql.NullString{String: "", Valid: true},
			fileSize: sql.NullInt64{Int64: 0, Valid: true},
			want:     nil,
		},
		{
			name:     "name without size collapses to absent",
			fileName: sql.NullString{String: "photo.png", Valid: true},
			fileSize: sql.NullInt64{Int64: 0, Valid: true},
			want:     nil,
		},
		{
			name:     "size without name collapses to absent",
			fileName: sql.NullString{String: "", Valid: true},
			fileSize: sql.NullInt64{Int64: 512, Valid: true},
			want:     nil,
		},
		{
			name:     "NULL columns decode as absent",
			fileName: sql.NullString{},
			fileSize: sql.NullInt64{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pastaRow{fileName: tt.fileName, fileSize: tt.fileSize}
			got := decodePasta(&r)
			assert.Equal(t, tt.want, got.File)
		})
	}
}

func TestDecodePastaNonzeroIsTrue(t *testing.T) {
	r := pastaRow{readOnly: 2, private: -1, editable: 0, encryptServer: 1, encryptClient: 0}
	got := decodePasta(&r)

	assert.True(t, got.ReadOnly)
	assert.True(t, got.Private)
	assert.False(t, got.Editable)
	assert.True(t, got.EncryptServer)
	assert.False(t, got.EncryptClient)
}

func TestCodecRoundTrip(t *testing.T) {
	in := fullPasta(7, 1700000000)
	r := encodePasta(&in)
	out := decodePasta(&r)
	assert.Equal(t, in, out)
}

func TestRowArgsFollowColumnOrder(t *testing.T) {
	in := fullPasta(1, 1)
	r := encodePasta(&in)
	args := r.args()
	require.Len(t, args, len(pastaColumns))
	require.Len(t, r.dest(), len(pastaColumns))

	for i, a := range args {
		named, ok := a.(sql.NamedArg)
		require.True(t, ok, "arg %d is not named", i)
		assert.Equal(t, pastaColumns[i], named.Name)
	}
}

func TestStatementsCoverEveryColumn(t *testing.T) {
	for _, col := range pastaColumns {
		assert.Contains(t, createPasta, col+" ")
		assert.Contains(t, selectAllPastas, col)
		assert.Contains(t, insertPasta, ":"+col)
		assert.Contains(t, updatePasta, ":"+col)
	}
	assert.NotContains(t, updatePasta, "SET id =")
}
