package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// maxJSONLLine bounds a single backup line; pasta content can be large.
const maxJSONLLine = 64 << 20

// Export writes every stored pasta to path as JSONL, one pasta per line, in
// ReadAll order. The file is replaced atomically. Returns the record count.
func (s *Store) Export(ctx context.Context, path string) (int, error) {
	pastas, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]json.RawMessage, 0, len(pastas))
	for i := range pastas {
		b, err := json.Marshal(&pastas[i])
		if err != nil {
			return 0, fmt.Errorf("marshal pasta %d: %w", pastas[i].ID, err)
		}
		records = append(records, b)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	return len(records), nil
}

// Import replaces the store contents with the pastas in the JSONL file at
// path. The file is parsed completely before the store is touched, so a
// malformed line leaves the store as it was. Returns the record count.
func (s *Store) Import(ctx context.Context, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	pastas := make([]types.Pasta, 0, len(records))
	for _, rec := range records {
		var p types.Pasta
		if err := json.Unmarshal(rec.data, &p); err != nil {
			return 0, fmt.Errorf("import: %s line %d: %w: %w", path, rec.line, types.ErrDecode, err)
		}
		pastas = append(pastas, p)
	}

	if err := s.RewriteAll(ctx, pastas); err != nil {
		return 0, err
	}
	return len(pastas), nil
}

// jsonlRecord is one non-empty line of a JSONL file.
type jsonlRecord struct {
	line int
	data []byte
}

// readJSONL returns each non-empty line of path with its line number.
func readJSONL(path string) ([]jsonlRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []jsonlRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		records = append(records, jsonlRecord{line: line, data: cp})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to path using the temp-file, fsync,
// rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
