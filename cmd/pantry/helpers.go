// Shared helpers for pantry CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mesh-intelligence/pantry/internal/sqlite"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// cliError pins the exit code of a failure the storage taxonomy does not
// classify.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error   { return &cliError{code: exitUserError, err: err} }
func systemError(err error) error { return &cliError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Storage failures are system
// errors; bad input, missing pastas and constraint violations are the
// user's to fix.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	for _, sys := range []error{types.ErrConnection, types.ErrSchema, types.ErrBusy, types.ErrStorage} {
		if errors.Is(err, sys) {
			return exitSysError
		}
	}
	return exitUserError
}

// openStore builds a store over the resolved data directory.
func openStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, systemError(fmt.Errorf("resolve data dir: %w", err))
	}

	store, err := sqlite.NewStore(types.Config{
		Backend: settings.Backend,
		DataDir: dataDir,
	}, sqlite.WithLogger(logger))
	if err != nil {
		return nil, userError(fmt.Errorf("open store: %w", err))
	}
	return store, nil
}

// parseID parses a pasta id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", types.ErrInvalidData, arg)
	}
	return id, nil
}

// readPasta decodes one JSON pasta from the file named by arg, or from stdin
// when arg is empty or "-". Unknown fields are rejected.
func readPasta(arg string, stdin io.Reader) (*types.Pasta, error) {
	r := stdin
	if arg != "" && arg != "-" {
		f, err := os.Open(arg)
		if err != nil {
			return nil, userError(err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var p types.Pasta
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidData, err)
	}
	return &p, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// findPasta returns the pasta with id from pastas.
func findPasta(pastas []types.Pasta, id int64) (*types.Pasta, error) {
	for i := range pastas {
		if pastas[i].ID == id {
			return &pastas[i], nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", types.ErrNotFound, id)
}
