package types

import "errors"

// Storage errors. Backends wrap one of these around the underlying driver
// error so callers can pick a recovery policy with errors.Is.
var (
	ErrConnection = errors.New("cannot open storage")
	ErrSchema     = errors.New("schema error")
	ErrConstraint = errors.New("constraint violation")
	ErrDecode     = errors.New("cannot decode stored pasta")
	ErrBusy       = errors.New("storage is busy")
	ErrStorage    = errors.New("storage operation failed")
)

// Input errors.
var (
	ErrInvalidData = errors.New("invalid pasta data")
	ErrNotFound    = errors.New("pasta not found")
)
