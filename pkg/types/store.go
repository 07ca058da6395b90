package types

import "context"

// Store persists pastas. Every call is self-contained: it acquires its own
// connection, ensures the schema, does its work, and releases the
// connection before returning.
type Store interface {
	// EnsureSchema creates the pasta table if needed and applies additive
	// column migrations. Idempotent.
	EnsureSchema(ctx context.Context) error

	// ReadAll returns every stored pasta ordered by Created ascending.
	// The result is never nil.
	ReadAll(ctx context.Context) ([]Pasta, error)

	// Insert stores a new pasta keyed by its ID.
	// Returns an error wrapping ErrConstraint if the ID is already taken.
	Insert(ctx context.Context, p *Pasta) error

	// Update replaces every field of the row with the pasta's ID.
	// Reports false with a nil error when no such row exists.
	Update(ctx context.Context, p *Pasta) (bool, error)

	// DeleteByID removes the row with the given ID.
	// Reports false with a nil error when no such row exists.
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// RewriteAll replaces the entire table contents with pastas, in order.
	// Rows not present in pastas are discarded.
	RewriteAll(ctx context.Context, pastas []Pasta) error
}
