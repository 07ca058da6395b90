// Package types defines the Pasta record, the Store interface, and the
// standard errors for the Pantry storage system.
//
// Callers hand fully formed Pasta values to a Store and get them back
// unchanged except for type coercions. Expiration, encryption, and read
// counters are opaque to storage; they are persisted verbatim.
package types
