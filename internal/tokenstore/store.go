// Package tokenstore persists the access/refresh token pair between runs.
//
// The pair is the only shared mutable state in the client. Implementations
// guard both values with one lock so a reader never observes a half rotated
// pair while a refresh is writing the new one.
package tokenstore

// Store keeps the current bearer token pair.
type Store interface {
	// Access returns the stored access token. ok is false when absent.
	Access() (token string, ok bool)

	// Refresh returns the stored refresh token. ok is false when absent.
	Refresh() (token string, ok bool)

	// Set overwrites the access token unconditionally. The refresh token
	// is replaced only when non empty: the backend does not always rotate it.
	Set(access string, refresh string)

	// Clear removes both tokens. Idempotent.
	Clear()
}
