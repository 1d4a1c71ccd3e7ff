// Package store is the portal's record store: a small key/value layer holding
// JSON documents, with typed append-only collections built on top.
//
// Every read-modify-write goes through Update, which each backend executes
// atomically for a single key, so concurrent appends never lose records.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrCorrupt  = errors.New("stored record is not valid JSON")
)

// UpdateFunc receives the current value of a key (nil when absent) and returns
// the value to store. Returning an error aborts the update and leaves the key
// untouched.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	Put(ctx context.Context, key string, value []byte) error

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error

	// Keys lists keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Update runs fn and stores its result atomically with respect to other
	// writers of the same key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// IsAbsent reports whether err means "nothing usable stored under the key".
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt)
}
