// Package kv defines the durable key/value medium the record store sits on.
//
// A Medium knows nothing about meal records: keys are opaque strings and
// values opaque bytes. Implementations live in the memory, sqlite and badger
// subpackages.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Medium is the host-provided key/value storage.
type Medium interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetIfAbsent stores value at key only when the key is free. It reports
	// false, with no error, when the key already holds a value. The check and
	// the write happen atomically.
	SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error)

	// Delete removes key and reports whether it was present.
	Delete(ctx context.Context, key string) (bool, error)

	// Keys lists every key starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Version changes whenever an entry is written or deleted, by any
	// writer of the underlying storage. Equal versions mean equal contents.
	Version(ctx context.Context) (uint64, error)

	Close() error
}
