// Package kvstore defines the durable key-value store behind the catalog,
// carts and orders.
//
// Every collection is stored whole under a single key: readers load the full
// value, mutate it in memory, and write the full value back. There is no
// partial write and no transaction log. Acceptable under the single-writer
// assumption this system runs with, where the last write wins.
package kvstore

import (
	"context"
	"fmt"
)

// Store is the port the repositories persist through. Implementations must
// return (nil, nil) from Get when the key is absent so callers can
// distinguish "never written" from an empty value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Watch delivers a signal whenever the value under key changes, from
	// this process or any other context sharing the store. Delivery is
	// advisory: a slow consumer may coalesce signals, and no ordering or
	// conflict resolution is implied. The channel closes when ctx ends.
	Watch(ctx context.Context, key string) (<-chan struct{}, error)

	Close() error
}

// PersistenceError reports a storage failure. It is transient from the
// caller's perspective: the operation may be retried, and nothing about the
// process state is corrupted by it.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("kvstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
