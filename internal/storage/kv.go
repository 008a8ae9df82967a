package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a KV when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value medium holding opaque blobs. Any backend works as
// long as Set fully replaces the previous value of a key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	Close() error
}
