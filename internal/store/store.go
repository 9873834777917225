package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or its TTL has
// elapsed. Callers cannot distinguish the two cases, by contract.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable key-value capability with per-entry expiry.
// Expiry is the store's responsibility: an entry written with a TTL
// becomes unreadable once the TTL elapses, without an explicit delete.
// No transactional guarantees are assumed across Get+Put sequences.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
