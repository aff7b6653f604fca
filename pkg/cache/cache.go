// Package cache provides the key-value cache port used for read-through
// entity caching, plus Redis and in-memory implementations.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is the cache port: byte values keyed by string, with per-entry TTL.
// Writers invalidate with Delete, never Set, so readers after a write always
// re-fetch from persistence.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
