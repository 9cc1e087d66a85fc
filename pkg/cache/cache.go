// Package cache stores encoded sort results keyed by input and options.
//
// Three backends implement [Cache]:
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (caching disabled)
//
// Keys come from a [Keyer] so that every caller derives identical keys for
// identical work. Only reproducible work belongs in the cache: a sort pass
// without a fixed seed produces different output on every run and must not be
// cached.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLs for cached entries.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLSummary  = 7 * 24 * time.Hour
)

// NullCache stores nothing. It backs --no-cache.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
