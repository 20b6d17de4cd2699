// Package cache provides pluggable byte caches for pipeline results.
//
// Runs over the same input files and policy are fully deterministic, so a
// completed dataset can be keyed by a content hash of its inputs and
// reused instead of recomputed. Backends:
//
//   - [FileCache] stores entries on disk for CLI usage
//   - [RedisCache] shares entries across processes
//   - [NullCache] disables caching
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TTLDataset is how long a cached dataset stays valid. Inputs are keyed
// by content hash, so staleness only matters for reclaiming space.
const TTLDataset = 7 * 24 * time.Hour

// Cache is a byte store with optional expiry. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the data for key. The second result is false on a miss;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Key builds a cache key from a prefix and the JSON encoding of parts.
// The full SHA-256 digest is kept so distinct inputs never collide.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the SHA-256 digest of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
