// Package cache memoizes generated entity descriptions across runs so
// re-weaving the same corpus does not repeat model calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is a byte-value store with per-entry TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from its parts. Parts are joined with a
// separator that cannot appear in names and hashed, so keys are
// filesystem-safe regardless of what entity names contain.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return "storyweaver:v1:" + hex.EncodeToString(hash[:])
}
