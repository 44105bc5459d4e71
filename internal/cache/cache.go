// Package cache provides the byte-level cache layers behind search-response
// replay: a TTL memory layer for one process run, an optional disk layer that
// survives restarts, and the layered combination of both.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a stable, filesystem-safe cache key from its parts.
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "eidolon:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
