// Package cache stores completed analysis results so re-submitting the
// same document is free.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching marshaled analysis results
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the document bytes and the claim-type
// hint. The hint participates because it changes extraction guidance and
// therefore the result.
func Key(doc []byte, claimHint string) string {
	h := sha256.New()
	h.Write(doc)
	h.Write([]byte{0})
	h.Write([]byte(claimHint))
	return "policyscan:v1:" + hex.EncodeToString(h.Sum(nil))
}
