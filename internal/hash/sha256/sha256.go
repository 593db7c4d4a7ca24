// Package sha256 derives the deterministic digests used as page cache keys.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher turns page URLs into stable hex digests. The digest never changes
// across runs, so a cache directory written by one crawl step is readable by
// every later one.
type Hasher struct{}

// New returns a Hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the lowercase hex SHA-256 digest of data.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
