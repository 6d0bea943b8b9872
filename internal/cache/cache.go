package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"
)

// Cache memoizes resolved evidence text for the lifetime of a run
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
	Len() int
	Clear()
}

// EvidenceKey generates a cache key from an evidence file path
func EvidenceKey(path string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return "wfc:evidence:v1:" + hex.EncodeToString(hash[:])
}
