// Package cache stores serialized extraction results so an unchanged
// document is not extracted twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/qextract/internal/model"
)

// Cache is a byte store with per-entry expiry. A ttl of 0 means the
// layer's default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyVersion = "v1"

// Key derives a filename-safe key from the pattern library fingerprint, an
// options fingerprint and the document text. Parts are NUL-separated so
// ("ab", "c") and ("a", "bc") differ.
func Key(library, fingerprint, text string) string {
	h := sha256.New()
	for _, part := range []string{library, fingerprint, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyVersion + "-" + hex.EncodeToString(h.Sum(nil))
}

// GetJSON decodes the entry at key into v. A decode failure is returned
// with found=true so callers can tell a corrupt entry from a miss.
func GetJSON(c Cache, key string, v any) (bool, error) {
	data, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return c.Set(key, data, ttl)
}

// New builds the cache described by cfg: memory over disk when enabled,
// a no-op store otherwise.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	return NewLayered(cfg)
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error { return nil }
func (Nop) Clear() error { return nil }
