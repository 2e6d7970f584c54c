// Package lintcache stores lint results on disk keyed by content digest.
//
// Re-opening a file, or re-linting an unchanged buffer, then skips the
// external process entirely. Entries are invalidated by tool version and
// flags, which participate in the key.
package lintcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"hlintls/internal/hlint"
)

// Current schema version - increment when Payload format changes
const cacheSchemaVersion uint16 = 1

// Digest identifies one cached lint result.
type Digest [sha256.Size]byte

// Key derives the cache key from the content and the invocation identity.
func Key(text, toolVersion string, flags []string) Digest {
	h := sha256.New()
	h.Write([]byte(toolVersion))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(flags, "\x00")))
	h.Write([]byte{0})
	h.Write([]byte(text))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Payload is the serialized cache entry.
type Payload struct {
	Schema  uint16
	SavedAt int64
	Ideas   []hlint.Idea
}

// Cache is a directory of msgpack payloads. Thread-safe.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the cache at the standard location for app.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes the cache in an explicit directory.
func OpenDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "lint"), 0o755); err != nil {
		return nil, fmt.Errorf("lintcache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "lint", hex.EncodeToString(key[:])+".msgpack")
}

// Get returns the cached ideas for key, with ok=false on miss or on any
// unreadable or stale-schema entry.
func (c *Cache) Get(key Digest) ([]hlint.Idea, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var payload Payload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}
	return payload.Ideas, true
}

// Put stores the ideas for key. Write errors are returned but callers are
// free to ignore them: the cache is best-effort.
func (c *Cache) Put(key Digest, ideas []hlint.Idea) error {
	payload := Payload{
		Schema:  cacheSchemaVersion,
		SavedAt: time.Now().Unix(),
		Ideas:   ideas,
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("lintcache: marshal: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := c.pathFor(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("lintcache: write: %w", err)
	}
	if err := os.Rename(tmp, c.pathFor(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("lintcache: rename: %w", err)
	}
	return nil
}

// Prune removes entries older than maxAge.
func (c *Cache) Prune(maxAge time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	dir := filepath.Join(c.dir, "lint")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}
