// Package fixcache stores per-file rewrite outcomes on disk, keyed by a
// content digest, so repeated runs of the fixer skip files that have not
// changed since they were last examined.
package fixcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the Entry format or the rewriter semantics change.
const schemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// HashContent returns the digest of a file's content.
func HashContent(content []byte) Digest {
	return sha256.Sum256(content)
}

// Entry records the rewrite outcome for one content digest.
type Entry struct {
	Schema   uint16
	Path     string
	Hash     Digest
	Clean    bool // the rewriter would change nothing at this digest
	Rewrites int  // return statements the rewriter would change
}

// Cache is a disk cache of entries. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the cache at the standard location for app,
// XDG_CACHE_HOME/<app> with a ~/.cache fallback.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes the cache in an explicit directory.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// "fixes" keeps the entries apart from anything else stored under the
// app's cache directory.
func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "fixes", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes an entry. The schema version is
// stamped here; callers do not set it.
func (c *Cache) Put(key Digest, entry *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Schema = schemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads an entry for key. A missing file or a schema mismatch is a
// cache miss, not an error.
func (c *Cache) Get(key Digest, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}
