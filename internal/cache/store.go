package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Version is stamped into every entry. Bump it whenever the on-disk shape
// of cached data changes; older entries then read as misses and are
// deleted on sight.
const Version = 1

// Store is a content-addressed, TTL-bounded file cache for JSON-encodable
// fetch results. It knows nothing about API semantics. Caching is strictly
// an optimization: every I/O failure degrades to a miss or a dropped
// write, never an error.
type Store struct {
	dir string
}

type entry struct {
	Version   int             `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	TTLMillis int64           `json:"ttl_ms"`
	Data      json.RawMessage `json:"data"`
}

// Stats describes the cache directory contents.
type Stats struct {
	Count     int
	Bytes     int64
	OldestAge time.Duration // zero when Count == 0
}

// NewStore returns a store rooted at dir. The directory is created lazily
// on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir is the per-user cache location.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "gha-cost")
}

func (s *Store) path(keyParts []string) string {
	sum := sha256.Sum256([]byte(strings.Join(keyParts, "\x00")))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

// Get loads a cached value into out and reports whether it was found fresh.
// Version mismatches, expiry, and undecodable files all invalidate the
// entry immediately; stale data is never returned.
func (s *Store) Get(keyParts []string, ttl time.Duration, out any) bool {
	p := s.path(keyParts)
	data, err := os.ReadFile(p)
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		os.Remove(p)
		return false
	}
	maxAge := ttl
	if maxAge <= 0 {
		maxAge = time.Duration(e.TTLMillis) * time.Millisecond
	}
	if e.Version != Version || time.Since(e.Timestamp) > maxAge {
		os.Remove(p)
		return false
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		os.Remove(p)
		return false
	}
	return true
}

// Set persists data under the key, best effort.
func (s *Store) Set(keyParts []string, data any, ttl time.Duration) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	buf, err := json.Marshal(entry{
		Version:   Version,
		Timestamp: time.Now().UTC(),
		TTLMillis: ttl.Milliseconds(),
		Data:      raw,
	})
	if err != nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(s.path(keyParts), buf, 0o644)
}

// Clear removes every entry and reports how many files and bytes went away.
func (s *Store) Clear() (int, int64) {
	var count int
	var bytes int64
	for _, e := range s.entries() {
		info, err := e.Info()
		if err == nil {
			bytes += info.Size()
		}
		if os.Remove(filepath.Join(s.dir, e.Name())) == nil {
			count++
		}
	}
	return count, bytes
}

// Stats reports entry count, total size, and the age of the oldest entry.
func (s *Store) Stats() Stats {
	var st Stats
	now := time.Now()
	for _, e := range s.entries() {
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Count++
		st.Bytes += info.Size()
		if age := now.Sub(info.ModTime()); age > st.OldestAge {
			st.OldestAge = age
		}
	}
	return st
}

func (s *Store) entries() []os.DirEntry {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var out []os.DirEntry
	for _, e := range dirents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, e)
	}
	return out
}
