package diskcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Key identifies one cached provider payload.
type Key struct {
	Provider string
	Ticker   string
	Kind     string
}

// entry is the on-disk envelope around a cached payload.
type entry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// Cache is a durable key-to-payload store, one JSON file per key under
// a single directory. The cache only records when an entry was written;
// expiry is the caller's concern, compared against the owning
// provider's TTL.
type Cache struct {
	dir string
}

// New creates the cache directory if needed and returns a Cache rooted there.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns the cached payload and its age. Missing, unreadable, or
// partially written files all count as a miss.
func (c *Cache) Get(k Key) ([]byte, time.Duration, bool) {
	b, err := os.ReadFile(c.path(k))
	if err != nil {
		return nil, 0, false
	}

	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		slog.Debug("discarding unreadable cache entry",
			"provider", k.Provider,
			"ticker", k.Ticker,
			"error", err)
		return nil, 0, false
	}
	if e.FetchedAt.IsZero() || len(e.Data) == 0 {
		return nil, 0, false
	}

	return e.Data, time.Since(e.FetchedAt), true
}

// Put stores a payload under k, stamped with the current time. The
// write goes to a temporary file in the same directory followed by a
// rename, so concurrent readers never observe a partial write.
// Concurrent writes to the same key are last-write-wins.
func (c *Cache) Put(k Key, data []byte) error {
	b, err := json.Marshal(entry{FetchedAt: time.Now(), Data: data})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	path := c.path(k)
	tmp, err := os.CreateTemp(c.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(k Key) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s_%s.json", k.Provider, sanitizeTicker(k.Ticker), k.Kind))
}

// sanitizeTicker keeps symbols like BRK.B and 7203.T filesystem-safe.
func sanitizeTicker(ticker string) string {
	return strings.NewReplacer(".", "_", "/", "_").Replace(ticker)
}
