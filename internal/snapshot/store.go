package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

const (
	filePrefix = "daily_prices_"
	fileSuffix = ".json"
	dateLayout = "2006-01-02"
)

// Store persists one JSON file per calendar date, holding every ticker
// successfully resolved live that day. Files beyond the retention
// horizon are pruned and never served, even if a race leaves them on
// disk.
type Store struct {
	dir           string
	retentionDays int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates the snapshot directory if needed and returns a Store.
func New(dir string, retentionDays int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{
		dir:           dir,
		retentionDays: retentionDays,
		locks:         make(map[string]*sync.Mutex),
	}, nil
}

// DateKey formats t as the store's per-day key.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// Save merges one quote into the date's snapshot, leaving other
// tickers untouched. The read-modify-write cycle is serialized per date
// so that parallel resolutions cannot lose each other's updates.
func (s *Store) Save(date, ticker string, q quote.Quote) error {
	l := s.lockFor(date)
	l.Lock()
	defer l.Unlock()

	m, err := s.read(date)
	if err != nil {
		// A corrupt snapshot is rebuilt rather than propagated.
		slog.Warn("resetting unreadable snapshot", "date", date, "error", err)
		m = nil
	}
	if m == nil {
		m = make(map[string]quote.Quote, 1)
	}
	m[strings.ToUpper(ticker)] = q

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", date, err)
	}
	return writeAtomic(s.path(date), b)
}

// Load returns the quote recorded for ticker on date. Dates beyond the
// retention horizon are refused even when the file still exists.
func (s *Store) Load(date, ticker string) (quote.Quote, bool) {
	if s.expired(date) {
		return quote.Quote{}, false
	}
	m, err := s.read(date)
	if err != nil || m == nil {
		return quote.Quote{}, false
	}
	q, ok := m[strings.ToUpper(ticker)]
	return q, ok
}

// Prune deletes snapshot files whose date key lies beyond the retention
// horizon.
func (s *Store) Prune() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	for _, path := range matches {
		name := filepath.Base(path)
		date := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		if !s.expired(date) {
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove expired snapshot", "file", name, "error", err)
			continue
		}
		slog.Info("removed expired snapshot", "file", name)
	}
	return nil
}

func (s *Store) expired(date string) bool {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return true
	}
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return d.Before(midnight.AddDate(0, 0, -s.retentionDays))
}

func (s *Store) lockFor(date string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[date]
	if !ok {
		l = &sync.Mutex{}
		s.locks[date] = l
	}
	return l
}

func (s *Store) read(date string) (map[string]quote.Quote, error) {
	b, err := os.ReadFile(s.path(date))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", date, err)
	}
	var m map[string]quote.Quote
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", date, err)
	}
	return m, nil
}

func (s *Store) path(date string) string {
	return filepath.Join(s.dir, filePrefix+date+fileSuffix)
}

// writeAtomic publishes b at path via a temp file and rename so readers
// never observe a partial write.
func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
