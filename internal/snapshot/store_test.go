package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), 7)
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}
	return s
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	s := newTestStore(t)
	today := DateKey(time.Now())

	q := quote.Quote{Ticker: "AAPL", CurrentPrice: 178.23, Source: quote.SourceLive}
	if err := s.Save(today, "AAPL", q); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	got, ok := s.Load(today, "AAPL")
	if !ok {
		t.Fatal("Load() reported a miss after Save()")
	}
	if got.CurrentPrice != q.CurrentPrice {
		t.Errorf("Load() price = %.2f, want %.2f", got.CurrentPrice, q.CurrentPrice)
	}
}

func TestSave_IsAdditive(t *testing.T) {
	s := newTestStore(t)
	today := DateKey(time.Now())

	if err := s.Save(today, "AAPL", quote.Quote{Ticker: "AAPL", CurrentPrice: 178.23}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if err := s.Save(today, "MSFT", quote.Quote{Ticker: "MSFT", CurrentPrice: 378.91}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	if _, ok := s.Load(today, "AAPL"); !ok {
		t.Error("Load() lost AAPL after a later Save() for MSFT")
	}
	if _, ok := s.Load(today, "MSFT"); !ok {
		t.Error("Load() reported a miss for MSFT")
	}
}

func TestLoad_IsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	today := DateKey(time.Now())

	if err := s.Save(today, "aapl", quote.Quote{Ticker: "AAPL", CurrentPrice: 178.23}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}
	if _, ok := s.Load(today, "AAPL"); !ok {
		t.Error("Load() reported a miss for upper-cased ticker")
	}
}

func TestLoad_RefusesExpiredDates(t *testing.T) {
	s := newTestStore(t)
	old := DateKey(time.Now().AddDate(0, 0, -10))

	// The file exists on disk but lies beyond the retention horizon.
	if err := s.Save(old, "AAPL", quote.Quote{Ticker: "AAPL", CurrentPrice: 170.00}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	if _, ok := s.Load(old, "AAPL"); ok {
		t.Error("Load() served a snapshot beyond the retention horizon")
	}
}

func TestPrune_RemovesOldSnapshots(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, 7)
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v", err)
	}

	today := DateKey(time.Now())
	old := DateKey(time.Now().AddDate(0, 0, -10))
	edge := DateKey(time.Now().AddDate(0, 0, -7))

	for _, date := range []string{today, old, edge} {
		if err := s.Save(date, "AAPL", quote.Quote{Ticker: "AAPL", CurrentPrice: 178.23}); err != nil {
			t.Fatalf("Save(%s) returned unexpected error: %v", date, err)
		}
	}

	if err := s.Prune(); err != nil {
		t.Fatalf("Prune() returned unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, filePrefix+old+fileSuffix)); !os.IsNotExist(err) {
		t.Error("Prune() left a snapshot beyond the retention horizon")
	}
	if _, err := os.Stat(filepath.Join(dir, filePrefix+today+fileSuffix)); err != nil {
		t.Errorf("Prune() removed today's snapshot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filePrefix+edge+fileSuffix)); err != nil {
		t.Errorf("Prune() removed a snapshot still inside the retention horizon: %v", err)
	}
}

func TestSave_ConcurrentSameDate(t *testing.T) {
	s := newTestStore(t)
	today := DateKey(time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := fmt.Sprintf("SYM%d", i)
			q := quote.Quote{Ticker: ticker, CurrentPrice: float64(100 + i)}
			if err := s.Save(today, ticker, q); err != nil {
				t.Errorf("Save(%s) returned unexpected error: %v", ticker, err)
			}
		}()
	}
	wg.Wait()

	// Every concurrent write must survive: the per-date lock prevents
	// lost updates in the read-modify-write cycle.
	for i := 0; i < 20; i++ {
		ticker := fmt.Sprintf("SYM%d", i)
		got, ok := s.Load(today, ticker)
		if !ok {
			t.Errorf("Load() lost %s after concurrent saves", ticker)
			continue
		}
		if got.CurrentPrice != float64(100+i) {
			t.Errorf("Load(%s) price = %.2f, want %.2f", ticker, got.CurrentPrice, float64(100+i))
		}
	}
}
