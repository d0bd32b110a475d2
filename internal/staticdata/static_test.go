package staticdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

func TestLoad_BundledDataset(t *testing.T) {
	d, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if d.Len() == 0 {
		t.Fatal("Load() produced an empty dataset")
	}

	rec, ok := d.Lookup("AAPL")
	if !ok {
		t.Fatal("Lookup(AAPL) reported a miss in the bundled dataset")
	}
	if rec.Price <= 0 {
		t.Errorf("AAPL price = %.2f, want positive", rec.Price)
	}
	if rec.Name == "" {
		t.Error("AAPL record has no name")
	}
}

func TestLookup_IsCaseInsensitive(t *testing.T) {
	d, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if _, ok := d.Lookup("aapl"); !ok {
		t.Error("Lookup(aapl) reported a miss")
	}
	if _, ok := d.Lookup(" msft "); !ok {
		t.Error("Lookup with surrounding whitespace reported a miss")
	}
}

func TestLookup_UnknownTicker(t *testing.T) {
	d, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if _, ok := d.Lookup("ZZZUNKNOWN"); ok {
		t.Error("Lookup(ZZZUNKNOWN) reported a hit")
	}
}

func TestRecord_Quote(t *testing.T) {
	d, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	rec, ok := d.Lookup("MSFT")
	if !ok {
		t.Fatal("Lookup(MSFT) reported a miss")
	}

	q := rec.Quote()
	if q.Source != quote.SourceStatic {
		t.Errorf("Quote() source = %q, want %q", q.Source, quote.SourceStatic)
	}
	if q.CurrentPrice != rec.Price {
		t.Errorf("Quote() price = %.2f, want %.2f", q.CurrentPrice, rec.Price)
	}
	if q.PERatio == nil {
		t.Error("Quote() PERatio is nil for a record with a known PE")
	}
	if q.ResolvedAt.IsZero() {
		t.Error("Quote() ResolvedAt is zero")
	}
}

func TestRecord_Quote_UnknownPE(t *testing.T) {
	d, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	// INTC ships with pe=0 in the bundled dataset.
	rec, ok := d.Lookup("INTC")
	if !ok {
		t.Fatal("Lookup(INTC) reported a miss")
	}
	if q := rec.Quote(); q.PERatio != nil {
		t.Error("Quote() PERatio is set for a record with unknown PE")
	}
}

func TestLoadFile_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "ticker,name,price,change,percent_change,volume,market_cap,pe,last_updated\n" +
		"TEST,Test Corp,42.50,0.50,1.19,1000,50000,12.5,2026-08-14\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test dataset: %v", err)
	}

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() returned unexpected error: %v", err)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
	if _, ok := d.Lookup("TEST"); !ok {
		t.Error("Lookup(TEST) reported a miss")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing column",
			content: "ticker,name,price\nAAPL,Apple,100\n",
		},
		{
			name: "unparseable price",
			content: "ticker,name,price,change,percent_change,volume,market_cap,pe,last_updated\n" +
				"AAPL,Apple,not-a-number,0,0,0,0,0,2026-08-14\n",
		},
		{
			name: "non-positive price",
			content: "ticker,name,price,change,percent_change,volume,market_cap,pe,last_updated\n" +
				"AAPL,Apple,0,0,0,0,0,0,2026-08-14\n",
		},
		{
			name:    "no data rows",
			content: "ticker,name,price,change,percent_change,volume,market_cap,pe,last_updated\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prices.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write test dataset: %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() expected error for malformed dataset, got nil")
			}
		})
	}
}
