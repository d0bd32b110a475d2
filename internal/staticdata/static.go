package staticdata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"github.com/shamiquekhan/ai-investment-advisor-agent/internal/quote"
)

//go:embed static_prices.csv
var embedded []byte

// Record is one row of the reference dataset.
type Record struct {
	Ticker        string
	Name          string
	Price         float64
	Change        float64
	PercentChange float64
	Volume        int64
	MarketCap     float64
	PE            float64 // 0 when unknown
	LastUpdated   string
}

// Quote converts the record into a static-tier Quote.
func (r Record) Quote() quote.Quote {
	q := quote.Quote{
		Ticker:        r.Ticker,
		Name:          r.Name,
		CurrentPrice:  r.Price,
		Change:        r.Change,
		PercentChange: r.PercentChange,
		Volume:        r.Volume,
		MarketCap:     r.MarketCap,
		ResolvedAt:    time.Now(),
		Source:        quote.SourceStatic,
	}
	if r.PE > 0 {
		pe := r.PE
		q.PERatio = &pe
	}
	return q
}

// Dataset is the immutable last-resort price table, loaded once at
// startup and never mutated afterwards, so lookups need no locking.
type Dataset struct {
	records map[string]Record
}

// Load parses the bundled dataset.
func Load() (*Dataset, error) {
	return parse(bytes.NewReader(embedded))
}

// LoadFile parses a dataset from disk, replacing the bundled table.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open static dataset: %w", err)
	}
	defer f.Close()
	return parse(f)
}

// Lookup returns the record for a ticker, case-insensitively.
func (d *Dataset) Lookup(ticker string) (Record, bool) {
	r, ok := d.records[strings.ToUpper(strings.TrimSpace(ticker))]
	return r, ok
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.records)
}

var columns = []string{"ticker", "name", "price", "change", "percent_change", "volume", "market_cap", "pe", "last_updated"}

// parse reads the CSV and fails fast on any malformed row: a broken
// static dataset must stop startup, not surface later as a bad fallback.
func parse(r io.Reader) (*Dataset, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read static dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("static dataset has no data rows")
	}

	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("static dataset missing column %q", col)
		}
	}

	records := make(map[string]Record, len(rows)-1)
	for n, row := range rows[1:] {
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("static dataset row %d: %w", n+2, err)
		}
		records[rec.Ticker] = rec
	}
	return &Dataset{records: records}, nil
}

func parseRow(row []string, idx map[string]int) (Record, error) {
	field := func(name string) string {
		return strings.TrimSpace(row[idx[name]])
	}

	ticker := strings.ToUpper(field("ticker"))
	if ticker == "" {
		return Record{}, errors.New("empty ticker")
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable price %q", field("price"))
	}
	if price <= 0 {
		return Record{}, fmt.Errorf("non-positive price for %s", ticker)
	}
	change, err := strconv.ParseFloat(field("change"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable change %q", field("change"))
	}
	pct, err := strconv.ParseFloat(field("percent_change"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable percent_change %q", field("percent_change"))
	}
	volume, err := strconv.ParseInt(field("volume"), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable volume %q", field("volume"))
	}
	marketCap, err := strconv.ParseFloat(field("market_cap"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable market_cap %q", field("market_cap"))
	}
	pe, err := strconv.ParseFloat(field("pe"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("unparseable pe %q", field("pe"))
	}

	return Record{
		Ticker:        ticker,
		Name:          field("name"),
		Price:         price,
		Change:        change,
		PercentChange: pct,
		Volume:        volume,
		MarketCap:     marketCap,
		PE:            pe,
		LastUpdated:   field("last_updated"),
	}, nil
}
