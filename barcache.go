package papertrade

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

var barCSVHeader = []string{"date", "open", "high", "low", "close", "volume"}

// BarCache is a durable per-symbol store of the last fetched historical
// series, one CSV file per symbol under a data directory. It is written by
// the fetch-history operation and read by buy and by chart clients.
type BarCache struct {
	dir string
}

// NewBarCache creates a cache rooted at dir.
func NewBarCache(dir string) *BarCache { return &BarCache{dir: dir} }

// Dir returns the cache directory.
func (c *BarCache) Dir() string { return c.dir }

// Path returns the CSV file location for a symbol.
func (c *BarCache) Path(symbol string) string {
	return filepath.Join(c.dir, NormalizeSymbol(symbol)+".csv")
}

// Exists reports whether a series has been cached for the symbol.
func (c *BarCache) Exists(symbol string) bool {
	_, err := os.Stat(c.Path(symbol))
	return err == nil
}

// Write replaces the cached series for a symbol.
func (c *BarCache) Write(symbol string, series Series) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("could not create data directory %q: %w", c.dir, err)
	}
	f, err := os.Create(c.Path(symbol))
	if err != nil {
		return fmt.Errorf("could not create bar file for %s: %w", symbol, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(barCSVHeader); err != nil {
		return err
	}
	for _, b := range series {
		record := []string{
			b.Date.String(),
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

// Read returns the cached series for a symbol, ErrNotFetched when no file
// exists.
func (c *BarCache) Read(symbol string) (Series, error) {
	f, err := os.Open(c.Path(symbol))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFetched
		}
		return nil, fmt.Errorf("could not open bar file for %s: %w", symbol, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read bar file for %s: %w", symbol, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	series := make(Series, 0, len(records)-1)
	for _, record := range records[1:] { // skip header
		bar, err := parseBarRecord(record)
		if err != nil {
			return nil, fmt.Errorf("invalid bar in %s cache: %w", symbol, err)
		}
		series = append(series, bar)
	}
	return series, nil
}

// LatestClose returns the close of the most recent cached bar.
// ErrNotFetched when no file exists, ErrNotFound when the cached series is
// empty.
func (c *BarCache) LatestClose(symbol string) (Money, error) {
	series, err := c.Read(symbol)
	if err != nil {
		return Money{}, err
	}
	close, ok := series.LatestClose()
	if !ok {
		return Money{}, ErrNotFound
	}
	return close, nil
}

func parseBarRecord(record []string) (Bar, error) {
	if len(record) != len(barCSVHeader) {
		return Bar{}, fmt.Errorf("expected %d fields, got %d", len(barCSVHeader), len(record))
	}
	day, err := ParseDate(record[0])
	if err != nil {
		return Bar{}, err
	}
	var prices [4]decimal.Decimal
	for i, field := range record[1:5] {
		prices[i], err = decimal.NewFromString(field)
		if err != nil {
			return Bar{}, fmt.Errorf("invalid price %q: %w", field, err)
		}
	}
	volume, err := strconv.ParseInt(record[5], 10, 64)
	if err != nil {
		return Bar{}, fmt.Errorf("invalid volume %q: %w", record[5], err)
	}
	return Bar{Date: day, Open: prices[0], High: prices[1], Low: prices[2], Close: prices[3], Volume: volume}, nil
}
