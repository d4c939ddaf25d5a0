package papertrade

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ledgerRecord is the persisted form of a Ledger. The field names and
// shapes are part of the on-disk contract and must round-trip exactly:
//
//	{"start_capital": 998500, "portfolio": {"AAPL": 10}}
type ledgerRecord struct {
	StartCapital decimal.Decimal  `json:"start_capital"`
	Portfolio    map[string]int64 `json:"portfolio"`
}

// EncodeLedger writes the ledger as a single JSON record.
func EncodeLedger(w io.Writer, l *Ledger) error {
	rec := ledgerRecord{
		StartCapital: l.Cash().Amount(),
		Portfolio:    l.Holdings(),
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rec)
}

// DecodeLedger reads a ledger from its persisted JSON record. Holdings keys
// are normalized to uppercase and zero or negative entries are rejected so
// a decoded ledger always satisfies the package invariants.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	var rec ledgerRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("could not decode ledger record: %w", err)
	}
	if rec.StartCapital.IsNegative() {
		return nil, fmt.Errorf("invalid ledger record: negative cash %s", rec.StartCapital)
	}

	l := NewLedger(M(rec.StartCapital, USD))
	for symbol, quantity := range rec.Portfolio {
		if quantity <= 0 {
			return nil, fmt.Errorf("invalid ledger record: non-positive quantity %d for %q", quantity, symbol)
		}
		l.Add(symbol, quantity)
	}
	return l, nil
}
