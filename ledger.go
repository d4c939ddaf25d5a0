package papertrade

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Ledger is the single account record of the simulator: a cash balance and
// the held quantity per symbol.
//
// Two invariants hold after every committed mutation: cash is never
// negative, and holdings never contain a zero-quantity entry. Symbols are
// normalized to uppercase on every access so that "aapl" and "AAPL" name
// the same position.
type Ledger struct {
	cash     Money
	holdings map[string]int64
}

// NewLedger creates a ledger with the given starting capital and no holdings.
func NewLedger(startCapital Money) *Ledger {
	return &Ledger{
		cash:     startCapital,
		holdings: make(map[string]int64),
	}
}

// NormalizeSymbol returns the canonical (uppercase, trimmed) form of a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() Money { return l.cash }

// Holdings returns a copy of the holdings map.
func (l *Ledger) Holdings() map[string]int64 {
	return maps.Clone(l.holdings)
}

// Position returns the held quantity for a symbol, zero if not held.
func (l *Ledger) Position(symbol string) int64 {
	return l.holdings[NormalizeSymbol(symbol)]
}

// Symbols returns the held symbols in lexical order.
func (l *Ledger) Symbols() []string {
	keys := maps.Keys(l.holdings)
	slices.Sort(keys)
	return keys
}

// Debit removes amount from the cash balance. It fails with
// ErrInsufficientFunds when amount exceeds the balance, leaving the ledger
// unchanged.
func (l *Ledger) Debit(amount Money) error {
	if amount.GreaterThan(l.cash) {
		return ErrInsufficientFunds
	}
	l.cash = l.cash.Sub(amount)
	return nil
}

// Credit adds amount to the cash balance.
func (l *Ledger) Credit(amount Money) {
	l.cash = l.cash.Add(amount)
}

// Add increases the held quantity for a symbol, creating the entry if absent.
func (l *Ledger) Add(symbol string, quantity int64) {
	l.holdings[NormalizeSymbol(symbol)] += quantity
}

// Remove decreases the held quantity for a symbol. It fails with
// ErrInsufficientShares when fewer than quantity shares are held, leaving
// the ledger unchanged. An entry reaching zero is deleted entirely.
func (l *Ledger) Remove(symbol string, quantity int64) error {
	symbol = NormalizeSymbol(symbol)
	held, ok := l.holdings[symbol]
	if !ok || held < quantity {
		return ErrInsufficientShares
	}
	if held == quantity {
		delete(l.holdings, symbol)
		return nil
	}
	l.holdings[symbol] = held - quantity
	return nil
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{cash: l.cash, holdings: maps.Clone(l.holdings)}
}
