package papertrade

import (
	"errors"
	"fmt"
)

// Domain errors. They form a closed set: every failure a simulator
// operation can return wraps exactly one of these, so callers can branch
// with errors.Is / errors.As instead of matching messages.
var (
	// ErrNotFound indicates that no quote data exists for a symbol.
	ErrNotFound = errors.New("no data found")

	// ErrNotFetched indicates that a buy was attempted before the symbol's
	// historical data was fetched into the bar cache.
	ErrNotFetched = errors.New("historical data not fetched")

	// ErrInsufficientFunds indicates that a buy costs more than the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares indicates a sell of more shares than are held.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInvalidQuantity rejects non-positive share quantities before any
	// state is touched.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// StoreError reports a ledger persistence failure. It is the only fatal
// error in the taxonomy: callers must not retry or ignore it.
type StoreError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("ledger store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// UpstreamError reports a quote source failure, as opposed to an empty
// result which maps to ErrNotFound.
type UpstreamError struct {
	Symbol string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("quote source: %v", e.Err)
	}
	return fmt.Sprintf("quote source for %s: %v", e.Symbol, e.Err)
}
func (e *UpstreamError) Unwrap() error { return e.Err }
