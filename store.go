package papertrade

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DefaultStartCapital is the cash balance of a freshly created ledger.
var DefaultStartCapital = M(1_000_000, USD)

// LedgerStore durably persists the ledger as a single JSON file.
type LedgerStore struct {
	path         string
	startCapital Money
}

// NewLedgerStore creates a store writing to path. A zero startCapital
// selects DefaultStartCapital.
func NewLedgerStore(path string, startCapital Money) *LedgerStore {
	if startCapital.IsZero() {
		startCapital = DefaultStartCapital
	}
	return &LedgerStore{path: path, startCapital: startCapital}
}

// Path returns the ledger file location.
func (s *LedgerStore) Path() string { return s.path }

// Load returns the persisted ledger. A missing or malformed file never
// fails the caller: the store falls back to a default ledger and persists
// it immediately, so the next Load sees a well-formed record. An open
// failure other than file-not-found is a hard StoreError instead: the file
// may be intact and must not be overwritten with defaults.
func (s *LedgerStore) Load() (*Ledger, error) {
	f, err := os.Open(s.path)
	if err == nil {
		defer f.Close()
		ledger, decErr := DecodeLedger(f)
		if decErr == nil {
			return ledger, nil
		}
		log.Printf("warning: ledger file %q is malformed (%v), resetting to defaults", s.path, decErr)
	} else if !os.IsNotExist(err) {
		return nil, &StoreError{Op: "load", Err: err}
	}

	ledger := NewLedger(s.startCapital)
	if err := s.Save(ledger); err != nil {
		return ledger, err
	}
	return ledger, nil
}

// Save overwrites the persisted record. The write goes to a temporary file
// in the same directory which is then renamed over the target, so a
// subsequent Load never observes a partial record. A write failure is a
// hard StoreError, never swallowed.
func (s *LedgerStore) Save(l *Ledger) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := EncodeLedger(tmp, l); err != nil {
		tmp.Close()
		return &StoreError{Op: "save", Err: fmt.Errorf("could not encode ledger: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &StoreError{Op: "save", Err: err}
	}
	return nil
}
