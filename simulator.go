package papertrade

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// QuoteSource provides market data bars for a symbol. Implementations must
// return ErrNotFound (possibly wrapped) when the symbol has no data, and an
// *UpstreamError for transport or provider failures.
type QuoteSource interface {
	// Daily returns the date-ascending daily series for a period such as
	// "1y" or "max".
	Daily(ctx context.Context, symbol, period string) (Series, error)
	// Latest returns the most recent bar available for the symbol.
	Latest(ctx context.Context, symbol string) (Bar, error)
}

// Simulator is the portfolio core: it exclusively owns the in-memory ledger
// for the process lifetime and applies buy/sell/valuation operations
// against it.
//
// Each mutation is atomic: the price lookup, the balance and holdings
// update and the persist either all complete, or the ledger is left
// unchanged. A single mutex serializes the load-mutate-persist sequence so
// concurrent API calls cannot lose updates.
type Simulator struct {
	mu     sync.Mutex
	ledger *Ledger
	store  *LedgerStore
	cache  *BarCache
	quotes QuoteSource
}

// NewSimulator loads the ledger from the store and returns a ready
// simulator. The only possible error is a StoreError, from the load or
// from the self-healing write of a fresh ledger.
func NewSimulator(store *LedgerStore, cache *BarCache, quotes QuoteSource) (*Simulator, error) {
	ledger, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Simulator{ledger: ledger, store: store, cache: cache, quotes: quotes}, nil
}

// Cache returns the simulator's bar cache.
func (s *Simulator) Cache() *BarCache { return s.cache }

// Ledger returns a snapshot of the current cash balance and holdings.
func (s *Simulator) Ledger() (cash Money, holdings map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Cash(), s.ledger.Holdings()
}

// LatestClose returns the most recent live close for a symbol. It is the
// price oracle used by sell and valuation; its result is "most recent
// available bar", not a guaranteed live tick.
func (s *Simulator) LatestClose(ctx context.Context, symbol string) (Money, error) {
	symbol = NormalizeSymbol(symbol)
	bar, err := s.quotes.Latest(ctx, symbol)
	if err != nil {
		return Money{}, err
	}
	return M(bar.Close, USD), nil
}

// FetchHistory fetches the historical daily series for a symbol from the
// quote source and replaces the cached series. ErrNotFound when the source
// has no data for the symbol.
func (s *Simulator) FetchHistory(ctx context.Context, symbol, period string) (Series, error) {
	symbol = NormalizeSymbol(symbol)
	series, err := s.quotes.Daily(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no data for %s: %w", symbol, ErrNotFound)
	}
	if err := s.cache.Write(symbol, series); err != nil {
		return nil, err
	}
	return series, nil
}

// WarmCache fetches history for every held symbol that has no cached
// series yet. Individual failures are joined and returned; the cache is
// still warmed for the symbols that succeeded.
func (s *Simulator) WarmCache(ctx context.Context) error {
	s.mu.Lock()
	symbols := s.ledger.Symbols()
	s.mu.Unlock()

	var errs error
	for _, symbol := range symbols {
		if s.cache.Exists(symbol) {
			continue
		}
		if _, err := s.FetchHistory(ctx, symbol, "max"); err != nil {
			errs = errors.Join(errs, fmt.Errorf("warm %s: %w", symbol, err))
		}
	}
	return errs
}

// Buy purchases quantity shares of symbol at the latest cached close.
//
// The symbol's history must already be in the bar cache: buy deliberately
// never reaches for the network, so a mutating call cannot block on a
// remote fetch. ErrNotFetched tells the caller to fetch history first.
func (s *Simulator) Buy(ctx context.Context, symbol string, quantity int64) (Money, map[string]int64, error) {
	symbol = NormalizeSymbol(symbol)
	if quantity <= 0 {
		return Money{}, nil, fmt.Errorf("buy %d %s: %w", quantity, symbol, ErrInvalidQuantity)
	}
	if !s.cache.Exists(symbol) {
		return Money{}, nil, fmt.Errorf("%s: %w", symbol, ErrNotFetched)
	}
	price, err := s.cache.LatestClose(symbol)
	if err != nil {
		return Money{}, nil, err
	}
	cost := price.Mul(Q(quantity))

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ledger.Clone()
	if err := next.Debit(cost); err != nil {
		return Money{}, nil, fmt.Errorf("buy %d %s at %s: %w", quantity, symbol, price, err)
	}
	next.Add(symbol, quantity)

	if err := s.store.Save(next); err != nil {
		return Money{}, nil, err
	}
	s.ledger = next
	return next.Cash(), next.Holdings(), nil
}

// Sell sells quantity shares of symbol at the latest live close.
//
// Unlike Buy, the price comes from a live quote rather than the cache.
// The asymmetry is deliberate; see DESIGN.md.
func (s *Simulator) Sell(ctx context.Context, symbol string, quantity int64) (Money, map[string]int64, error) {
	symbol = NormalizeSymbol(symbol)
	if quantity <= 0 {
		return Money{}, nil, fmt.Errorf("sell %d %s: %w", quantity, symbol, ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger.Position(symbol) < quantity {
		return Money{}, nil, fmt.Errorf("sell %d %s: %w", quantity, symbol, ErrInsufficientShares)
	}

	price, err := s.LatestClose(ctx, symbol)
	if err != nil {
		return Money{}, nil, err
	}
	revenue := price.Mul(Q(quantity))

	next := s.ledger.Clone()
	next.Credit(revenue)
	if err := next.Remove(symbol, quantity); err != nil {
		return Money{}, nil, err
	}

	if err := s.store.Save(next); err != nil {
		return Money{}, nil, err
	}
	s.ledger = next
	return next.Cash(), next.Holdings(), nil
}

// Valuation returns the total market value of the holdings, excluding
// cash: the sum over every position of quantity times the latest live
// close. An empty portfolio values to zero. A failed lookup for any held
// symbol aborts the whole call; no partial total is ever returned.
func (s *Simulator) Valuation(ctx context.Context) (Money, error) {
	s.mu.Lock()
	holdings := s.ledger.Holdings()
	s.mu.Unlock()

	total := M(0, USD)
	symbols := maps.Keys(holdings)
	slices.Sort(symbols)
	for _, symbol := range symbols {
		price, err := s.LatestClose(ctx, symbol)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(price.Mul(Q(holdings[symbol])))
	}
	return total, nil
}
