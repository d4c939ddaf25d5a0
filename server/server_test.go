package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/yahoo"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// stubQuotes is an in-memory quote source for handler tests.
type stubQuotes struct {
	daily  map[string]papertrade.Series
	latest map[string]papertrade.Bar
}

func (s *stubQuotes) Daily(_ context.Context, symbol, _ string) (papertrade.Series, error) {
	return s.daily[symbol], nil
}

func (s *stubQuotes) Latest(_ context.Context, symbol string) (papertrade.Bar, error) {
	bar, ok := s.latest[symbol]
	if !ok {
		return papertrade.Bar{}, fmt.Errorf("no quote for %s: %w", symbol, papertrade.ErrNotFound)
	}
	return bar, nil
}

// stubSearcher returns canned search results.
type stubSearcher struct {
	results []yahoo.SearchResult
	err     error
}

func (s *stubSearcher) Search(context.Context, string) ([]yahoo.SearchResult, error) {
	return s.results, s.err
}

func testBar(day string, close float64) papertrade.Bar {
	d, err := papertrade.ParseDate(day)
	if err != nil {
		panic(err)
	}
	c := decimal.NewFromFloat(close)
	return papertrade.Bar{Date: d, Open: c, High: c, Low: c, Close: c, Volume: 1000}
}

func newTestServer(t *testing.T, quotes papertrade.QuoteSource, search Searcher) *Server {
	t.Helper()
	dir := t.TempDir()
	store := papertrade.NewLedgerStore(filepath.Join(dir, "portfolio.json"), papertrade.Money{})
	cache := papertrade.NewBarCache(filepath.Join(dir, "data"))
	sim, err := papertrade.NewSimulator(store, cache, quotes)
	if err != nil {
		t.Fatalf("NewSimulator failed: %v", err)
	}
	return New(Config{}, sim, search, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("cannot decode response %q: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, w, &resp)
	return resp.Error.Code
}

func TestPortfolio_Initial(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodGet, "/portfolio")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /portfolio = %d, want 200", w.Code)
	}

	var resp struct {
		Portfolio        map[string]int64 `json:"portfolio"`
		RemainingCapital float64          `json:"remaining_capital"`
	}
	decode(t, w, &resp)
	if resp.RemainingCapital != 1_000_000 {
		t.Errorf("remaining_capital = %v, want 1000000", resp.RemainingCapital)
	}
	if len(resp.Portfolio) != 0 {
		t.Errorf("portfolio = %v, want empty", resp.Portfolio)
	}
}

func TestBuy_WithoutFetchedHistory(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodPost, "/buy?ticker=AAPL&quantity=10")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /buy = %d, want 400", w.Code)
	}

	var resp ErrorResponse
	decode(t, w, &resp)
	if resp.Error.Code != ErrCodeNotFetched {
		t.Errorf("code = %q, want %q", resp.Error.Code, ErrCodeNotFetched)
	}
	if resp.Error.Message != notFetchedMessage {
		t.Errorf("message = %q, want the fetch directive", resp.Error.Message)
	}
}

func TestBuy_MissingParameters(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	for _, target := range []string{"/buy", "/buy?ticker=AAPL", "/buy?ticker=AAPL&quantity=0", "/buy?ticker=AAPL&quantity=-1"} {
		w := do(t, s, http.MethodPost, target)
		if w.Code != http.StatusBadRequest {
			t.Errorf("POST %s = %d, want 400", target, w.Code)
			continue
		}
		if code := errorCode(t, w); code != ErrCodeInvalidParameter {
			t.Errorf("POST %s code = %q, want %q", target, code, ErrCodeInvalidParameter)
		}
	}
}

func TestFetchThenBuySellCycle(t *testing.T) {
	quotes := &stubQuotes{
		daily: map[string]papertrade.Series{
			"AAPL": {testBar("2025-01-02", 150)},
		},
		latest: map[string]papertrade.Bar{
			"AAPL": testBar("2025-01-03", 160),
		},
	}
	s := newTestServer(t, quotes, &stubSearcher{})

	// Fetch history: a CSV lands in the data directory.
	w := do(t, s, http.MethodGet, "/historical-data/aapl?period=1mo")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /historical-data = %d: %s", w.Code, w.Body.String())
	}
	var fetchResp struct {
		Message string `json:"message"`
	}
	decode(t, w, &fetchResp)
	if !strings.Contains(fetchResp.Message, "AAPL.csv") {
		t.Errorf("fetch message = %q, want the saved file path", fetchResp.Message)
	}

	// Buy 10 at the cached close of 150.
	w = do(t, s, http.MethodPost, "/buy?ticker=AAPL&quantity=10")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /buy = %d: %s", w.Code, w.Body.String())
	}
	var buyResp struct {
		Message          string           `json:"message"`
		RemainingCapital float64          `json:"remaining_capital"`
		TotalValue       float64          `json:"total_value"`
		Portfolio        map[string]int64 `json:"portfolio"`
	}
	decode(t, w, &buyResp)
	if buyResp.RemainingCapital != 998500 {
		t.Errorf("remaining_capital = %v, want 998500", buyResp.RemainingCapital)
	}
	// The reported value uses the live quote of 160.
	if buyResp.TotalValue != 1600 {
		t.Errorf("total_value = %v, want 1600", buyResp.TotalValue)
	}
	if buyResp.Portfolio["AAPL"] != 10 {
		t.Errorf("portfolio = %v, want AAPL:10", buyResp.Portfolio)
	}

	// Live valuation of the holdings.
	w = do(t, s, http.MethodGet, "/portfolio-value")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /portfolio-value = %d: %s", w.Code, w.Body.String())
	}
	var valueResp struct {
		TotalValue float64 `json:"total_value"`
	}
	decode(t, w, &valueResp)
	if valueResp.TotalValue != 1600 {
		t.Errorf("total_value = %v, want 1600", valueResp.TotalValue)
	}

	// Sell everything at the live close of 160.
	w = do(t, s, http.MethodPost, "/sell?ticker=AAPL&quantity=10")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /sell = %d: %s", w.Code, w.Body.String())
	}
	var sellResp struct {
		RemainingCapital float64          `json:"remaining_capital"`
		Portfolio        map[string]int64 `json:"portfolio"`
	}
	decode(t, w, &sellResp)
	if sellResp.RemainingCapital != 1000100 {
		t.Errorf("remaining_capital = %v, want 1000100", sellResp.RemainingCapital)
	}
	if len(sellResp.Portfolio) != 0 {
		t.Errorf("portfolio = %v, want empty", sellResp.Portfolio)
	}
}

func TestBuy_InsufficientFunds(t *testing.T) {
	quotes := &stubQuotes{
		daily: map[string]papertrade.Series{
			"AAPL": {testBar("2025-01-02", 150)},
		},
	}
	s := newTestServer(t, quotes, &stubSearcher{})

	if w := do(t, s, http.MethodGet, "/historical-data/AAPL"); w.Code != http.StatusOK {
		t.Fatalf("GET /historical-data = %d", w.Code)
	}

	w := do(t, s, http.MethodPost, "/buy?ticker=AAPL&quantity=1000000")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /buy = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != ErrCodeInsufficientFunds {
		t.Errorf("code = %q, want %q", code, ErrCodeInsufficientFunds)
	}
}

func TestSell_InsufficientShares(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodPost, "/sell?ticker=MSFT&quantity=1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /sell = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != ErrCodeInsufficientShares {
		t.Errorf("code = %q, want %q", code, ErrCodeInsufficientShares)
	}
}

func TestHistoricalData_InvalidPeriod(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodGet, "/historical-data/AAPL?period=7mo")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("GET /historical-data = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != ErrCodeInvalidParameter {
		t.Errorf("code = %q, want %q", code, ErrCodeInvalidParameter)
	}
}

func TestHistoricalData_UnknownSymbol(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodGet, "/historical-data/NOPE")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /historical-data for unknown symbol = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, ErrCodeNotFound)
	}
}

func TestPortfolioValue_MissingQuote(t *testing.T) {
	quotes := &stubQuotes{
		daily: map[string]papertrade.Series{
			"AAPL": {testBar("2025-01-02", 150)},
		},
	}
	s := newTestServer(t, quotes, &stubSearcher{})

	if w := do(t, s, http.MethodGet, "/historical-data/AAPL"); w.Code != http.StatusOK {
		t.Fatalf("GET /historical-data = %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/buy?ticker=AAPL&quantity=1"); w.Code != http.StatusOK {
		// The buy itself succeeds; the in-response valuation already fails.
		if errorCode(t, w) != ErrCodeNotFound {
			t.Fatalf("POST /buy = %d: %s", w.Code, w.Body.String())
		}
	}

	// A held symbol without a live quote fails the whole valuation.
	w := do(t, s, http.MethodGet, "/portfolio-value")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /portfolio-value = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, ErrCodeNotFound)
	}
}

func TestSearch(t *testing.T) {
	search := &stubSearcher{
		results: []yahoo.SearchResult{
			{Symbol: "AAPL", ShortName: "Apple Inc."},
			{Symbol: "APLE", LongName: "Apple Hospitality REIT, Inc."},
		},
	}
	s := newTestServer(t, &stubQuotes{}, search)

	w := do(t, s, http.MethodGet, "/search/apple")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /search = %d, want 200", w.Code)
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	decode(t, w, &resp)
	if resp.Symbol != "AAPL" || resp.Name != "Apple Inc." {
		t.Errorf("best match = %+v, want AAPL / Apple Inc.", resp)
	}
}

func TestSearch_NoResults(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodGet, "/search/nothing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /search = %d, want 404", w.Code)
	}

	var resp ErrorResponse
	decode(t, w, &resp)
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", resp.Error.Code, ErrCodeNotFound)
	}
	if resp.Error.Message != "No data found for query" {
		t.Errorf("message = %q, want %q", resp.Error.Message, "No data found for query")
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	search := &stubSearcher{err: &papertrade.UpstreamError{Err: fmt.Errorf("rate limited")}}
	s := newTestServer(t, &stubQuotes{}, search)

	w := do(t, s, http.MethodGet, "/search/apple")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("GET /search = %d, want 502", w.Code)
	}
	if code := errorCode(t, w); code != ErrCodeUpstream {
		t.Errorf("code = %q, want %q", code, ErrCodeUpstream)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, &stubQuotes{}, &stubSearcher{})

	w := do(t, s, http.MethodGet, "/portfolio")
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("response is missing the X-Request-ID header")
	}

	// A caller-provided ID is echoed back and lands in error payloads.
	req := httptest.NewRequest(http.MethodGet, "/search/nothing", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("echoed request id = %q, want req-42", got)
	}
	var resp ErrorResponse
	decode(t, rec, &resp)
	if resp.Error.RequestID != "req-42" {
		t.Errorf("error payload request_id = %q, want req-42", resp.Error.RequestID)
	}
}
