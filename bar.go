package papertrade

import "github.com/shopspring/decimal"

// Bar is one OHLCV observation for a symbol on a given day.
type Bar struct {
	Date   Date
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Series is a date-ascending sequence of bars. The last bar is the "current
// price" for valuation purposes: the latest cached close, not a live tick.
type Series []Bar

// Latest returns the last bar of the series, false on an empty series.
func (s Series) Latest() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// LatestClose returns the close of the last bar as Money in USD.
func (s Series) LatestClose() (Money, bool) {
	bar, ok := s.Latest()
	if !ok {
		return Money{}, false
	}
	return M(bar.Close, USD), true
}
