package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/papertrade"
	"github.com/shopspring/decimal"
)

// Daily returns the date-ascending daily series for a symbol over a chart
// period. An unknown symbol yields an empty series, not an error.
func (c *Client) Daily(ctx context.Context, symbol, period string) (papertrade.Series, error) {
	if period == "" {
		period = DefaultPeriod
	}
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("invalid period %q, expected one of %v", period, validPeriods)
	}
	return c.chart(ctx, symbol, period, "1d")
}

// Latest returns the most recent bar for a symbol, approximated by the last
// minute bar of the current session. ErrNotFound when the symbol has no
// data.
func (c *Client) Latest(ctx context.Context, symbol string) (papertrade.Bar, error) {
	series, err := c.chart(ctx, symbol, "1d", "1m")
	if err != nil {
		return papertrade.Bar{}, err
	}
	bar, ok := series.Latest()
	if !ok {
		return papertrade.Bar{}, fmt.Errorf("no quote for %s: %w", symbol, papertrade.ErrNotFound)
	}
	return bar, nil
}

// chart calls the v8 chart endpoint and decodes the bars.
func (c *Client) chart(ctx context.Context, symbol, rng, interval string) (papertrade.Series, error) {
	resp, err := c.live.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    rng,
			"interval": interval,
			"events":   "history",
		}).
		Get(c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, &papertrade.UpstreamError{Symbol: symbol, Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		// Unknown symbol. Empty result, never a hard failure.
		return nil, nil
	}
	if resp.IsError() {
		return nil, &papertrade.UpstreamError{Symbol: symbol, Err: fmt.Errorf("chart endpoint returned %s", resp.Status())}
	}
	series, err := parseChart(resp.Body())
	if err != nil {
		return nil, &papertrade.UpstreamError{Symbol: symbol, Err: err}
	}
	return series, nil
}

// parseChart extracts bars from the deeply nested chart payload:
// timestamps at $.chart.result[0].timestamp and OHLCV arrays under
// $.chart.result[0].indicators.quote[0].
func parseChart(body []byte) (papertrade.Series, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("could not decode chart payload: %w", err)
	}

	// A provider-level error object means "no data for this query".
	if e, err := jsonpath.Get("$.chart.error.code", doc); err == nil && e != nil {
		return nil, nil
	}

	rawTS, err := jsonpath.Get("$.chart.result[0].timestamp", doc)
	if err != nil {
		return nil, nil // no series in the payload
	}
	timestamps, ok := rawTS.([]any)
	if !ok || len(timestamps) == 0 {
		return nil, nil
	}

	rawQuote, err := jsonpath.Get("$.chart.result[0].indicators.quote[0]", doc)
	if err != nil {
		return nil, fmt.Errorf("chart payload has timestamps but no quote arrays: %w", err)
	}
	quote, ok := rawQuote.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected quote object of type %T", rawQuote)
	}

	opens := numbers(quote, "open")
	highs := numbers(quote, "high")
	lows := numbers(quote, "low")
	closes := numbers(quote, "close")
	volumes := numbers(quote, "volume")

	series := make(papertrade.Series, 0, len(timestamps))
	for i, rawT := range timestamps {
		t, ok := rawT.(float64)
		if !ok {
			continue
		}
		closePrice, ok := at(closes, i)
		if !ok {
			continue // null close: the bar is unusable for pricing
		}
		bar := papertrade.Bar{
			Date:  papertrade.DateOf(time.Unix(int64(t), 0).UTC()),
			Close: decimal.NewFromFloat(closePrice),
		}
		if v, ok := at(opens, i); ok {
			bar.Open = decimal.NewFromFloat(v)
		}
		if v, ok := at(highs, i); ok {
			bar.High = decimal.NewFromFloat(v)
		}
		if v, ok := at(lows, i); ok {
			bar.Low = decimal.NewFromFloat(v)
		}
		if v, ok := at(volumes, i); ok {
			bar.Volume = int64(v)
		}
		series = append(series, bar)
	}
	return series, nil
}

// numbers returns one OHLCV array of the quote object, nil when absent.
func numbers(quote map[string]any, key string) []any {
	arr, _ := quote[key].([]any)
	return arr
}

// at returns the i-th element of a chart array as a float, false for nulls
// and out-of-range indices.
func at(arr []any, i int) (float64, bool) {
	if i >= len(arr) {
		return 0, false
	}
	v, ok := arr[i].(float64)
	return v, ok
}
