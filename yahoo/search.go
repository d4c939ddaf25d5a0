package yahoo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/papertrade"
)

// SearchResult matches one item of the search API response.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	Type      string `json:"quoteType"`
}

// Name returns the best display name available for the result.
func (r SearchResult) Name() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.LongName
}

// Search looks up symbols matching a query. Responses are cached on disk
// with daily expiry: symbol listings do not change intraday.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	resp, err := c.cached.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": "10",
			"newsCount":   "0",
		}).
		Get(c.baseURL + "/v1/finance/search")
	if err != nil {
		return nil, &papertrade.UpstreamError{Err: err}
	}
	if resp.IsError() {
		return nil, &papertrade.UpstreamError{Err: fmt.Errorf("search endpoint returned %s", resp.Status())}
	}

	var payload struct {
		Quotes []SearchResult `json:"quotes"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, &papertrade.UpstreamError{Err: fmt.Errorf("could not decode search payload: %w", err)}
	}
	return payload.Quotes, nil
}
