// Package binance implements the provider adapter for the Binance 24h ticker
// endpoint. Binance is the lowest-latency upstream of the four, so it runs
// under the tightest budget.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/bitvera/priceoracle/internal/domain"
	"github.com/bitvera/priceoracle/internal/httpx"
	"github.com/bitvera/priceoracle/internal/provider"
	"github.com/bitvera/priceoracle/internal/symbol"
)

const (
	DefaultBaseURL = "https://api.binance.com"

	defaultTimeout = 5 * time.Second
)

// Config holds the connection parameters for the Binance adapter.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the adapter for GET /api/v3/ticker/24hr. Binance serializes every
// numeric field as a string; tether is absent from its table because USDT is
// the quote currency, not a tradable base.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *httpx.Client
}

// New creates the Binance adapter.
func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{baseURL: cfg.BaseURL, timeout: cfg.Timeout, http: hc}
}

// Name identifies this adapter in source tags and error strings.
func (c *Client) Name() string { return "binance" }

// tickerRow is the wire shape of one 24hr ticker entry.
type tickerRow struct {
	Symbol             string `json:"symbol"`
	LastPrice          any    `json:"lastPrice"`
	PriceChangePercent any    `json:"priceChangePercent"`
	HighPrice          any    `json:"highPrice"`
	LowPrice           any    `json:"lowPrice"`
	QuoteVolume        any    `json:"quoteVolume"`
}

// Fetch implements domain.Provider. Market cap is not reported by this
// endpoint and stays 0.
func (c *Client) Fetch(ctx context.Context, assetIDs []string) (domain.QuoteSet, error) {
	pairs := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if sym, ok := symbol.ToProviderSymbol(symbol.Binance, id); ok {
			pairs = append(pairs, sym)
		}
	}
	if len(pairs) == 0 {
		return domain.QuoteSet{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The symbols parameter is a JSON array, URL-encoded into the query.
	symsJSON, err := json.Marshal(pairs)
	if err != nil {
		return nil, fmt.Errorf("binance: encode symbols: %w", err)
	}
	params := url.Values{}
	params.Set("symbols", string(symsJSON))

	var rows []tickerRow
	reqURL := c.baseURL + "/api/v3/ticker/24hr?" + params.Encode()
	if err := provider.GetJSON(ctx, c.http, reqURL, &rows); err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	quotes := make(domain.QuoteSet, 0, len(rows))
	for _, row := range rows {
		id, ok := symbol.FromProviderSymbol(symbol.Binance, row.Symbol)
		if !ok {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			ID:               id,
			PriceUSD:         provider.ToFloat(row.LastPrice),
			ChangePercent24h: provider.ToFloat(row.PriceChangePercent),
			High24h:          provider.ToFloat(row.HighPrice),
			Low24h:           provider.ToFloat(row.LowPrice),
			Volume24h:        provider.ToFloat(row.QuoteVolume),
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("binance: %w", domain.ErrEmptyResult)
	}
	return quotes, nil
}

var _ domain.Provider = (*Client)(nil)
