// Package kraken implements the provider adapter for the Kraken public
// Ticker endpoint.
package kraken

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bitvera/priceoracle/internal/domain"
	"github.com/bitvera/priceoracle/internal/httpx"
	"github.com/bitvera/priceoracle/internal/provider"
	"github.com/bitvera/priceoracle/internal/symbol"
)

const (
	DefaultBaseURL = "https://api.kraken.com"

	defaultTimeout = 7 * time.Second
)

// Config holds the connection parameters for the Kraken adapter.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the adapter for GET /0/public/Ticker. The result object is keyed
// by Kraken pair names (e.g. XXBTZUSD); unknown keys are skipped rather than
// fuzzy-matched.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *httpx.Client
}

// New creates the Kraken adapter.
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
func (c *Client) Name() string { return "kraken" }

// tickerInfo is the wire shape of one Ticker result entry. Array fields hold
// [today, last 24h]; index 1 is the rolling 24h figure.
type tickerInfo struct {
	Close  []any `json:"c"` // [price, lot volume]
	High   []any `json:"h"`
	Low    []any `json:"l"`
	Volume []any `json:"v"`
	Open   any   `json:"o"`
}

type tickerResponse struct {
	Error  []string              `json:"error"`
	Result map[string]tickerInfo `json:"result"`
}

// Fetch implements domain.Provider. Kraken reports no 24h change percentage
// directly; it is derived from the open and last prices. Market cap is not
// reported and stays 0.
func (c *Client) Fetch(ctx context.Context, assetIDs []string) (domain.QuoteSet, error) {
	pairs := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if sym, ok := symbol.ToProviderSymbol(symbol.Kraken, id); ok {
			pairs = append(pairs, sym)
		}
	}
	if len(pairs) == 0 {
		return domain.QuoteSet{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("pair", strings.Join(pairs, ","))

	var body tickerResponse
	reqURL := c.baseURL + "/0/public/Ticker?" + params.Encode()
	if err := provider.GetJSON(ctx, c.http, reqURL, &body); err != nil {
		return nil, fmt.Errorf("kraken: %w", err)
	}
	if len(body.Error) > 0 {
		return nil, fmt.Errorf("kraken: upstream error: %s", strings.Join(body.Error, "; "))
	}

	quotes := make(domain.QuoteSet, 0, len(body.Result))
	for pair, info := range body.Result {
		id, ok := symbol.FromProviderSymbol(symbol.Kraken, pair)
		if !ok {
			continue
		}
		last := provider.ToFloat(first(info.Close))
		open := provider.ToFloat(info.Open)
		var change float64
		if open > 0 {
			change = (last - open) / open * 100
		}
		quotes = append(quotes, domain.PriceQuote{
			ID:               id,
			PriceUSD:         last,
			ChangePercent24h: change,
			High24h:          provider.ToFloat(second(info.High)),
			Low24h:           provider.ToFloat(second(info.Low)),
			Volume24h:        provider.ToFloat(second(info.Volume)),
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("kraken: %w", domain.ErrEmptyResult)
	}
	return quotes, nil
}

func first(a []any) any {
	if len(a) > 0 {
		return a[0]
	}
	return nil
}

func second(a []any) any {
	if len(a) > 1 {
		return a[1]
	}
	return nil
}

var _ domain.Provider = (*Client)(nil)
