// Package coingecko implements two independent provider adapters against the
// CoinGecko API: the lightweight simple-price endpoint and the richer
// coins/markets endpoint. Falling back from one to the other is the fetch
// orchestrator's job, not theirs.
package coingecko

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
	DefaultBaseURL = "https://api.coingecko.com"

	defaultSimpleTimeout = 6 * time.Second
)

// Config holds the connection parameters shared by both CoinGecko adapters.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// SimpleClient is the adapter for GET /api/v3/simple/price. It returns price
// and 24h change only; high/low/volume/market cap stay 0.
type SimpleClient struct {
	baseURL string
	timeout time.Duration
	http    *httpx.Client
}

// NewSimpleClient creates the simple-price adapter.
func NewSimpleClient(cfg Config, hc *httpx.Client) *SimpleClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSimpleTimeout
	}
	return &SimpleClient{baseURL: cfg.BaseURL, timeout: cfg.Timeout, http: hc}
}

// Name identifies this adapter in source tags and error strings.
func (c *SimpleClient) Name() string { return "coingecko-simple" }

// Fetch implements domain.Provider.
func (c *SimpleClient) Fetch(ctx context.Context, assetIDs []string) (domain.QuoteSet, error) {
	supported := supportedIDs(assetIDs)
	if len(supported) == 0 {
		return domain.QuoteSet{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("ids", strings.Join(supported, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	// id -> {"usd": price, "usd_24h_change": pct}
	var body map[string]map[string]any
	reqURL := c.baseURL + "/api/v3/simple/price?" + params.Encode()
	if err := provider.GetJSON(ctx, c.http, reqURL, &body); err != nil {
		return nil, fmt.Errorf("coingecko-simple: %w", err)
	}

	quotes := make(domain.QuoteSet, 0, len(supported))
	for _, id := range supported {
		fields, ok := body[id]
		if !ok {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			ID:               id,
			PriceUSD:         provider.ToFloat(fields["usd"]),
			ChangePercent24h: provider.ToFloat(fields["usd_24h_change"]),
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("coingecko-simple: %w", domain.ErrEmptyResult)
	}
	return quotes, nil
}

// supportedIDs filters assetIDs down to those present in the CoinGecko
// symbol table, translated to provider symbols (identity for CoinGecko, but
// the table still decides membership).
func supportedIDs(assetIDs []string) []string {
	out := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if sym, ok := symbol.ToProviderSymbol(symbol.CoinGecko, id); ok {
			out = append(out, sym)
		}
	}
	return out
}

var _ domain.Provider = (*SimpleClient)(nil)
