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

// The markets endpoint carries the richest data of the four upstreams, so it
// gets the most generous budget.
const defaultMarketsTimeout = 8 * time.Second

// MarketsClient is the adapter for GET /api/v3/coins/markets, which reports
// the full 24h stats (high, low, volume, market cap) on top of price and
// change.
type MarketsClient struct {
	baseURL string
	timeout time.Duration
	http    *httpx.Client
}

// NewMarketsClient creates the coins/markets adapter.
func NewMarketsClient(cfg Config, hc *httpx.Client) *MarketsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMarketsTimeout
	}
	return &MarketsClient{baseURL: cfg.BaseURL, timeout: cfg.Timeout, http: hc}
}

// Name identifies this adapter in source tags and error strings.
func (c *MarketsClient) Name() string { return "coingecko-markets" }

// marketRow is the wire shape of one coins/markets entry. Numeric fields
// decode as any because the upstream nulls them for thin markets.
type marketRow struct {
	ID               string `json:"id"`
	CurrentPrice     any    `json:"current_price"`
	ChangePercent24h any    `json:"price_change_percentage_24h"`
	High24h          any    `json:"high_24h"`
	Low24h           any    `json:"low_24h"`
	TotalVolume      any    `json:"total_volume"`
	MarketCap        any    `json:"market_cap"`
}

// Fetch implements domain.Provider.
func (c *MarketsClient) Fetch(ctx context.Context, assetIDs []string) (domain.QuoteSet, error) {
	supported := supportedIDs(assetIDs)
	if len(supported) == 0 {
		return domain.QuoteSet{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("ids", strings.Join(supported, ","))

	var rows []marketRow
	reqURL := c.baseURL + "/api/v3/coins/markets?" + params.Encode()
	if err := provider.GetJSON(ctx, c.http, reqURL, &rows); err != nil {
		return nil, fmt.Errorf("coingecko-markets: %w", err)
	}

	quotes := make(domain.QuoteSet, 0, len(rows))
	for _, row := range rows {
		id, ok := symbol.FromProviderSymbol(symbol.CoinGecko, row.ID)
		if !ok {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			ID:               id,
			PriceUSD:         provider.ToFloat(row.CurrentPrice),
			ChangePercent24h: provider.ToFloat(row.ChangePercent24h),
			High24h:          provider.ToFloat(row.High24h),
			Low24h:           provider.ToFloat(row.Low24h),
			Volume24h:        provider.ToFloat(row.TotalVolume),
			MarketCap:        provider.ToFloat(row.MarketCap),
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("coingecko-markets: %w", domain.ErrEmptyResult)
	}
	return quotes, nil
}

var _ domain.Provider = (*MarketsClient)(nil)
