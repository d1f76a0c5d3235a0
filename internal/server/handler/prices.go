package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bitvera/priceoracle/internal/domain"
	"github.com/bitvera/priceoracle/internal/oracle"
)

// PriceOracle defines what the prices handler requires from the oracle. It
// is declared locally so the handler package does not depend on the concrete
// implementation.
type PriceOracle interface {
	GetPrices(ctx context.Context, assetIDs []string) oracle.Result
}

// PricesHandler serves the price endpoint, the single entry point of the
// distribution layer.
type PricesHandler struct {
	oracle PriceOracle
	logger *slog.Logger
}

// NewPricesHandler creates a PricesHandler with the given oracle and logger.
func NewPricesHandler(o PriceOracle, logger *slog.Logger) *PricesHandler {
	return &PricesHandler{oracle: o, logger: logger}
}

// wireQuote is the legacy wire shape existing callers depend on: CoinCap
// field names with every numeric serialized as a string. Internal
// normalization happens before this reserialization.
type wireQuote struct {
	ID                string `json:"id"`
	PriceUsd          string `json:"priceUsd"`
	ChangePercent24Hr string `json:"changePercent24Hr"`
	High24Hr          string `json:"high24Hr"`
	Low24Hr           string `json:"low24Hr"`
	VolumeUsd24Hr     string `json:"volumeUsd24Hr"`
	MarketCapUsd      string `json:"marketCapUsd"`
}

type pricesResponse struct {
	Data   []wireQuote `json:"data"`
	Source string      `json:"source"`
	Errors []string    `json:"errors,omitempty"`
}

// GetPrices answers the read path. A degraded or even empty result is still
// a 200: callers branch on whether data covers what they asked for, never on
// this endpoint's errors.
// GET /prices?ids=bitcoin,ethereum
func (h *PricesHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "Missing ids parameter")
		return
	}

	res := h.oracle.GetPrices(r.Context(), ids)

	data := make([]wireQuote, 0, len(res.Quotes))
	for _, q := range res.Quotes {
		data = append(data, toWire(q))
	}

	noStore(w)
	writeJSON(w, http.StatusOK, pricesResponse{
		Data:   data,
		Source: res.Source,
		Errors: res.Errors,
	})
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, strings.ToLower(p))
		}
	}
	return ids
}

func toWire(q domain.PriceQuote) wireQuote {
	return wireQuote{
		ID:                q.ID,
		PriceUsd:          formatFloat(q.PriceUSD),
		ChangePercent24Hr: formatFloat(q.ChangePercent24h),
		High24Hr:          formatFloat(q.High24h),
		Low24Hr:           formatFloat(q.Low24h),
		VolumeUsd24Hr:     formatFloat(q.Volume24h),
		MarketCapUsd:      formatFloat(q.MarketCap),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
