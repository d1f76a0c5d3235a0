package binance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bitvera/priceoracle/internal/httpx"
	"github.com/bitvera/priceoracle/internal/provider/binance"
)

func newClient(t *testing.T, ts *httptest.Server) *binance.Client {
	t.Helper()
	return binance.New(binance.Config{BaseURL: ts.URL, Timeout: 2 * time.Second}, httpx.New())
}

func TestFetch(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		// Binance serializes every numeric field as a string.
		w.Write([]byte(`[
			{"symbol": "BTCUSDT", "lastPrice": "43000.50", "priceChangePercent": "1.230",
			 "highPrice": "43500.00", "lowPrice": "42000.00", "quoteVolume": "98765.4"}
		]`))
	}))
	defer ts.Close()

	quotes, err := newClient(t, ts).Fetch(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, "bitcoin", quotes[0].ID)
	require.Equal(t, 43000.50, quotes[0].PriceUSD)
	require.Equal(t, 1.23, quotes[0].ChangePercent24h)
	require.Equal(t, 43500.0, quotes[0].High24h)
	require.Equal(t, 98765.4, quotes[0].Volume24h)
	// Binance does not report market cap.
	require.Zero(t, quotes[0].MarketCap)
}

func TestFetchSkipsUnsupportedAssets(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// tether must not appear in the requested symbols.
		require.NotContains(t, r.URL.Query().Get("symbols"), "USDTUSDT")
		w.Write([]byte(`[{"symbol": "BTCUSDT", "lastPrice": "1", "priceChangePercent": "0",
			"highPrice": "0", "lowPrice": "0", "quoteVolume": "0"}]`))
	}))
	defer ts.Close()

	quotes, err := newClient(t, ts).Fetch(context.Background(), []string{"bitcoin", "tether"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
}

func TestFetchNoSupportedAssets(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	quotes, err := newClient(t, ts).Fetch(context.Background(), []string{"tether"})
	require.NoError(t, err)
	require.Empty(t, quotes)
	require.Zero(t, calls.Load())
}

func TestFetchMalformedNumeric(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol": "BTCUSDT", "lastPrice": "43000", "priceChangePercent": "N/A",
			"highPrice": null, "lowPrice": "42000", "quoteVolume": "1"}]`))
	}))
	defer ts.Close()

	quotes, err := newClient(t, ts).Fetch(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, 43000.0, quotes[0].PriceUSD)
	require.Zero(t, quotes[0].ChangePercent24h)
	require.Zero(t, quotes[0].High24h)
}

func TestFetchErrorStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := newClient(t, ts).Fetch(context.Background(), []string{"bitcoin"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "binance")
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c := binance.New(binance.Config{BaseURL: ts.URL, Timeout: 50 * time.Millisecond}, httpx.New())

	start := time.Now()
	_, err := c.Fetch(context.Background(), []string{"bitcoin"})
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second, "timeout budget must cut the call short")
}
