package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitvera/priceoracle/internal/domain"
	"github.com/bitvera/priceoracle/internal/symbol"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	providers := []string{symbol.CoinGecko, symbol.Binance, symbol.Kraken}

	for _, provider := range providers {
		for _, id := range domain.TrackedAssets() {
			sym, ok := symbol.ToProviderSymbol(provider, id)
			if !ok {
				continue // provider does not quote this asset
			}
			back, ok := symbol.FromProviderSymbol(provider, sym)
			require.Truef(t, ok, "%s: no reverse mapping for %q", provider, sym)
			require.Equalf(t, id, back, "%s: %q did not round-trip", provider, id)
		}
	}
}

func TestKnownGaps(t *testing.T) {
	t.Parallel()

	_, ok := symbol.ToProviderSymbol(symbol.Binance, "tether")
	require.False(t, ok, "tether should not map to a Binance pair")

	_, ok = symbol.ToProviderSymbol(symbol.Kraken, "binancecoin")
	require.False(t, ok, "binancecoin should not map to a Kraken pair")
}

func TestFromProviderSymbolExactMatch(t *testing.T) {
	t.Parallel()

	// Reverse lookup must not fuzzy-match near-miss symbols.
	for _, sym := range []string{"btcusdt", "BTCUSD", "XXBTZUSD ", "bitcoin!"} {
		_, ok := symbol.FromProviderSymbol(symbol.Binance, sym)
		require.Falsef(t, ok, "unexpected reverse match for %q", sym)
	}

	id, ok := symbol.FromProviderSymbol(symbol.Kraken, "XXBTZUSD")
	require.True(t, ok)
	require.Equal(t, "bitcoin", id)
}

func TestUnknownProvider(t *testing.T) {
	t.Parallel()

	_, ok := symbol.ToProviderSymbol("bitfinex", "bitcoin")
	require.False(t, ok)
	_, ok = symbol.FromProviderSymbol("bitfinex", "BTCUSD")
	require.False(t, ok)
}
