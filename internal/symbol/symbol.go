// Package symbol translates between canonical asset IDs and each upstream
// provider's native symbols. Tables are static; an asset missing from a
// provider's table means that provider does not quote it and its adapter
// skips the asset. Reverse lookup is exact-match only -- collapsing two
// distinct provider symbols onto one asset would silently corrupt a quote.
package symbol

// Provider table keys. The two CoinGecko adapters share one table since they
// target the same upstream service.
const (
	CoinGecko = "coingecko"
	Binance   = "binance"
	Kraken    = "kraken"
)

var forward = map[string]map[string]string{
	CoinGecko: {
		"bitcoin":     "bitcoin",
		"ethereum":    "ethereum",
		"tether":      "tether",
		"binancecoin": "binancecoin",
		"solana":      "solana",
		"ripple":      "ripple",
	},
	Binance: {
		// tether has no USD ticker on Binance; USDT is the quote currency.
		"bitcoin":     "BTCUSDT",
		"ethereum":    "ETHUSDT",
		"binancecoin": "BNBUSDT",
		"solana":      "SOLUSDT",
		"ripple":      "XRPUSDT",
	},
	Kraken: {
		// binancecoin is not listed on Kraken.
		"bitcoin":  "XXBTZUSD",
		"ethereum": "XETHZUSD",
		"tether":   "USDTZUSD",
		"solana":   "SOLUSD",
		"ripple":   "XXRPZUSD",
	},
}

var reverse = func() map[string]map[string]string {
	rev := make(map[string]map[string]string, len(forward))
	for provider, table := range forward {
		m := make(map[string]string, len(table))
		for id, sym := range table {
			m[sym] = id
		}
		rev[provider] = m
	}
	return rev
}()

// ToProviderSymbol maps a canonical asset ID to the provider's native symbol.
// The second return is false when the provider does not quote the asset.
func ToProviderSymbol(provider, assetID string) (string, bool) {
	sym, ok := forward[provider][assetID]
	return sym, ok
}

// FromProviderSymbol maps a provider's native symbol back to the canonical
// asset ID. Exact match only.
func FromProviderSymbol(provider, sym string) (string, bool) {
	id, ok := reverse[provider][sym]
	return id, ok
}
