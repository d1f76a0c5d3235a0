// Package domain defines the core types and interfaces shared across the
// price oracle: normalized quotes, cache records, and the contracts that the
// provider adapters and cache tiers implement.
package domain

import "time"

// trackedAssets is the fixed universe of canonical asset IDs the oracle
// serves. Every successful fetch covers the whole universe so the cache never
// holds a partial snapshot.
var trackedAssets = []string{
	"bitcoin",
	"ethereum",
	"tether",
	"binancecoin",
	"solana",
	"ripple",
}

// TrackedAssets returns a copy of the tracked asset universe.
func TrackedAssets() []string {
	out := make([]string, len(trackedAssets))
	copy(out, trackedAssets)
	return out
}

// PriceQuote is one asset's normalized market snapshot. Numeric fields the
// upstream did not report are 0; a true zero and "unknown" are not
// distinguished at this layer.
type PriceQuote struct {
	ID               string  `json:"id"`
	PriceUSD         float64 `json:"price_usd"`
	ChangePercent24h float64 `json:"change_percent_24h"`
	High24h          float64 `json:"high_24h"`
	Low24h           float64 `json:"low_24h"`
	Volume24h        float64 `json:"volume_24h"`
	MarketCap        float64 `json:"market_cap"`
}

// QuoteSet is an ordered list of quotes, one per asset the producing
// operation covered. Producers never deduplicate; callers re-filter by the
// IDs they asked for.
type QuoteSet []PriceQuote

// Filter returns the quotes whose ID appears in ids, preserving order.
func (qs QuoteSet) Filter(ids []string) QuoteSet {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(QuoteSet, 0, len(ids))
	for _, q := range qs {
		if _, ok := want[q.ID]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Coverage reports the fraction of ids present in the set.
func (qs QuoteSet) Coverage(ids []string) float64 {
	if len(ids) == 0 {
		return 1
	}
	have := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		have[q.ID] = struct{}{}
	}
	hit := 0
	for _, id := range ids {
		if _, ok := have[id]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(ids))
}

// CacheRecord is a full-universe snapshot with its capture time. A record is
// only ever written with a complete QuoteSet; it is superseded, never merged,
// and never explicitly deleted -- staleness is a function of age alone.
type CacheRecord struct {
	Quotes     QuoteSet  `json:"quotes"`
	CapturedAt time.Time `json:"captured_at"`
}

// Stale reports whether the record is older than ttl.
func (r CacheRecord) Stale(ttl time.Duration) bool {
	return time.Since(r.CapturedAt) > ttl
}

// Source tags attached to every oracle response so callers can tell genuine
// freshness from degraded service. Live fetches are tagged with the winning
// provider's name instead.
const (
	SourceMemCache = "mem-cache"
	SourceDBCache  = "db-cache"
	SourceStaleDB  = "stale-db"
)
