// Package oracle contains the core of the price distribution layer: the
// provider race and the tiered read/write ladder that shields callers from
// upstream unreliability.
package oracle

import (
	"context"
	"fmt"

	"github.com/bitvera/priceoracle/internal/domain"
)

type raceResult struct {
	quotes   domain.QuoteSet
	provider string
	err      error
}

// Race launches every provider concurrently for assetIDs and returns the
// first non-empty, successfully parsed QuoteSet together with the winning
// provider's name. It is an explicitly unordered race: whichever upstream
// answers first wins, regardless of data richness.
//
// Failures and empty results are collected as "provider: reason" strings and
// returned even on success. Adapters still in flight when a winner lands are
// abandoned; their own timeouts bound them and the buffered channel absorbs
// their late results. When every provider fails, the returned set is empty
// and errs holds one entry per provider. Race never retries; that decision
// belongs to the caller's stale-cache fallback.
func Race(ctx context.Context, providers []domain.Provider, assetIDs []string) (domain.QuoteSet, string, []string) {
	if len(providers) == 0 {
		return nil, "", []string{domain.ErrNoProviders.Error()}
	}

	results := make(chan raceResult, len(providers))
	for _, p := range providers {
		go func(p domain.Provider) {
			quotes, err := p.Fetch(ctx, assetIDs)
			results <- raceResult{quotes: quotes, provider: p.Name(), err: err}
		}(p)
	}

	var errs []string
	for range providers {
		res := <-results
		switch {
		case res.err != nil:
			errs = append(errs, fmt.Sprintf("%s: %v", res.provider, res.err))
		case len(res.quotes) == 0:
			errs = append(errs, fmt.Sprintf("%s: %v", res.provider, domain.ErrEmptyResult))
		default:
			return res.quotes, res.provider, errs
		}
	}
	return nil, "", errs
}
