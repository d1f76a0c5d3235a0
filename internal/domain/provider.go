package domain

import "context"

// Provider fetches quotes for a set of canonical asset IDs from one upstream
// market-data API and normalizes them into a QuoteSet. Implementations own
// their request timeout, skip assets they do not list, and never let
// upstream-specific error types escape: the result is always (QuoteSet, error).
//
// An error, a non-2xx status, an unparseable body, and an empty result are
// all failures; a single Fetch has no partial-success state.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, assetIDs []string) (QuoteSet, error)
}
