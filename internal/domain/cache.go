package domain

import "context"

// SharedCache is the cross-instance cache tier: one CacheRecord under a fixed
// key, visible to every process. Get returns ErrNotFound when no record has
// been written yet. Staleness is evaluated by the caller against its own TTL;
// the stored record itself never expires, which is what makes the last-resort
// stale read possible.
//
// Writes are last-writer-wins. A slightly older full snapshot overwritten by
// a slightly newer one is acceptable in this domain.
type SharedCache interface {
	Get(ctx context.Context) (CacheRecord, error)
	Set(ctx context.Context, quotes QuoteSet) error
}
