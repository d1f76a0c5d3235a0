package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bitvera/priceoracle/internal/domain"
)

// snapshotKey is the single fixed key holding the last full-universe
// snapshot. The entire durable footprint of the oracle is this one value.
const snapshotKey = "priceoracle:snapshot"

// QuoteCache implements domain.SharedCache on Redis. The key carries no
// expiry: staleness is judged at read time against the caller's TTL, and the
// last-resort stale read needs the record to outlive it.
type QuoteCache struct {
	rdb *redis.Client
}

// NewQuoteCache creates a QuoteCache backed by the given Client.
func NewQuoteCache(c *Client) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying()}
}

// Get returns the stored snapshot, or domain.ErrNotFound when none exists.
func (qc *QuoteCache) Get(ctx context.Context) (domain.CacheRecord, error) {
	data, err := qc.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CacheRecord{}, domain.ErrNotFound
		}
		return domain.CacheRecord{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var rec domain.CacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CacheRecord{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return rec, nil
}

// Set overwrites the snapshot with quotes captured now. Last writer wins.
func (qc *QuoteCache) Set(ctx context.Context, quotes domain.QuoteSet) error {
	rec := domain.CacheRecord{Quotes: quotes, CapturedAt: time.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := qc.rdb.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SharedCache = (*QuoteCache)(nil)
