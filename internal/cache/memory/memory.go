// Package memory implements the in-process cache tier: a single
// mutex-guarded CacheRecord owned by the process. Constructed once at
// startup and injected into the oracle, it is lost on restart and consulted
// first because it needs no I/O.
package memory

import (
	"sync"
	"time"

	"github.com/bitvera/priceoracle/internal/domain"
)

// Cache holds the most recent full-universe snapshot for this process.
type Cache struct {
	ttl time.Duration

	mu  sync.RWMutex
	rec domain.CacheRecord
	has bool
}

// New creates an empty Cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Get returns the current record, if any. Freshness is the caller's call.
func (c *Cache) Get() (domain.CacheRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rec, c.has
}

// Set stores a fresh full-universe snapshot captured now.
func (c *Cache) Set(quotes domain.QuoteSet) {
	c.SetRecord(domain.CacheRecord{Quotes: quotes, CapturedAt: time.Now()})
}

// SetRecord stores a record with an explicit capture time. The oracle uses
// this to give a stale fallback a short artificial freshness window so the
// next request does not immediately hammer providers that just failed.
func (c *Cache) SetRecord(rec domain.CacheRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rec = rec
	c.has = true
}

// TTL returns the tier's freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
