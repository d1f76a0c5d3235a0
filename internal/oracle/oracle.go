package oracle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bitvera/priceoracle/internal/cache/memory"
	"github.com/bitvera/priceoracle/internal/domain"
)

// Config holds the tunables of the read ladder.
type Config struct {
	// SharedTTL is the freshness window of the shared tier.
	SharedTTL time.Duration
	// CoverageThreshold is the fraction of requested IDs a cached record
	// must cover to be served. The 0.5 default is a heuristic carried over
	// from the original service; it is configurable rather than load-bearing.
	CoverageThreshold float64
	// StaleGrace is how long a stale fallback is treated as fresh in the
	// in-process tier, backing off providers that just failed outright.
	StaleGrace time.Duration
	// SharedWriteTimeout bounds the fire-and-forget shared-tier write.
	SharedWriteTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.SharedTTL <= 0 {
		c.SharedTTL = 30 * time.Second
	}
	if c.CoverageThreshold <= 0 {
		c.CoverageThreshold = 0.5
	}
	if c.StaleGrace <= 0 {
		c.StaleGrace = 5 * time.Second
	}
	if c.SharedWriteTimeout <= 0 {
		c.SharedWriteTimeout = 5 * time.Second
	}
}

// Result is one answer from the oracle. Source is a tier tag (mem-cache,
// db-cache, stale-db) or the winning provider's name; Errors carries every
// per-provider failure observed on the way, for observability only.
type Result struct {
	Quotes domain.QuoteSet
	Source string
	Errors []string
}

// Oracle answers "what is the current price of asset X" as reliably as the
// upstreams allow. Read path: in-process tier, shared tier, live race,
// stale shared read, empty. Write path: both tiers on every successful live
// fetch. Nothing here is fatal; total upstream outage degrades to stale or
// empty data.
type Oracle struct {
	providers []domain.Provider
	mem       *memory.Cache
	shared    domain.SharedCache
	cfg       Config
	logger    *slog.Logger

	// flight collapses concurrent live races into one. A race always
	// fetches the whole universe, so a single flight serves every caller.
	flight singleflight.Group
}

// New creates an Oracle. shared may be nil, in which case the process runs on
// the in-process tier and live fetches alone.
func New(providers []domain.Provider, mem *memory.Cache, shared domain.SharedCache, cfg Config, logger *slog.Logger) *Oracle {
	cfg.applyDefaults()
	return &Oracle{
		providers: providers,
		mem:       mem,
		shared:    shared,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "oracle")),
	}
}

type raceOutcome struct {
	quotes   domain.QuoteSet
	provider string
	errs     []string
}

// GetPrices returns quotes for the requested IDs, walking the fallback
// ladder in strict order. The returned Result is never an error: a total
// outage yields an empty set plus the accumulated error strings.
func (o *Oracle) GetPrices(ctx context.Context, assetIDs []string) Result {
	// 1. Fresh in-process hit.
	if rec, ok := o.mem.Get(); ok && !rec.Stale(o.mem.TTL()) && rec.Quotes.Coverage(assetIDs) >= o.cfg.CoverageThreshold {
		return Result{Quotes: rec.Quotes.Filter(assetIDs), Source: domain.SourceMemCache}
	}

	// 2. Fresh shared hit; repopulate the in-process tier on the way out.
	if rec, ok := o.sharedGet(ctx); ok && !rec.Stale(o.cfg.SharedTTL) && rec.Quotes.Coverage(assetIDs) >= o.cfg.CoverageThreshold {
		o.mem.SetRecord(rec)
		return Result{Quotes: rec.Quotes.Filter(assetIDs), Source: domain.SourceDBCache}
	}

	// 3. Live race across all providers, for the full universe; concurrent
	// callers share one flight. The flight runs on a detached context so
	// the first caller hanging up does not starve the rest; the adapters'
	// own timeouts bound it.
	v, _, _ := o.flight.Do("live", func() (any, error) {
		quotes, provider, errs := Race(context.WithoutCancel(ctx), o.providers, domain.TrackedAssets())
		if len(quotes) > 0 {
			o.store(ctx, quotes)
		}
		return raceOutcome{quotes: quotes, provider: provider, errs: errs}, nil
	})
	out := v.(raceOutcome)

	if len(out.quotes) > 0 {
		return Result{Quotes: out.quotes.Filter(assetIDs), Source: out.provider, Errors: out.errs}
	}

	o.logger.WarnContext(ctx, "all providers failed, falling back to stale cache",
		slog.Int("providers", len(o.providers)),
		slog.Any("errors", out.errs),
	)

	// 4. Stale shared read, ignoring TTL entirely.
	if rec, ok := o.sharedGet(ctx); ok {
		if quotes := rec.Quotes.Filter(assetIDs); len(quotes) > 0 {
			// Give the stale data a short freshness window so the next
			// request does not immediately re-race the dead providers.
			o.mem.SetRecord(domain.CacheRecord{
				Quotes:     rec.Quotes,
				CapturedAt: time.Now().Add(o.cfg.StaleGrace - o.mem.TTL()),
			})
			return Result{Quotes: quotes, Source: domain.SourceStaleDB, Errors: out.errs}
		}
	}

	// 5. Terminal: a valid, if empty, answer.
	return Result{Quotes: domain.QuoteSet{}, Errors: out.errs}
}

// sharedGet reads the shared tier, downgrading every failure (including an
// unreachable store) to a miss.
func (o *Oracle) sharedGet(ctx context.Context) (domain.CacheRecord, bool) {
	if o.shared == nil {
		return domain.CacheRecord{}, false
	}
	rec, err := o.shared.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			o.logger.WarnContext(ctx, "shared cache read failed, treating as miss",
				slog.String("error", err.Error()),
			)
		}
		return domain.CacheRecord{}, false
	}
	return rec, true
}

// store writes a fresh full-universe snapshot to both tiers. The shared
// write is a detached fire-and-forget task: it never blocks the response,
// and its failure is logged and swallowed.
func (o *Oracle) store(ctx context.Context, quotes domain.QuoteSet) {
	o.mem.Set(quotes)
	if o.shared == nil {
		return
	}
	go func() {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.SharedWriteTimeout)
		defer cancel()
		if err := o.shared.Set(wctx, quotes); err != nil {
			o.logger.WarnContext(wctx, "shared cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}()
}
