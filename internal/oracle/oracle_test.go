package oracle_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bitvera/priceoracle/internal/cache/memory"
	"github.com/bitvera/priceoracle/internal/domain"
	"github.com/bitvera/priceoracle/internal/oracle"
)

// fakeShared is an in-memory domain.SharedCache that can be scripted to fail
// and signals every write so tests can observe the fire-and-forget path.
type fakeShared struct {
	mu     sync.Mutex
	rec    domain.CacheRecord
	has    bool
	getErr error
	setErr error

	wrote chan struct{}
}

func newFakeShared() *fakeShared {
	return &fakeShared{wrote: make(chan struct{}, 8)}
}

func (f *fakeShared) Get(context.Context) (domain.CacheRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.CacheRecord{}, f.getErr
	}
	if !f.has {
		return domain.CacheRecord{}, domain.ErrNotFound
	}
	return f.rec, nil
}

func (f *fakeShared) Set(_ context.Context, quotes domain.QuoteSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.rec = domain.CacheRecord{Quotes: quotes, CapturedAt: time.Now()}
	f.has = true
	select {
	case f.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeShared) seed(rec domain.CacheRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = rec
	f.has = true
}

var _ domain.SharedCache = (*fakeShared)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestFreshMemoryHitSkipsProviders(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "binance", quotes: universeQuotes()}
	mem := memory.New(time.Minute)
	mem.Set(universeQuotes())

	o := oracle.New([]domain.Provider{p}, mem, nil, oracle.Config{}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"bitcoin", "ethereum"})
	require.Equal(t, domain.SourceMemCache, res.Source)
	require.Len(t, res.Quotes, 2)
	require.Empty(t, res.Errors)
	require.Equal(t, int32(0), p.calls.Load(), "a fresh in-process hit must not touch providers")
}

func TestSharedHitRepopulatesMemory(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "binance", quotes: universeQuotes()}
	mem := memory.New(time.Minute)
	shared := newFakeShared()
	shared.seed(domain.CacheRecord{Quotes: universeQuotes(), CapturedAt: time.Now()})

	o := oracle.New([]domain.Provider{p}, mem, shared, oracle.Config{SharedTTL: time.Minute}, discardLogger())

	res := o.GetPrices(context.Background(), domain.TrackedAssets())
	require.Equal(t, domain.SourceDBCache, res.Source)
	require.Len(t, res.Quotes, 6)
	require.Equal(t, int32(0), p.calls.Load())

	// The in-process tier now answers on its own.
	res = o.GetPrices(context.Background(), []string{"bitcoin"})
	require.Equal(t, domain.SourceMemCache, res.Source)
}

func TestLiveRacePopulatesBothTiers(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "kraken", quotes: universeQuotes()}
	mem := memory.New(time.Minute)
	shared := newFakeShared()

	o := oracle.New([]domain.Provider{p}, mem, shared, oracle.Config{}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"bitcoin", "solana"})
	require.Equal(t, "kraken", res.Source)
	require.Len(t, res.Quotes, 2)

	select {
	case <-shared.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("shared tier was never written after a live fetch")
	}

	rec, ok := mem.Get()
	require.True(t, ok)
	require.Len(t, rec.Quotes, 6, "the in-process tier stores the full universe, not the filtered answer")
}

func TestLowCoverageFallsThroughToRace(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "binance", quotes: universeQuotes()}
	mem := memory.New(time.Minute)
	// Only one of six tracked assets cached: coverage 1/2 for a two-ID
	// request sits at the threshold, but 1/3 for a three-ID request does not.
	mem.Set(domain.QuoteSet{{ID: "bitcoin", PriceUSD: 1}})

	o := oracle.New([]domain.Provider{p}, mem, nil, oracle.Config{}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"bitcoin", "ethereum", "solana"})
	require.Equal(t, "binance", res.Source)
	require.Equal(t, int32(1), p.calls.Load())
}

func TestAllFailStaleFallback(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "binance", err: errors.New("status 502")}
	mem := memory.New(time.Minute)
	shared := newFakeShared()
	shared.seed(domain.CacheRecord{Quotes: universeQuotes(), CapturedAt: time.Now().Add(-time.Hour)})

	o := oracle.New([]domain.Provider{p}, mem, shared, oracle.Config{SharedTTL: 30 * time.Second}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"bitcoin"})
	require.Equal(t, domain.SourceStaleDB, res.Source)
	require.Len(t, res.Quotes, 1)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "binance")
	require.Equal(t, int32(1), p.calls.Load())

	// The stale snapshot earned a short grace in the in-process tier: the
	// next request must not re-race the dead provider.
	res = o.GetPrices(context.Background(), []string{"bitcoin"})
	require.Equal(t, domain.SourceMemCache, res.Source)
	require.Equal(t, int32(1), p.calls.Load())
}

func TestAllFailNoCacheReturnsEmpty(t *testing.T) {
	t.Parallel()

	providers := []domain.Provider{
		&fakeProvider{name: "binance", err: errors.New("boom")},
		&fakeProvider{name: "kraken", err: errors.New("boom")},
	}

	o := oracle.New(providers, memory.New(time.Minute), nil, oracle.Config{}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"bitcoin"})
	require.Empty(t, res.Source)
	require.NotNil(t, res.Quotes)
	require.Empty(t, res.Quotes)
	require.Len(t, res.Errors, 2)
}

func TestUnreachableSharedTierIsAMiss(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "kraken", quotes: universeQuotes()}
	shared := newFakeShared()
	shared.getErr = errors.New("connection refused")

	o := oracle.New([]domain.Provider{p}, memory.New(time.Minute), shared, oracle.Config{}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"bitcoin"})
	require.Equal(t, "kraken", res.Source)
	require.Len(t, res.Quotes, 1)
}

func TestSecondCallWithinTTLIsIdempotent(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "binance", quotes: universeQuotes()}
	o := oracle.New([]domain.Provider{p}, memory.New(time.Minute), nil, oracle.Config{}, discardLogger())

	first := o.GetPrices(context.Background(), []string{"bitcoin", "tether"})
	second := o.GetPrices(context.Background(), []string{"bitcoin", "tether"})
	require.Equal(t, first.Quotes, second.Quotes)
	require.Equal(t, domain.SourceMemCache, second.Source)
	require.Equal(t, int32(1), p.calls.Load())
}

func TestRequestedIDFiltering(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "binance", quotes: universeQuotes()}
	o := oracle.New([]domain.Provider{p}, memory.New(time.Minute), nil, oracle.Config{}, discardLogger())

	res := o.GetPrices(context.Background(), []string{"solana", "dogecoin"})
	require.Len(t, res.Quotes, 1)
	require.Equal(t, "solana", res.Quotes[0].ID)
}
