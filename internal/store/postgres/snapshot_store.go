package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bitvera/priceoracle/internal/domain"
)

// snapshotID is the fixed primary key of the one row this store ever writes.
const snapshotID = "latest"

// SnapshotStore implements domain.SharedCache using PostgreSQL.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Get returns the stored snapshot, or domain.ErrNotFound when the row does
// not exist yet.
func (s *SnapshotStore) Get(ctx context.Context) (domain.CacheRecord, error) {
	const query = `SELECT quotes, captured_at FROM price_snapshots WHERE id = $1`

	var (
		data       []byte
		capturedAt time.Time
	)
	err := s.pool.QueryRow(ctx, query, snapshotID).Scan(&data, &capturedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CacheRecord{}, domain.ErrNotFound
		}
		return domain.CacheRecord{}, fmt.Errorf("postgres: get snapshot: %w", err)
	}

	var quotes domain.QuoteSet
	if err := json.Unmarshal(data, &quotes); err != nil {
		return domain.CacheRecord{}, fmt.Errorf("postgres: unmarshal snapshot: %w", err)
	}
	return domain.CacheRecord{Quotes: quotes, CapturedAt: capturedAt}, nil
}

// Set upserts the snapshot row with quotes captured now. The single-key
// upsert is atomic; concurrent writers race last-writer-wins, which is fine
// for full snapshots a few seconds apart.
func (s *SnapshotStore) Set(ctx context.Context, quotes domain.QuoteSet) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("postgres: marshal snapshot: %w", err)
	}

	const query = `
		INSERT INTO price_snapshots (id, quotes, captured_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			quotes      = EXCLUDED.quotes,
			captured_at = EXCLUDED.captured_at`

	if _, err := s.pool.Exec(ctx, query, snapshotID, string(data)); err != nil {
		return fmt.Errorf("postgres: upsert snapshot: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SharedCache = (*SnapshotStore)(nil)
