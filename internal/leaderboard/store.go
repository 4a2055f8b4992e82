package leaderboard

import (
	"context"
	"time"

	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/store"
)

// StoreBoard ranks results straight from the sessions table. It is used
// when no Redis server is configured.
type StoreBoard struct {
	store *store.Store
}

// NewStoreBoard returns a board reading from st.
func NewStoreBoard(st *store.Store) *StoreBoard {
	return &StoreBoard{store: st}
}

// Record is a no-op: the result row itself is the entry.
func (b *StoreBoard) Record(context.Context, int, string, int, time.Time) error {
	return nil
}

// Top returns the best stored results for duration.
func (b *StoreBoard) Top(ctx context.Context, duration, limit int) ([]model.LeaderboardEntry, error) {
	entries, err := b.store.TopResults(ctx, duration, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Name = nameOr(entries[i].Name)
	}
	return entries, nil
}

// Trim is a no-op; stored history is never discarded.
func (b *StoreBoard) Trim(context.Context, int, int) error {
	return nil
}
