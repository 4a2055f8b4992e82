// Package results hands completed sessions to persistence.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/stats"
	"github.com/verte-zerg/wpmhero/internal/store"
)

// Publisher accepts a completed session result.
type Publisher interface {
	Publish(ctx context.Context, res model.SessionResult) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, res model.SessionResult) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, res model.SessionResult) error {
	return f(ctx, res)
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, res model.SessionResult) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder stores results in SQLite and ranks attributed ones on a board.
type Recorder struct {
	store *store.Store
	board leaderboard.Board
	now   func() time.Time
}

// NewRecorder returns a Recorder. board may be nil.
func NewRecorder(st *store.Store, board leaderboard.Board) *Recorder {
	return &Recorder{store: st, board: board, now: time.Now}
}

// Publish implements Publisher. Storing a result twice is not an error, so
// retried deliveries still reach the board.
func (r *Recorder) Publish(ctx context.Context, res model.SessionResult) error {
	if res.EndedAt.IsZero() {
		res.EndedAt = r.now()
	}
	if res.StartedAt.IsZero() {
		res.StartedAt = res.EndedAt.Add(-time.Duration(res.ElapsedSeconds) * time.Second)
	}
	_, err := r.store.InsertResult(ctx, res, stats.CharStatsFromEvents(res.Keypresses))
	if err != nil && !errors.Is(err, store.ErrDuplicateResult) {
		return fmt.Errorf("failed to store result: %w", err)
	}
	if r.board == nil || res.UserID == "" {
		return nil
	}
	return r.board.Record(ctx, res.DurationSeconds, res.UserID, res.WPM, res.EndedAt)
}
