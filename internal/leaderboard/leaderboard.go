// Package leaderboard ranks attributed results per test duration.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/wpmhero/internal/applog"
	"github.com/verte-zerg/wpmhero/internal/model"
)

const (
	// KeyPrefix prefixes the sorted set holding one duration's results.
	KeyPrefix = "wpmhero:leaderboard:"
	// DefaultDuration is used when a request names no duration.
	DefaultDuration = 60
	// MaxEntries caps how many entries Top returns.
	MaxEntries = 25
	// AnonymousName is shown for users without a stored name.
	AnonymousName = "Anonymous"
)

// Presets are the durations offered by the practice screen.
var Presets = []int{15, 30, 60, 120}

// Board records and ranks results.
type Board interface {
	Record(ctx context.Context, duration int, userID string, wpm int, at time.Time) error
	Top(ctx context.Context, duration, limit int) ([]model.LeaderboardEntry, error)
	Trim(ctx context.Context, duration, keep int) error
}

// NameResolver maps user IDs to display names.
type NameResolver interface {
	UserNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Key returns the sorted set key for duration.
func Key(duration int) string {
	return KeyPrefix + strconv.Itoa(duration)
}

// RedisBoard keeps one sorted set per duration, scored by WPM.
type RedisBoard struct {
	client redis.Cmdable
	names  NameResolver
}

// NewRedisBoard returns a board backed by client. names may be nil.
func NewRedisBoard(client redis.Cmdable, names NameResolver) *RedisBoard {
	return &RedisBoard{client: client, names: names}
}

// Record adds a result. The member is "<userID>:<unixMillis>".
func (b *RedisBoard) Record(ctx context.Context, duration int, userID string, wpm int, at time.Time) error {
	member := fmt.Sprintf("%s:%d", userID, at.UnixMilli())
	if err := b.client.ZAdd(ctx, Key(duration), redis.Z{Score: float64(wpm), Member: member}).Err(); err != nil {
		return fmt.Errorf("failed to record leaderboard entry: %w", err)
	}
	return nil
}

// Top returns the highest results for duration, best first.
func (b *RedisBoard) Top(ctx context.Context, duration, limit int) ([]model.LeaderboardEntry, error) {
	limit = clampLimit(limit)
	zs, err := b.client.ZRevRangeWithScores(ctx, Key(duration), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	entries := make([]model.LeaderboardEntry, 0, len(zs))
	ids := make([]string, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID, recordedAt := parseMember(member)
		entries = append(entries, model.LeaderboardEntry{
			UserID:     userID,
			WPM:        int(math.Round(z.Score)),
			RecordedAt: recordedAt,
		})
		ids = append(ids, userID)
	}
	var names map[string]string
	if b.names != nil && len(ids) > 0 {
		// Unresolved names fall back to AnonymousName.
		resolved, err := b.names.UserNames(ctx, ids)
		if err != nil {
			applog.Error("failed to resolve leaderboard names for %d users: %v", len(ids), err)
		}
		names = resolved
	}
	for i := range entries {
		entries[i].Name = nameOr(names[entries[i].UserID])
	}
	return entries, nil
}

// Trim keeps only the keep best entries for duration.
func (b *RedisBoard) Trim(ctx context.Context, duration, keep int) error {
	stop := int64(-keep - 1)
	if keep <= 0 {
		stop = -1
	}
	if err := b.client.ZRemRangeByRank(ctx, Key(duration), 0, stop).Err(); err != nil {
		return fmt.Errorf("failed to trim leaderboard: %w", err)
	}
	return nil
}

func parseMember(member string) (string, int64) {
	idx := strings.LastIndex(member, ":")
	if idx < 0 {
		return member, 0
	}
	ts, err := strconv.ParseInt(member[idx+1:], 10, 64)
	if err != nil {
		return member, 0
	}
	return member[:idx], ts
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxEntries {
		return MaxEntries
	}
	return limit
}

func nameOr(name string) string {
	if name == "" {
		return AnonymousName
	}
	return name
}
