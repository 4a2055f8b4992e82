// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wpmhero/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateResult is returned when a result with the same ID was already stored.
var ErrDuplicateResult = errors.New("result already stored")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for results and users.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			result_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL DEFAULT '',
			user_name TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			text_length INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			consistency INTEGER NOT NULL,
			chars_typed INTEGER NOT NULL,
			chars_correct INTEGER NOT NULL,
			chars_incorrect INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			keypresses TEXT NOT NULL,
			snapshots TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_char_stats (
			session_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_duration_wpm ON sessions(duration_seconds, wpm);`,
		`CREATE INDEX IF NOT EXISTS idx_session_char_stats_char ON session_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a completed session and its per-character stats.
// A result whose ID is already stored yields ErrDuplicateResult.
func (s *Store) InsertResult(ctx context.Context, res model.SessionResult, chars []model.CharStats) (id int64, err error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	keypresses, err := json.Marshal(nonNil(res.Keypresses))
	if err != nil {
		return 0, fmt.Errorf("failed to encode keypresses: %w", err)
	}
	snapshots, err := json.Marshal(nonNil(res.Snapshots))
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (result_id, user_id, user_name, started_at, ended_at, lang,
			duration_seconds, elapsed_seconds, text_length, wpm, raw_wpm, accuracy, consistency,
			chars_typed, chars_correct, chars_incorrect, errors, keypresses, snapshots)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.UserID,
		res.UserName,
		formatTime(res.StartedAt),
		formatTime(res.EndedAt),
		res.Lang,
		res.DurationSeconds,
		res.ElapsedSeconds,
		res.TextLength,
		res.WPM,
		res.RawWPM,
		res.Accuracy,
		res.Consistency,
		res.CharactersTyped,
		res.CharactersCorrect,
		res.CharactersIncorrect,
		res.Errors,
		string(keypresses),
		string(snapshots),
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		err = ErrDuplicateResult
		return 0, err
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(chars) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_char_stats (session_id, char, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range chars {
			if _, err := stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect, cs.LatencySumMs, cs.LatencyCount); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetResult loads a stored result including its keypress log and snapshot history.
func (s *Store) GetResult(ctx context.Context, sessionID int64) (model.SessionResult, error) {
	var res model.SessionResult
	var startedAt, endedAt, keypresses, snapshots string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_id, user_id, user_name, started_at, ended_at, lang, duration_seconds, elapsed_seconds,
			text_length, wpm, raw_wpm, accuracy, consistency, chars_typed, chars_correct, chars_incorrect,
			errors, keypresses, snapshots
		 FROM sessions WHERE id = ?`, sessionID).Scan(
		&res.ID, &res.UserID, &res.UserName, &startedAt, &endedAt, &res.Lang, &res.DurationSeconds,
		&res.ElapsedSeconds, &res.TextLength, &res.WPM, &res.RawWPM, &res.Accuracy, &res.Consistency,
		&res.CharactersTyped, &res.CharactersCorrect, &res.CharactersIncorrect, &res.Errors,
		&keypresses, &snapshots,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionResult{}, ErrNotFound
	}
	if err != nil {
		return model.SessionResult{}, err
	}
	if res.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return model.SessionResult{}, err
	}
	if res.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return model.SessionResult{}, err
	}
	if err := json.Unmarshal([]byte(keypresses), &res.Keypresses); err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to decode keypresses: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshots), &res.Snapshots); err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return res, nil
}

// GetWeakChars aggregates character stats over the most recent sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR lang = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct), SUM(cs.incorrect), SUM(cs.latency_sum_ms), SUM(cs.latency_count)
	FROM session_char_stats cs
	JOIN recent_sessions r ON r.id = cs.session_id
	GROUP BY cs.char`
	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, err
	}
	return scanCharAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	if cfg.Duration > 0 {
		clauses = append(clauses, "duration_seconds = ?")
		args = append(args, cfg.Duration)
	}
	query := fmt.Sprintf(`SELECT id, user_id, ended_at, lang, duration_seconds, elapsed_seconds, wpm, raw_wpm,
			accuracy, consistency, chars_correct, chars_incorrect
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.UserID, &endedAt, &agg.Lang, &agg.DurationSeconds, &agg.ElapsedSeconds,
			&agg.WPM, &agg.RawWPM, &agg.Accuracy, &agg.Consistency, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListCharAggregatesForSessions aggregates per-character stats across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(sessionIDs)
	query := fmt.Sprintf(`SELECT char, SUM(correct), SUM(incorrect), SUM(latency_sum_ms), SUM(latency_count)
		FROM session_char_stats
		WHERE session_id IN (%s)
		GROUP BY char`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanCharAggregates(rows)
}

// ListCharStatsForSessions returns per-session stats for selected characters.
func (s *Store) ListCharStatsForSessions(ctx context.Context, sessionIDs []int64, chars []string) (map[int64]map[string]model.CharAggregate, error) {
	result := map[int64]map[string]model.CharAggregate{}
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return result, nil
	}
	idPlaceholders, args := inClause(sessionIDs)
	charPlaceholders, charArgs := inClause(chars)
	args = append(args, charArgs...)
	query := fmt.Sprintf(`SELECT session_id, char, correct, incorrect, latency_sum_ms, latency_count
		FROM session_char_stats
		WHERE session_id IN (%s) AND char IN (%s)`, idPlaceholders, charPlaceholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var sessionID int64
		var agg model.CharAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.CharAggregate{}
		}
		result[sessionID][agg.Char] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TopResults returns the fastest attributed results for a duration.
func (s *Store) TopResults(ctx context.Context, duration, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.user_id, COALESCE(NULLIF(u.name, ''), s.user_name), s.wpm, s.ended_at
		 FROM sessions s
		 LEFT JOIN users u ON u.id = s.user_id
		 WHERE s.user_id != '' AND s.duration_seconds = ?
		 ORDER BY s.wpm DESC, s.ended_at ASC
		 LIMIT ?`, duration, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var entry model.LeaderboardEntry
		var endedAt string
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.WPM, &endedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		entry.RecordedAt = parsed.UnixMilli()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanCharAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	defer closeRows(rows)
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func inClause[T any](values []T) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ","), args
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
