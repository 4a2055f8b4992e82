package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// User is a registered leaderboard participant.
type User struct {
	ID        string
	Name      string
	TokenHash string
	CreatedAt time.Time
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, token_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.TokenHash, formatTime(u.CreatedAt))
	return err
}

// GetUser loads a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, token_hash, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.TokenHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = parsed
	return u, nil
}

// UserNames resolves display names for the given user IDs. Unknown IDs are omitted.
func (s *Store) UserNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := map[string]string{}
	if len(ids) == 0 {
		return names, nil
	}
	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
