// Package identity resolves who is practicing and verifies API tokens.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/store"
)

// ErrUnauthorized is returned for missing, malformed or unknown tokens.
var ErrUnauthorized = errors.New("unauthorized")

const secretBytes = 32

// Provider supplies the identity attached to completed results.
type Provider interface {
	Current() model.Identity
}

// Local is the identity configured on this machine.
type Local struct {
	UserID string
	Name   string
	Token  string
}

// Current reports the configured identity. It is authenticated only when
// both a user ID and a sync token are set.
func (l Local) Current() model.Identity {
	return model.Identity{
		UserID:        l.UserID,
		DisplayName:   l.Name,
		Authenticated: l.UserID != "" && l.Token != "",
	}
}

// UserStore is the subset of the store needed for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u store.User) error
	GetUser(ctx context.Context, id string) (store.User, error)
}

// NewToken mints a token for userID and returns it with the bcrypt hash of its secret.
func NewToken(userID string) (token, hash string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	secret := hex.EncodeToString(buf)
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash token: %w", err)
	}
	return userID + "." + secret, string(hashed), nil
}

// ParseToken splits a "<userID>.<secret>" token.
func ParseToken(token string) (userID, secret string, err error) {
	userID, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || secret == "" {
		return "", "", ErrUnauthorized
	}
	if _, err := uuid.Parse(userID); err != nil {
		return "", "", ErrUnauthorized
	}
	return userID, secret, nil
}

// CreateUser registers a new user and returns it with its token.
func CreateUser(ctx context.Context, users UserStore, name string) (store.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.User{}, "", errors.New("name must not be empty")
	}
	id := uuid.NewString()
	token, hash, err := NewToken(id)
	if err != nil {
		return store.User{}, "", err
	}
	u := store.User{ID: id, Name: name, TokenHash: hash}
	if err := users.CreateUser(ctx, u); err != nil {
		return store.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}
	return u, token, nil
}

// Authenticate verifies token against the stored hash.
func Authenticate(ctx context.Context, users UserStore, token string) (model.Identity, error) {
	userID, secret, err := ParseToken(token)
	if err != nil {
		return model.Identity{}, err
	}
	u, err := users.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Identity{}, ErrUnauthorized
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.TokenHash), []byte(secret)); err != nil {
		return model.Identity{}, ErrUnauthorized
	}
	return model.Identity{UserID: u.ID, DisplayName: u.Name, Authenticated: true}, nil
}
