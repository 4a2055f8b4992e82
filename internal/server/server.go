// Package server exposes the results and leaderboard HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/verte-zerg/wpmhero/internal/applog"
	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/results"
)

const maxBodyBytes = 2 << 20

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}

// AuthFunc adapts a function to Authenticator.
type AuthFunc func(ctx context.Context, token string) (model.Identity, error)

// Authenticate calls f.
func (f AuthFunc) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	return f(ctx, token)
}

// Server routes API requests to the results pipeline.
type Server struct {
	publisher results.Publisher
	board     leaderboard.Board
	auth      Authenticator
}

// New returns a Server.
func New(publisher results.Publisher, board leaderboard.Board, auth Authenticator) *Server {
	return &Server{publisher: publisher, board: board, auth: auth}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			applog.Error("write health response: %v", err)
		}
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/typing/results", s.handleResults).Methods(http.MethodPost)
	r.HandleFunc("/api/typing/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		applog.Startup("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		applog.Shutdown("Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload", "issues": []string{err.Error()}})
		return
	}
	res, err := results.Validate(body)
	if err != nil {
		var invalid *results.InvalidPayloadError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload", "issues": invalid.Issues})
			return
		}
		applog.Error("validate result: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	id, err := s.authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	res.UserID = id.UserID
	res.UserName = id.DisplayName

	if err := s.publisher.Publish(r.Context(), res); err != nil {
		applog.Error("record result for %s: %v", res.UserID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to record result"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	duration := leaderboard.DefaultDuration
	if raw := r.URL.Query().Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid duration"})
			return
		}
		duration = parsed
	}
	entries, err := s.board.Top(r.Context(), duration, leaderboard.MaxEntries)
	if err != nil {
		applog.Error("load leaderboard %s: %v", leaderboard.Key(duration), err)
		entries = nil
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"duration": duration, "leaderboard": entries})
}

func (s *Server) authenticate(r *http.Request) (model.Identity, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" || s.auth == nil {
		return model.Identity{}, errors.New("missing token")
	}
	return s.auth.Authenticate(r.Context(), token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		applog.HTTP("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
