// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Lang       string
	Words      int
	Duration   int
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
	Duration    int
}

// KeypressEvent is one judged keystroke. Timestamps are monotonic milliseconds.
type KeypressEvent struct {
	Key       string `json:"key" yaml:"key"`
	Expected  string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
	Correct   bool   `json:"correct" yaml:"correct"`
}

// Snapshot is a point-in-time statistics record derived from the keypress log.
type Snapshot struct {
	WPM             int   `json:"wpm" yaml:"wpm"`
	RawWPM          int   `json:"rawWpm" yaml:"raw_wpm"`
	Accuracy        int   `json:"accuracy" yaml:"accuracy"`
	Consistency     int   `json:"consistency" yaml:"consistency"`
	Errors          int   `json:"errors" yaml:"errors"`
	CharactersTyped int   `json:"charactersTyped" yaml:"characters_typed"`
	Timestamp       int64 `json:"timestamp" yaml:"timestamp"`
}

// SessionResult is the payload handed to persistence once an attempt completes.
type SessionResult struct {
	ID                  string          `json:"id,omitempty" yaml:"id,omitempty"`
	UserID              string          `json:"userId,omitempty" yaml:"user_id,omitempty"`
	UserName            string          `json:"userName,omitempty" yaml:"user_name,omitempty"`
	Lang                string          `json:"lang,omitempty" yaml:"lang,omitempty"`
	WPM                 int             `json:"wpm" yaml:"wpm"`
	RawWPM              int             `json:"rawWpm" yaml:"raw_wpm"`
	Accuracy            int             `json:"accuracy" yaml:"accuracy"`
	Consistency         int             `json:"consistency" yaml:"consistency"`
	DurationSeconds     int             `json:"duration" yaml:"duration"`
	ElapsedSeconds      int             `json:"elapsedSeconds" yaml:"elapsed_seconds"`
	CharactersTyped     int             `json:"charactersTyped" yaml:"characters_typed"`
	CharactersCorrect   int             `json:"charactersCorrect" yaml:"characters_correct"`
	CharactersIncorrect int             `json:"charactersIncorrect" yaml:"characters_incorrect"`
	Errors              int             `json:"errors" yaml:"errors"`
	TextLength          int             `json:"textLength" yaml:"text_length"`
	Keypresses          []KeypressEvent `json:"keypresses,omitempty" yaml:"keypresses,omitempty"`
	Snapshots           []Snapshot      `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	StartedAt           time.Time       `json:"startedAt,omitempty" yaml:"started_at"`
	EndedAt             time.Time       `json:"endedAt,omitempty" yaml:"ended_at"`
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string `json:"char" yaml:"char"`
	Correct      int    `json:"correct" yaml:"correct"`
	Incorrect    int    `json:"incorrect" yaml:"incorrect"`
	LatencySumMs int64  `json:"latencySumMs" yaml:"latency_sum_ms"`
	LatencyCount int64  `json:"latencyCount" yaml:"latency_count"`
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string `json:"char" yaml:"char"`
	Correct      int    `json:"correct" yaml:"correct"`
	Incorrect    int    `json:"incorrect" yaml:"incorrect"`
	LatencySumMs int64  `json:"latencySumMs" yaml:"latency_sum_ms"`
	LatencyCount int64  `json:"latencyCount" yaml:"latency_count"`
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID       int64     `json:"sessionId" yaml:"session_id"`
	UserID          string    `json:"userId,omitempty" yaml:"user_id,omitempty"`
	EndedAt         time.Time `json:"endedAt" yaml:"ended_at"`
	Lang            string    `json:"lang" yaml:"lang"`
	DurationSeconds int       `json:"duration" yaml:"duration"`
	ElapsedSeconds  int       `json:"elapsedSeconds" yaml:"elapsed_seconds"`
	WPM             int       `json:"wpm" yaml:"wpm"`
	RawWPM          int       `json:"rawWpm" yaml:"raw_wpm"`
	Accuracy        int       `json:"accuracy" yaml:"accuracy"`
	Consistency     int       `json:"consistency" yaml:"consistency"`
	Correct         int       `json:"charactersCorrect" yaml:"characters_correct"`
	Incorrect       int       `json:"charactersIncorrect" yaml:"characters_incorrect"`
}

// LeaderboardEntry is one ranked result.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	WPM        int    `json:"wpm"`
	RecordedAt int64  `json:"recordedAt"`
}

// Identity describes who is practicing. An empty UserID means anonymous.
type Identity struct {
	UserID        string
	DisplayName   string
	Authenticated bool
}
