// Package session implements the state machine for a single typing attempt.
//
// A Session is owned by one caller and driven serially. Every transition is a
// total method: calls that are not valid in the current phase leave the
// session untouched and report false.
package session

import (
	"math"
	"slices"
	"strings"

	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/stats"
)

// DefaultDuration is the attempt length in seconds used by New when none is given.
const DefaultDuration = 60

// Phase is the lifecycle stage of an attempt.
type Phase int

const (
	// PhaseIdle means no attempt is in progress.
	PhaseIdle Phase = iota
	// PhaseRunning means input is accepted and the clock is counting down.
	PhaseRunning
	// PhaseCompleted is terminal until Reset, SetText or SetDuration.
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Slot records what was typed at one target position.
type Slot struct {
	Typed     rune
	Attempted bool
}

// Counters are maintained incrementally on every edit.
//
// CorrectChars and PendingErrors describe the current input record.
// TotalCorrect and TotalIncorrect count every judged keypress and never
// decrease during an attempt.
type Counters struct {
	CorrectChars   int
	PendingErrors  int
	TotalCorrect   int
	TotalIncorrect int
}

// Session holds the mutable state of one typing attempt.
type Session struct {
	words     []string
	target    []rune
	slots     []Slot
	caret     int
	duration  int
	remaining int
	phase     Phase
	counters  Counters
	events    []model.KeypressEvent
	history   []model.Snapshot
	snapshot  model.Snapshot
	final     model.Snapshot
	hasFinal  bool
}

// New returns an idle session with no text loaded.
func New(duration int) *Session {
	if duration == 0 {
		duration = DefaultDuration
	}
	s := &Session{}
	s.SetDuration(duration)
	return s
}

// SetText replaces the target with words joined by single spaces and
// returns the session to Idle.
func (s *Session) SetText(words []string) bool {
	s.words = append([]string(nil), words...)
	s.target = []rune(strings.Join(s.words, " "))
	s.clear()
	s.phase = PhaseIdle
	return true
}

// SetDuration changes the attempt length and returns the session to Idle.
// Values below one second are clamped to one.
func (s *Session) SetDuration(seconds int) bool {
	if seconds < 1 {
		seconds = 1
	}
	s.duration = seconds
	s.clear()
	s.phase = PhaseIdle
	return true
}

// Start begins an attempt. It requires Idle and a non-empty target.
func (s *Session) Start() bool {
	if s.phase != PhaseIdle || len(s.target) == 0 {
		return false
	}
	s.clear()
	s.phase = PhaseRunning
	return true
}

// Reset discards the attempt and returns to Idle, keeping the loaded text.
func (s *Session) Reset() bool {
	s.clear()
	s.phase = PhaseIdle
	return true
}

// InputCharacter judges ch against the target at the caret.
func (s *Session) InputCharacter(ch rune, timestampMs int64) bool {
	if s.phase != PhaseRunning || s.caret >= len(s.target) {
		return false
	}
	expected := s.target[s.caret]
	correct := ch == expected

	s.reverse(s.caret)
	s.slots[s.caret] = Slot{Typed: ch, Attempted: true}
	if correct {
		s.counters.CorrectChars++
		s.counters.TotalCorrect++
	} else {
		s.counters.PendingErrors++
		s.counters.TotalIncorrect++
	}

	s.events = append(s.events, model.KeypressEvent{
		Key:       string(ch),
		Expected:  string(expected),
		Timestamp: timestampMs,
		Correct:   correct,
	})
	s.snapshot = stats.ComputeSnapshot(s.events)
	s.history = append(s.history, s.snapshot)
	s.caret++

	if s.caret == len(s.target) && s.counters.PendingErrors == 0 {
		s.finish()
	}
	return true
}

// Backspace retracts the slot before the caret. The keypress log is not edited.
func (s *Session) Backspace() bool {
	if s.phase != PhaseRunning || s.caret == 0 {
		return false
	}
	s.caret--
	s.reverse(s.caret)
	s.slots[s.caret] = Slot{}
	return true
}

// Tick advances the clock by one second and completes the attempt when time runs out.
func (s *Session) Tick() bool {
	if s.phase != PhaseRunning {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	s.snapshot = stats.ComputeSnapshot(s.events)
	if s.remaining == 0 {
		s.finish()
	}
	return true
}

// Complete ends a running attempt once the whole text is matched without errors.
func (s *Session) Complete() bool {
	if s.phase != PhaseRunning || s.counters.PendingErrors != 0 || s.caret != len(s.target) {
		return false
	}
	s.finish()
	return true
}

func (s *Session) finish() {
	s.phase = PhaseCompleted
	s.final = s.snapshot
	s.hasFinal = true
}

// reverse removes the contribution of slot i from the counters.
func (s *Session) reverse(i int) {
	slot := s.slots[i]
	if !slot.Attempted {
		return
	}
	if slot.Typed == s.target[i] {
		s.counters.CorrectChars--
		return
	}
	if s.counters.PendingErrors > 0 {
		s.counters.PendingErrors--
	}
}

func (s *Session) clear() {
	s.slots = make([]Slot, len(s.target))
	s.caret = 0
	s.remaining = s.duration
	s.counters = Counters{}
	s.events = nil
	s.history = nil
	s.snapshot = stats.ComputeSnapshot(nil)
	s.final = model.Snapshot{}
	s.hasFinal = false
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase { return s.phase }

// Caret returns the index of the next position to be judged.
func (s *Session) Caret() int { return s.caret }

// Target returns a copy of the target text.
func (s *Session) Target() []rune { return append([]rune(nil), s.target...) }

// Words returns the words the target was built from.
func (s *Session) Words() []string { return append([]string(nil), s.words...) }

// Slots returns a copy of the input record.
func (s *Session) Slots() []Slot { return append([]Slot(nil), s.slots...) }

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int { return s.remaining }

// Duration returns the configured attempt length in seconds.
func (s *Session) Duration() int { return s.duration }

// Counters returns the aggregate counters.
func (s *Session) Counters() Counters { return s.counters }

// Snapshot returns the latest statistics.
func (s *Session) Snapshot() model.Snapshot { return s.snapshot }

// Events returns a copy of the keypress log.
func (s *Session) Events() []model.KeypressEvent {
	return append([]model.KeypressEvent(nil), s.events...)
}

// History returns a copy of the snapshot history.
func (s *Session) History() []model.Snapshot { return append([]model.Snapshot(nil), s.history...) }

// Final returns the snapshot captured at completion.
func (s *Session) Final() (model.Snapshot, bool) { return s.final, s.hasFinal }

// Progress is the share of target characters currently matched, 0-100.
func (s *Session) Progress() int {
	if len(s.target) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.counters.CorrectChars) / float64(len(s.target))))
}

// ElapsedSeconds reports the attempt length so far, from the clock or from
// the keypress span, whichever is longer.
func (s *Session) ElapsedSeconds() int {
	elapsed := s.duration - s.remaining
	if n := len(s.events); n > 1 {
		span := s.events[n-1].Timestamp - s.events[0].Timestamp
		if sec := int(math.Ceil(float64(span) / 1000)); sec > elapsed {
			elapsed = sec
		}
	}
	return elapsed
}

// Result builds the completion payload. It is only available once Completed.
func (s *Session) Result() (model.SessionResult, bool) {
	if s.phase != PhaseCompleted || !s.hasFinal {
		return model.SessionResult{}, false
	}
	return model.SessionResult{
		WPM:                 s.final.WPM,
		RawWPM:              s.final.RawWPM,
		Accuracy:            s.final.Accuracy,
		Consistency:         s.final.Consistency,
		DurationSeconds:     s.duration,
		ElapsedSeconds:      s.ElapsedSeconds(),
		CharactersTyped:     s.counters.TotalCorrect + s.counters.TotalIncorrect,
		CharactersCorrect:   s.counters.TotalCorrect,
		CharactersIncorrect: s.counters.TotalIncorrect,
		Errors:              s.final.Errors,
		TextLength:          len(s.target),
		Keypresses:          s.Events(),
		Snapshots:           s.History(),
	}, true
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.words = slices.Clone(s.words)
	c.target = slices.Clone(s.target)
	c.slots = slices.Clone(s.slots)
	c.events = slices.Clone(s.events)
	c.history = slices.Clone(s.history)
	return &c
}
