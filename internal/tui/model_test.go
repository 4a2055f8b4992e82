package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wpmhero/internal/identity"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/results"
	"github.com/verte-zerg/wpmhero/internal/session"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type capture struct {
	results []model.SessionResult
}

func (c *capture) Publish(_ context.Context, res model.SessionResult) error {
	c.results = append(c.results, res)
	return nil
}

func newTestModel(cfg model.Config, pub results.Publisher) (*Model, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := NewModel(Options{
		Config:    cfg,
		Words:     []string{"go"},
		Publisher: pub,
		Identity:  identity.Local{UserID: "u1", Name: "Ada", Token: "u1.secret"},
		Now:       clock.now,
	})
	m.tick = func(int) tea.Cmd { return nil }
	return m, clock
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, clock *fakeClock, text string) tea.Cmd {
	var last tea.Cmd
	for _, r := range text {
		msg := keyRunes(string(r))
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		_, last = m.Update(msg)
		clock.advance(200 * time.Millisecond)
	}
	return last
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestFirstKeyStartsAttempt(t *testing.T) {
	m, _ := newTestModel(model.Config{Words: 2, Lang: "en"}, nil)
	if m.sess.Phase() != session.PhaseIdle {
		t.Fatalf("expected idle before typing")
	}
	m.Update(keyRunes("g"))
	if m.sess.Phase() != session.PhaseRunning || m.attempt != 1 {
		t.Fatalf("expected running attempt 1, got %v attempt %d", m.sess.Phase(), m.attempt)
	}
	if m.sess.Caret() != 1 {
		t.Fatalf("expected first key to be judged, caret %d", m.sess.Caret())
	}
}

func TestTypingCompletesAndPublishes(t *testing.T) {
	pub := &capture{}
	m, clock := newTestModel(model.Config{Words: 2, Lang: "en"}, pub)
	started := clock.t

	cmd := typeText(m, clock, "go go")
	if m.sess.Phase() != session.PhaseCompleted {
		t.Fatalf("expected completed, got %v", m.sess.Phase())
	}
	if m.sync != syncPending {
		t.Fatalf("expected pending sync")
	}
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one publish message, got %d", len(msgs))
	}
	if len(pub.results) != 1 {
		t.Fatalf("expected one published result, got %d", len(pub.results))
	}
	res := pub.results[0]
	if res.ID == "" || res.Lang != "en" || res.UserID != "u1" || res.UserName != "Ada" {
		t.Fatalf("unexpected result identity: %+v", res)
	}
	if len(res.Keypresses) != 5 || res.CharactersCorrect != 5 || res.TextLength != 5 {
		t.Fatalf("unexpected result counters: %+v", res)
	}
	if !res.StartedAt.Equal(started) || !res.EndedAt.After(started) {
		t.Fatalf("unexpected timestamps %v - %v", res.StartedAt, res.EndedAt)
	}
	if res.Keypresses[4].Timestamp != 800 {
		t.Fatalf("expected keypress timestamps relative to start, got %d", res.Keypresses[4].Timestamp)
	}

	m.Update(msgs[0])
	if m.sync != syncDone {
		t.Fatalf("expected sync done after publish")
	}

	_, cmd = m.Update(keyRunes("g"))
	if cmd != nil || len(collect(cmd)) != 0 || len(pub.results) != 1 {
		t.Fatalf("expected input after completion to be ignored")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	m, _ := newTestModel(model.Config{Words: 2, Duration: 30}, nil)
	m.Update(keyRunes("g"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.sess.Phase() != session.PhaseIdle {
		t.Fatalf("expected idle after esc")
	}
	m.Update(keyRunes("g"))
	if m.attempt != 2 {
		t.Fatalf("expected second attempt, got %d", m.attempt)
	}
	m.Update(tickMsg{attempt: 1})
	if m.sess.Remaining() != 30 {
		t.Fatalf("expected stale tick to be ignored, remaining %d", m.sess.Remaining())
	}
	m.Update(tickMsg{attempt: 2})
	if m.sess.Remaining() != 29 {
		t.Fatalf("expected current tick to count down, remaining %d", m.sess.Remaining())
	}
}

func TestTimeoutPublishesOnce(t *testing.T) {
	pub := &capture{}
	m, _ := newTestModel(model.Config{Words: 2, Duration: 1}, pub)
	m.Update(keyRunes("x"))
	_, cmd := m.Update(tickMsg{attempt: m.attempt})
	if m.sess.Phase() != session.PhaseCompleted {
		t.Fatalf("expected timeout to complete the attempt")
	}
	collect(cmd)
	_, cmd = m.Update(tickMsg{attempt: m.attempt})
	if cmd != nil {
		t.Fatalf("expected no command from tick after completion")
	}
	if len(pub.results) != 1 {
		t.Fatalf("expected exactly one publish, got %d", len(pub.results))
	}
	if pub.results[0].CharactersIncorrect != 1 || pub.results[0].DurationSeconds != 1 {
		t.Fatalf("unexpected timeout result: %+v", pub.results[0])
	}
}

func TestNoPublisherSkipsSync(t *testing.T) {
	m, clock := newTestModel(model.Config{Words: 1}, nil)
	m.publisher = nil
	if cmd := typeText(m, clock, "go"); len(collect(cmd)) != 0 {
		t.Fatalf("expected no publish command without publisher")
	}
	if m.sync != syncIdle {
		t.Fatalf("expected idle sync state")
	}
}

func TestCycleDuration(t *testing.T) {
	m, _ := newTestModel(model.Config{Words: 2}, nil)
	want := []int{120, 15, 30, 60}
	for _, d := range want {
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
		if m.sess.Duration() != d || m.sess.Remaining() != d {
			t.Fatalf("expected duration %d, got %d", d, m.sess.Duration())
		}
	}
	m.sess.SetDuration(45)
	m.cycleDuration()
	if m.sess.Duration() != 60 {
		t.Fatalf("expected next preset above 45, got %d", m.sess.Duration())
	}
}

func TestTabLoadsNewTextAndBackspace(t *testing.T) {
	m, _ := newTestModel(model.Config{Words: 2}, nil)
	m.Update(keyRunes("x"))
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.sess.Caret() != 0 || len(m.sess.Events()) != 1 {
		t.Fatalf("expected caret 0 with logged keypress, caret %d events %d", m.sess.Caret(), len(m.sess.Events()))
	}
	m.Update(keyRunes("g"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.sess.Phase() != session.PhaseIdle || m.sess.Caret() != 0 || len(m.sess.Events()) != 0 {
		t.Fatalf("expected fresh idle session after tab")
	}
	if string(m.sess.Target()) != "go go" {
		t.Fatalf("unexpected text %q", string(m.sess.Target()))
	}
}

func TestViewShowsResultScreen(t *testing.T) {
	m, clock := newTestModel(model.Config{Words: 2}, &capture{})
	if out := m.View(); !strings.Contains(out, "01:00") {
		t.Fatalf("expected countdown in view: %s", out)
	}
	typeText(m, clock, "go go")
	out := m.View()
	if !containsAll(out, []string{"wpm", "accuracy 100%", "tab new text"}) {
		t.Fatalf("unexpected result view: %s", out)
	}
}
