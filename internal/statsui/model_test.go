package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/stats"
	"github.com/verte-zerg/wpmhero/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "wpmhero.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ended := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, wpm := range []int{50, 70} {
		res := model.SessionResult{
			UserID:            "u1",
			UserName:          "Ada",
			Lang:              "en",
			WPM:               wpm,
			RawWPM:            wpm + 4,
			Accuracy:          96,
			Consistency:       80,
			DurationSeconds:   60,
			CharactersCorrect: 10,
			EndedAt:           ended.Add(time.Duration(i) * time.Minute),
		}
		chars := []model.CharStats{{Char: "a", Correct: 9, Incorrect: 1}, {Char: " ", Correct: 3}}
		if _, err := st.InsertResult(context.Background(), res, chars); err != nil {
			t.Fatalf("insert result: %v", err)
		}
	}
}

func TestModelRendersTabs(t *testing.T) {
	st := openStore(t)
	seed(t, st)
	m := NewModel(st, leaderboard.NewStoreBoard(st), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()
	if !strings.Contains(out, "Best WPM") || !strings.Contains(out, "70") {
		t.Fatalf("overview missing summary: %s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabCharTable {
		t.Fatalf("expected characters tab, got %d", m.activeTab)
	}
	out = m.View()
	if !strings.Contains(out, "<space>") || !strings.Contains(out, "90.00%") {
		t.Fatalf("char table missing rows: %s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabLeaderboard {
		t.Fatalf("expected wrap to leaderboard tab, got %d", m.activeTab)
	}
	out = m.View()
	if !strings.Contains(out, "Leaderboard (60s)") || !strings.Contains(out, "Ada") {
		t.Fatalf("leaderboard missing entries: %s", out)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if m.boardDur != 120 {
		t.Fatalf("expected next preset 120, got %d", m.boardDur)
	}
	if !strings.Contains(m.View(), "No results yet.") {
		t.Fatalf("expected empty 120s leaderboard")
	}
}

func TestModelWithoutBoard(t *testing.T) {
	st := openStore(t)
	m := NewModel(st, nil, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.activeTab = tabLeaderboard
	if !strings.Contains(m.View(), "Leaderboard unavailable.") {
		t.Fatalf("expected unavailable message")
	}
	m.activeTab = tabOverview
	if !strings.Contains(m.View(), "No sessions found.") {
		t.Fatalf("expected empty overview")
	}
}

func TestParseFilter(t *testing.T) {
	st := openStore(t)
	m := NewModel(st, nil, model.StatsConfig{Chars: "a", CurveWindow: 3})
	m.filterInputs[fieldLang].SetValue(" en ")
	m.filterInputs[fieldSince].SetValue("2024-05-01")
	m.filterInputs[fieldLast].SetValue("10")
	m.filterInputs[fieldDuration].SetValue("30")
	m.filterInputs[fieldWindow].SetValue("5")
	cfg, err := m.parseFilter()
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Lang != "en" || cfg.Last != 10 || cfg.Duration != 30 || cfg.CurveWindow != 5 || cfg.Chars != "a" || cfg.Since == nil {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	m.filterInputs[fieldDuration].SetValue("-1")
	if _, err := m.parseFilter(); err == nil {
		t.Fatalf("expected duration error")
	}
	m.filterInputs[fieldDuration].SetValue("")
	m.filterInputs[fieldSince].SetValue("May 1")
	if _, err := m.parseFilter(); err == nil {
		t.Fatalf("expected since error")
	}
	m.filterInputs[fieldSince].SetValue("")
	m.filterInputs[fieldWindow].SetValue("0")
	if _, err := m.parseFilter(); err == nil {
		t.Fatalf("expected window error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{0, 5, 1},
		{3, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}

func TestNextPresetWraps(t *testing.T) {
	if got := nextPreset(120); got != 15 {
		t.Fatalf("expected wrap to 15, got %d", got)
	}
	if got := nextPreset(45); got != 15 {
		t.Fatalf("expected unknown duration to reset to 15, got %d", got)
	}
}

func TestRenderOverviewAnalytics(t *testing.T) {
	ended := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions := []model.SessionAggregate{
		{SessionID: 1, Lang: "en", WPM: 45, Accuracy: 92, DurationSeconds: 15, ElapsedSeconds: 15, EndedAt: ended},
		{SessionID: 2, Lang: "en", WPM: 75, Accuracy: 98, DurationSeconds: 60, ElapsedSeconds: 60, EndedAt: ended.Add(time.Minute)},
	}
	report := stats.Report{Sessions: sessions, Summary: stats.Summarize(sessions)}

	out := renderOverview(report, 1, 100)
	for _, want := range []string{"Worst WPM", "Recent Avg (5)", "Time Typing", "1m15s", "Best run: 75 WPM", "Worst run: 45 WPM", "By Duration", "15s", "Recent Runs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in overview:\n%s", want, out)
		}
	}
	if strings.Index(out, "By Duration") > strings.Index(out, "Recent Runs") {
		t.Fatalf("expected breakdown before recent runs")
	}
}
