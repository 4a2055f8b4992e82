package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/wpmhero/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); len(got) != 3 {
		t.Fatalf("expected flat sparkline of 3 chars, got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[int]string{0: "00:00", 59: "00:59", 60: "01:00", 125: "02:05", -3: "00:00"}
	for in, want := range cases {
		if got := FormatSeconds(in); got != want {
			t.Fatalf("FormatSeconds(%d): expected %q, got %q", in, want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.SessionAggregate{
		{WPM: 40, RawWPM: 50, Accuracy: 80, Consistency: 70, DurationSeconds: 30, ElapsedSeconds: 30, Correct: 90, Incorrect: 10},
		{WPM: 60, RawWPM: 70, Accuracy: 100, Consistency: 90, DurationSeconds: 60, ElapsedSeconds: 60, Correct: 200},
	})
	if s.Sessions != 2 || s.BestWPM != 60 || s.WorstWPM != 40 || s.AvgWPM != 50 || s.AvgAccuracy != 90 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.TimeTyping != 90*time.Second {
		t.Fatalf("expected 90s typing, got %s", s.TimeTyping)
	}
	if s.TotalChars != 300 {
		t.Fatalf("expected 300 chars, got %d", s.TotalChars)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Sessions != 0 || s.Best != nil || s.Worst != nil || len(s.ByDuration) != 0 || len(s.Recent) != 0 {
		t.Fatalf("unexpected empty summary: %+v", s)
	}
}

func TestSummarizeTimeTypingUsesElapsed(t *testing.T) {
	s := Summarize([]model.SessionAggregate{
		{WPM: 50, DurationSeconds: 60, ElapsedSeconds: 12},
		{WPM: 55, DurationSeconds: 30, ElapsedSeconds: 30},
	})
	if s.TimeTyping != 42*time.Second {
		t.Fatalf("expected 42s typing for a run ended early, got %s", s.TimeTyping)
	}
}

func TestSummarizeByDuration(t *testing.T) {
	s := Summarize([]model.SessionAggregate{
		{WPM: 70, Accuracy: 90, Consistency: 60, DurationSeconds: 60},
		{WPM: 40, Accuracy: 80, Consistency: 70, DurationSeconds: 15},
		{WPM: 80, Accuracy: 100, Consistency: 80, DurationSeconds: 60},
		{WPM: 50, Accuracy: 100, Consistency: 90, DurationSeconds: 15},
	})
	if len(s.ByDuration) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", s.ByDuration)
	}
	short, long := s.ByDuration[0], s.ByDuration[1]
	if short.Duration != 15 || short.Sessions != 2 || short.AvgWPM != 45 || short.BestWPM != 50 ||
		short.AvgAccuracy != 90 || short.AvgConsistency != 80 {
		t.Fatalf("unexpected 15s bucket: %+v", short)
	}
	if long.Duration != 60 || long.Sessions != 2 || long.AvgWPM != 75 || long.BestWPM != 80 ||
		long.AvgAccuracy != 95 || long.AvgConsistency != 70 {
		t.Fatalf("unexpected 60s bucket: %+v", long)
	}
}

func TestSummarizeBestWorstPreferLatest(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := Summarize([]model.SessionAggregate{
		{SessionID: 1, WPM: 30, EndedAt: base},
		{SessionID: 2, WPM: 90, EndedAt: base.Add(time.Minute)},
		{SessionID: 3, WPM: 30, EndedAt: base.Add(2 * time.Minute)},
		{SessionID: 4, WPM: 90, EndedAt: base.Add(3 * time.Minute)},
		{SessionID: 5, WPM: 60, EndedAt: base.Add(4 * time.Minute)},
	})
	if s.Best == nil || s.Best.SessionID != 4 {
		t.Fatalf("expected latest best run 4, got %+v", s.Best)
	}
	if s.Worst == nil || s.Worst.SessionID != 3 {
		t.Fatalf("expected latest worst run 3, got %+v", s.Worst)
	}
}

func TestSummarizeRecent(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions := make([]model.SessionAggregate, 25)
	for i := range sessions {
		sessions[i] = model.SessionAggregate{SessionID: int64(i + 1), WPM: 10 + i, EndedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	s := Summarize(sessions)
	if len(s.Recent) != RecentRuns {
		t.Fatalf("expected %d recent runs, got %d", RecentRuns, len(s.Recent))
	}
	if s.Recent[0].SessionID != 25 || s.Recent[RecentRuns-1].SessionID != 6 {
		t.Fatalf("expected newest first, got %d..%d", s.Recent[0].SessionID, s.Recent[RecentRuns-1].SessionID)
	}
	// Newest five WPM values are 34, 33, 32, 31, 30.
	if s.RecentAvgWPM != 32 {
		t.Fatalf("expected recent average 32, got %v", s.RecentAvgWPM)
	}

	s = Summarize(sessions[:2])
	if len(s.Recent) != 2 || s.RecentAvgWPM != 10.5 {
		t.Fatalf("unexpected short history summary: %+v", s)
	}
}

func TestRenderSummarySections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render empty summary: %v", err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Fatalf("unexpected empty summary %q", buf.String())
	}

	buf.Reset()
	ended := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	err := RenderSummary(&buf, []model.SessionAggregate{
		{Lang: "en", WPM: 40, Accuracy: 90, DurationSeconds: 30, ElapsedSeconds: 30, EndedAt: ended},
		{Lang: "de", WPM: 70, Accuracy: 97, DurationSeconds: 60, ElapsedSeconds: 45, EndedAt: ended.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Sessions: 2",
		"Recent Avg WPM (5): 55.0",
		"Worst WPM: 40",
		"Time typing: 1m15s",
		"Best run: 70 WPM, 97% acc, 60s de",
		"By Duration",
		"Recent Runs",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
	if strings.Index(out, " de ") > strings.Index(out, " en ") {
		t.Fatalf("expected newest run listed first:\n%s", out)
	}
}

func TestRenderBreakdownRows(t *testing.T) {
	var buf bytes.Buffer
	err := RenderBreakdown(&buf, []DurationSummary{
		{Duration: 15, Sessions: 3, AvgWPM: 62.5, BestWPM: 71, AvgAccuracy: 96, AvgConsistency: 80.4},
	})
	if err != nil {
		t.Fatalf("render breakdown: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "By Duration" {
		t.Fatalf("unexpected breakdown %q", buf.String())
	}
	fields := strings.Fields(lines[2])
	want := []string{"15s", "3", "62.5", "71", "96.0%", "80.4%"}
	if len(fields) != len(want) {
		t.Fatalf("unexpected row %q", lines[2])
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("column %d: expected %q, got %q", i, want[i], fields[i])
		}
	}
}

func TestRenderLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLeaderboard(&buf, 30, nil); err != nil {
		t.Fatalf("render leaderboard: %v", err)
	}
	if !strings.Contains(buf.String(), "Leaderboard (30s)") || !strings.Contains(buf.String(), "No results yet.") {
		t.Fatalf("unexpected empty leaderboard: %q", buf.String())
	}

	buf.Reset()
	err := RenderLeaderboard(&buf, 60, []model.LeaderboardEntry{
		{UserID: "u1", Name: "Ada", WPM: 120},
		{UserID: "u2", Name: "Linus", WPM: 95},
	})
	if err != nil {
		t.Fatalf("render leaderboard: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[2], "1 Ada") || !strings.Contains(lines[2], "120") {
		t.Fatalf("unexpected first row: %q", lines[2])
	}
}

func TestRenderCharTableWeakestFirst(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCharTable(&buf, []model.CharAggregate{
		{Char: "a", Correct: 10},
		{Char: " ", Correct: 1, Incorrect: 1},
	})
	if err != nil {
		t.Fatalf("render char table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Per-Character" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "<space>") {
		t.Fatalf("expected space row first, got %q", lines[2])
	}
}

func TestFormatTablePadsColumns(t *testing.T) {
	lines := formatTable(
		[]string{"#", "Name", "WPM"},
		[][]string{{"1", "ada", "112"}, {"2", "<anonymous>", "87"}},
		map[int]bool{0: true, 2: true},
	)
	want := []string{
		"# Name        WPM",
		"1 ada         112",
		"2 <anonymous>  87",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}
