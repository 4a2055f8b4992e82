package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/verte-zerg/wpmhero/internal/model"
)

const (
	// RecentAverageRuns is how many of the newest runs feed RecentAvgWPM.
	RecentAverageRuns = 5
	// RecentRuns caps Summary.Recent.
	RecentRuns = 20

	runTimeLayout = "2006-01-02 15:04"
)

// Summary holds headline numbers across sessions.
type Summary struct {
	Sessions       int
	AvgWPM         float64
	BestWPM        int
	WorstWPM       int
	AvgRawWPM      float64
	AvgAccuracy    float64
	AvgConsistency float64
	RecentAvgWPM   float64
	TimeTyping     time.Duration
	TotalChars     int

	// Best and Worst are nil when there are no sessions. Ties go to the
	// most recent run.
	Best  *model.SessionAggregate
	Worst *model.SessionAggregate

	ByDuration []DurationSummary
	// Recent lists up to RecentRuns sessions, newest first.
	Recent []model.SessionAggregate
}

// DurationSummary aggregates runs of one timer length.
type DurationSummary struct {
	Duration       int
	Sessions       int
	AvgWPM         float64
	AvgAccuracy    float64
	AvgConsistency float64
	BestWPM        int
}

// Summarize computes a Summary for sessions ordered oldest first.
func Summarize(sessions []model.SessionAggregate) Summary {
	s := Summary{Sessions: len(sessions)}
	if len(sessions) == 0 {
		return s
	}

	buckets := make(map[int]*DurationSummary)
	var best, worst int
	for i, sess := range sessions {
		s.AvgWPM += float64(sess.WPM)
		s.AvgRawWPM += float64(sess.RawWPM)
		s.AvgAccuracy += float64(sess.Accuracy)
		s.AvgConsistency += float64(sess.Consistency)
		s.TimeTyping += time.Duration(sess.ElapsedSeconds) * time.Second
		s.TotalChars += sess.Correct + sess.Incorrect
		if top := sessions[best]; sess.WPM > top.WPM || (sess.WPM == top.WPM && laterOrEqual(sess, top)) {
			best = i
		}
		if low := sessions[worst]; sess.WPM < low.WPM || (sess.WPM == low.WPM && laterOrEqual(sess, low)) {
			worst = i
		}

		b, ok := buckets[sess.DurationSeconds]
		if !ok {
			b = &DurationSummary{Duration: sess.DurationSeconds}
			buckets[sess.DurationSeconds] = b
		}
		b.Sessions++
		b.AvgWPM += float64(sess.WPM)
		b.AvgAccuracy += float64(sess.Accuracy)
		b.AvgConsistency += float64(sess.Consistency)
		b.BestWPM = max(b.BestWPM, sess.WPM)
	}
	count := float64(len(sessions))
	s.AvgWPM /= count
	s.AvgRawWPM /= count
	s.AvgAccuracy /= count
	s.AvgConsistency /= count

	bestRun, worstRun := sessions[best], sessions[worst]
	s.Best, s.Worst = &bestRun, &worstRun
	s.BestWPM, s.WorstWPM = bestRun.WPM, worstRun.WPM

	s.ByDuration = make([]DurationSummary, 0, len(buckets))
	for _, b := range buckets {
		n := float64(b.Sessions)
		b.AvgWPM /= n
		b.AvgAccuracy /= n
		b.AvgConsistency /= n
		s.ByDuration = append(s.ByDuration, *b)
	}
	sort.Slice(s.ByDuration, func(i, j int) bool {
		return s.ByDuration[i].Duration < s.ByDuration[j].Duration
	})

	n := min(len(sessions), RecentRuns)
	s.Recent = make([]model.SessionAggregate, n)
	for i := range n {
		s.Recent[i] = sessions[len(sessions)-1-i]
	}
	sample := s.Recent[:min(n, RecentAverageRuns)]
	for _, sess := range sample {
		s.RecentAvgWPM += float64(sess.WPM)
	}
	s.RecentAvgWPM /= float64(len(sample))
	return s
}

// laterOrEqual reports whether a ended no earlier than b. Input order breaks
// ties between equal timestamps.
func laterOrEqual(a, b model.SessionAggregate) bool {
	return !a.EndedAt.Before(b.EndedAt)
}

// RenderSummary prints headline numbers, the per-duration breakdown and the
// most recent runs.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Recent Avg WPM (%d): %.1f", RecentAverageRuns, s.RecentAvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Worst WPM: %d", s.WorstWPM),
		fmt.Sprintf("Avg Raw WPM: %.1f", s.AvgRawWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Avg Consistency: %.1f%%", s.AvgConsistency),
		fmt.Sprintf("Time typing: %s", s.TimeTyping),
		fmt.Sprintf("Characters typed: %d", s.TotalChars),
		"Best run: " + RunLabel(*s.Best),
		"Worst run: " + RunLabel(*s.Worst),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if err := RenderBreakdown(w, s.ByDuration); err != nil {
		return err
	}
	return RenderRecent(w, s.Recent)
}

// RunLabel describes one run on a single line.
func RunLabel(run model.SessionAggregate) string {
	return fmt.Sprintf("%d WPM, %d%% acc, %ds %s, %s", run.WPM, run.Accuracy, run.DurationSeconds, run.Lang,
		run.EndedAt.Local().Format(runTimeLayout))
}

// RenderBreakdown prints per-duration aggregates, shortest timer first.
func RenderBreakdown(w io.Writer, buckets []DurationSummary) error {
	if _, err := fmt.Fprintln(w, "By Duration"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			fmt.Sprintf("%ds", b.Duration),
			strconv.Itoa(b.Sessions),
			fmt.Sprintf("%.1f", b.AvgWPM),
			strconv.Itoa(b.BestWPM),
			fmt.Sprintf("%.1f%%", b.AvgAccuracy),
			fmt.Sprintf("%.1f%%", b.AvgConsistency),
		})
	}
	headers := []string{"Duration", "Runs", "Avg WPM", "Best WPM", "Avg Acc", "Avg Cons"}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRecent prints the given runs in order.
func RenderRecent(w io.Writer, runs []model.SessionAggregate) error {
	if _, err := fmt.Fprintln(w, "Recent Runs"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.EndedAt.Local().Format(runTimeLayout),
			r.Lang,
			fmt.Sprintf("%ds", r.DurationSeconds),
			strconv.Itoa(r.WPM),
			strconv.Itoa(r.RawWPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d%%", r.Consistency),
		})
	}
	headers := []string{"Date", "Lang", "Duration", "WPM", "Raw", "Acc", "Cons"}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
