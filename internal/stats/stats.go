package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/wpmhero/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[min(max(idx, 0), len(sparkChars)-1)])
	}
	return b.String()
}

// SnapshotSeries extracts the WPM and raw WPM series from a snapshot history.
func SnapshotSeries(history []model.Snapshot) (wpm, raw []float64) {
	wpm = make([]float64, len(history))
	raw = make([]float64, len(history))
	for i, snap := range history {
		wpm[i] = float64(snap.WPM)
		raw[i] = float64(snap.RawWPM)
	}
	return wpm, raw
}

// FormatSeconds renders seconds as mm:ss.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// RenderCurves prints learning curves for WPM, accuracy and consistency.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int, opts PlotOptions) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	cons := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i] = float64(s.WPM)
		accs[i] = float64(s.Accuracy)
		cons[i] = float64(s.Consistency)
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Consistency", Values: MovingAverage(cons, window)},
	}, opts)
}

// RenderCharTable prints per-character aggregates, weakest first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := charAccuracy(sorted[i]), charAccuracy(sorted[j])
		if ai == aj {
			return sorted[i].Char < sorted[j].Char
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	headers := []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		latency := 0.0
		if agg.LatencyCount > 0 {
			latency = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, []string{
			charLabel(agg.Char),
			fmt.Sprintf("%.2f%%", charAccuracy(agg)*100),
			fmt.Sprintf("%.1f", latency),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharCurves prints accuracy and latency curves for selected characters.
func RenderCharCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.CharAggregate, chars []string, window int, opts PlotOptions) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	for _, ch := range chars {
		acc := make([]float64, len(sessions))
		lat := make([]float64, len(sessions))
		for i, s := range sessions {
			agg, ok := perSession[s.SessionID][ch]
			if !ok {
				continue
			}
			acc[i] = charAccuracy(agg) * 100
			if agg.LatencyCount > 0 {
				lat[i] = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
			}
		}
		if err := PlotSeries(w, fmt.Sprintf("Char %s", charLabel(ch)), []Series{
			{Name: "Accuracy", Values: MovingAverage(acc, window)},
			{Name: "Latency", Values: MovingAverage(lat, window)},
		}, opts); err != nil {
			return err
		}
	}
	return nil
}

// RenderLeaderboard prints a ranked leaderboard.
func RenderLeaderboard(w io.Writer, duration int, entries []model.LeaderboardEntry) error {
	if _, err := fmt.Fprintf(w, "Leaderboard (%ds)\n", duration); err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No results yet.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Name,
			fmt.Sprintf("%d", e.WPM),
			time.UnixMilli(e.RecordedAt).Format("2006-01-02 15:04"),
		})
	}
	for _, line := range formatTable([]string{"#", "Name", "WPM", "Recorded"}, rows, map[int]bool{0: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func charLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}
