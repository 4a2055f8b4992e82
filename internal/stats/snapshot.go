// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"

	"github.com/verte-zerg/wpmhero/internal/model"
)

const (
	// CharsPerWord is the standard typing-speed word length.
	CharsPerWord = 5
	// ConsistencyWindows is the number of windows used for consistency.
	ConsistencyWindows = 12
)

// ComputeSnapshot derives live metrics from an ordered keypress log.
//
// The log is not required to be sorted: elapsed spans below one second,
// including negative ones, are clamped to one second. Consistency is an
// approximation of speed variance (100 minus the mean absolute deviation of
// per-window raw WPM), not a formal coefficient of variation.
func ComputeSnapshot(events []model.KeypressEvent) model.Snapshot {
	if len(events) == 0 {
		return model.Snapshot{Accuracy: 100, Consistency: 100}
	}
	typed := len(events)
	correct := 0
	for _, ev := range events {
		if ev.Correct {
			correct++
		}
	}
	raw := RawWPM(events)
	accuracy := clampPercent(math.Round(100 * float64(correct) / float64(typed)))
	wpm := int(math.Round(float64(raw) * float64(accuracy) / 100))
	return model.Snapshot{
		WPM:             wpm,
		RawWPM:          raw,
		Accuracy:        accuracy,
		Consistency:     Consistency(events),
		Errors:          typed - correct,
		CharactersTyped: typed,
		Timestamp:       events[typed-1].Timestamp,
	}
}

// RawWPM returns the uncorrected speed of the events, 5 characters per word.
func RawWPM(events []model.KeypressEvent) int {
	if len(events) == 0 {
		return 0
	}
	elapsed := elapsedSeconds(events[0].Timestamp, events[len(events)-1].Timestamp)
	words := float64(len(events)) / CharsPerWord
	return int(math.Round(words / (elapsed / 60)))
}

// Consistency scores speed steadiness across contiguous windows (0-100).
func Consistency(events []model.KeypressEvent) int {
	n := len(events)
	if n == 0 {
		return 100
	}
	windows := ConsistencyWindows
	if n < windows {
		windows = n
	}
	size := n / windows
	speeds := make([]float64, 0, windows)
	for i := 0; i < windows; i++ {
		start := i * size
		end := start + size
		if i == windows-1 {
			end = n
		}
		speeds = append(speeds, float64(RawWPM(events[start:end])))
	}
	var sum float64
	for _, v := range speeds {
		sum += v
	}
	avg := sum / float64(len(speeds))
	var dev float64
	for _, v := range speeds {
		dev += math.Abs(v - avg)
	}
	dev /= float64(len(speeds))
	return clampPercent(math.Round(100 - dev))
}

func elapsedSeconds(firstMs, lastMs int64) float64 {
	seconds := float64(lastMs-firstMs) / 1000
	if seconds < 1 {
		return 1
	}
	return seconds
}

func clampPercent(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
