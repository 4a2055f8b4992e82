package stats

import (
	"testing"

	"github.com/verte-zerg/wpmhero/internal/model"
)

func events(correct []bool, stamps ...int64) []model.KeypressEvent {
	out := make([]model.KeypressEvent, len(stamps))
	for i, ts := range stamps {
		ok := true
		if i < len(correct) {
			ok = correct[i]
		}
		out[i] = model.KeypressEvent{Key: "a", Expected: "a", Timestamp: ts, Correct: ok}
	}
	return out
}

func TestComputeSnapshotEmpty(t *testing.T) {
	snap := ComputeSnapshot(nil)
	expectEqual(t, model.Snapshot{Accuracy: 100, Consistency: 100}, snap)
}

func TestComputeSnapshotSingleKeypress(t *testing.T) {
	snap := ComputeSnapshot(events(nil, 1000))
	expectEqual(t, 12, snap.RawWPM)
	expectEqual(t, 12, snap.WPM)
	expectEqual(t, 100, snap.Accuracy)
	expectEqual(t, 100, snap.Consistency)
	expectEqual(t, 0, snap.Errors)
	expectEqual(t, 1, snap.CharactersTyped)
	expectEqual(t, int64(1000), snap.Timestamp)
}

func TestComputeSnapshotAllIncorrect(t *testing.T) {
	snap := ComputeSnapshot(events([]bool{false, false, false, false, false}, 0, 1000, 2000, 3000, 4000))
	expectEqual(t, 15, snap.RawWPM)
	expectEqual(t, 0, snap.Accuracy)
	expectEqual(t, 0, snap.WPM)
	expectEqual(t, 5, snap.Errors)
}

func TestComputeSnapshotAccuracyPenalty(t *testing.T) {
	// 10 events across 6s: raw = round(2 / 0.1) = 20.
	stamps := []int64{0, 600, 1200, 1800, 2400, 3000, 3600, 4200, 4800, 6000}
	correct := []bool{true, true, true, false, true, true, false, true, true, false}
	snap := ComputeSnapshot(events(correct, stamps...))
	expectEqual(t, 20, snap.RawWPM)
	expectEqual(t, 70, snap.Accuracy)
	expectEqual(t, 14, snap.WPM)
	expectEqual(t, 3, snap.Errors)
	expectEqual(t, 10, snap.CharactersTyped)
}

func TestComputeSnapshotNonMonotonicTimestamps(t *testing.T) {
	snap := ComputeSnapshot(events(nil, 5000, 1000))
	expectEqual(t, 24, snap.RawWPM)
	expectEqual(t, 24, snap.WPM)
	expectEqual(t, int64(1000), snap.Timestamp)
}

func TestConsistencySteady(t *testing.T) {
	stamps := make([]int64, 24)
	for i := range stamps {
		stamps[i] = int64(i) * 250
	}
	evs := events(nil, stamps...)
	expectEqual(t, 100, Consistency(evs))
	expectEqual(t, 50, RawWPM(evs))
}

func TestConsistencyFewEvents(t *testing.T) {
	expectEqual(t, 100, Consistency(events(nil, 0, 10, 5000, 9000)))
	expectEqual(t, 100, Consistency(nil))
}

func TestConsistencyErratic(t *testing.T) {
	// 12 windows of 4 events: fast windows score 48, slow windows 16.
	var stamps []int64
	var ts int64
	for w := 0; w < 12; w++ {
		step := int64(100)
		if w%2 == 1 {
			step = 1000
		}
		for i := 0; i < 4; i++ {
			stamps = append(stamps, ts)
			ts += step
		}
	}
	expectEqual(t, 84, Consistency(events(nil, stamps...)))
}

func TestConsistencyRemainderWindow(t *testing.T) {
	// 13 events: 11 single-event windows and a last window of two events.
	stamps := make([]int64, 13)
	for i := range stamps {
		stamps[i] = int64(i) * 100
	}
	// Windows score 12 except the last (2 events in <1s) at 24.
	// avg = 13, mean deviation = (11*1 + 11)/12 = 1.83 → 98.
	expectEqual(t, 98, Consistency(events(nil, stamps...)))
}

func TestClampPercent(t *testing.T) {
	expectEqual(t, 0, clampPercent(-5))
	expectEqual(t, 100, clampPercent(140))
	expectEqual(t, 42, clampPercent(42))
}

func expectEqual[T comparable](t *testing.T, want, got T) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
