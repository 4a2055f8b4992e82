package stats

import (
	"sort"

	"github.com/verte-zerg/wpmhero/internal/model"
)

// CharStatsFromEvents aggregates per expected character correctness and the
// latency between consecutive correct keypresses. Spaces are skipped.
func CharStatsFromEvents(events []model.KeypressEvent) []model.CharStats {
	index := map[string]*model.CharStats{}
	var prevCorrectAt int64
	hasPrev := false
	for _, ev := range events {
		if ev.Expected == "" || ev.Expected == " " {
			continue
		}
		entry, ok := index[ev.Expected]
		if !ok {
			entry = &model.CharStats{Char: ev.Expected}
			index[ev.Expected] = entry
		}
		if !ev.Correct {
			entry.Incorrect++
			continue
		}
		entry.Correct++
		if hasPrev {
			if delta := ev.Timestamp - prevCorrectAt; delta >= 0 {
				entry.LatencySumMs += delta
				entry.LatencyCount++
			}
		}
		prevCorrectAt = ev.Timestamp
		hasPrev = true
	}
	out := make([]model.CharStats, 0, len(index))
	for _, entry := range index {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// SelectWeakChars selects the lowest-accuracy characters from aggregates.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.CharAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := charAccuracy(candidates[i]), charAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, c := range candidates[:top] {
		runes := []rune(c.Char)
		if len(runes) > 0 {
			weakSet[runes[0]] = struct{}{}
		}
	}
	return weakSet
}

// TopCharsByFrequency returns the n most practiced characters.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Char < sorted[j].Char
		}
		return ti > tj
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Char)
	}
	return out
}

func charAccuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
