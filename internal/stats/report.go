package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/store"
)

const defaultFocusChars = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	Summary          Summary
	WindowSessionIDs []int64
	CharAggsAll      []model.CharAggregate
	CharAggsWindow   []model.CharAggregate
	FocusChars       []string
	PerSessionChars  map[int64]map[string]model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggsAll, err := st.ListCharAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	charAggsWindow, err := st.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	focus := ParseChars(cfg.Chars)
	if len(focus) == 0 {
		focus = TopCharsByFrequency(charAggsAll, defaultFocusChars)
	}
	perSession, err := st.ListCharStatsForSessions(ctx, allIDs, focus)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		Summary:          Summarize(sessions),
		WindowSessionIDs: windowIDs,
		CharAggsAll:      charAggsAll,
		CharAggsWindow:   charAggsWindow,
		FocusChars:       focus,
		PerSessionChars:  perSession,
	}, nil
}

// RenderReport prints the whole report as plain text for non-interactive
// output.
func RenderReport(w io.Writer, r Report, window int, opts PlotOptions) error {
	if len(r.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.CharAggsAll); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Sessions, window, opts); err != nil {
		return err
	}
	return RenderCharCurves(w, r.Sessions, r.PerSessionChars, r.FocusChars, window, opts)
}

// ParseChars splits a comma separated character list. "space" names the space key.
func ParseChars(list string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "space") {
			part = " "
		}
		if seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
