// Package export writes stored practice history as JSON or YAML.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/store"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use json or yaml)", s)
	}
}

// Document is the exported history.
type Document struct {
	ExportedAt time.Time                `json:"exportedAt" yaml:"exported_at"`
	Filters    Filters                  `json:"filters" yaml:"filters"`
	Sessions   []model.SessionAggregate `json:"sessions" yaml:"sessions"`
	Chars      []model.CharAggregate    `json:"chars" yaml:"chars"`
	// Results carries the stored keypress and snapshot logs, one per
	// session in the same order. Only set for full exports.
	Results []model.SessionResult `json:"results,omitempty" yaml:"results,omitempty"`
}

// Options tunes what Build loads.
type Options struct {
	// Full adds every session's complete stored result.
	Full bool
}

// Filters records what the export was restricted to.
type Filters struct {
	Lang     string     `json:"lang,omitempty" yaml:"lang,omitempty"`
	Since    *time.Time `json:"since,omitempty" yaml:"since,omitempty"`
	Last     int        `json:"last,omitempty" yaml:"last,omitempty"`
	Duration int        `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Build loads sessions and their character totals for cfg.
func Build(ctx context.Context, st *store.Store, cfg model.StatsConfig, now time.Time, opts Options) (Document, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Document{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	chars, err := st.ListCharAggregatesForSessions(ctx, ids)
	if err != nil {
		return Document{}, fmt.Errorf("failed to load char stats: %w", err)
	}
	var results []model.SessionResult
	if opts.Full {
		results = make([]model.SessionResult, 0, len(ids))
		for _, id := range ids {
			res, err := st.GetResult(ctx, id)
			if err != nil {
				return Document{}, fmt.Errorf("failed to load session %d: %w", id, err)
			}
			results = append(results, res)
		}
	}
	if sessions == nil {
		sessions = []model.SessionAggregate{}
	}
	if chars == nil {
		chars = []model.CharAggregate{}
	}
	return Document{
		ExportedAt: now.UTC(),
		Filters:    Filters{Lang: cfg.Lang, Since: cfg.Since, Last: cfg.Last, Duration: cfg.Duration},
		Sessions:   sessions,
		Chars:      chars,
		Results:    results,
	}, nil
}

// Write encodes doc to w.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
