package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wpmhero/internal/config"
	"github.com/verte-zerg/wpmhero/internal/export"
	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/remote"
	"github.com/verte-zerg/wpmhero/internal/stats"
	"github.com/verte-zerg/wpmhero/internal/statsui"
)

const defaultCurveWindow = 20

var (
	statsLang        string
	statsSince       string
	statsLast        int
	statsDuration    int
	statsCurveWindow int
	statsChars       string
	statsText        bool

	exportFormat string
	exportOutput string
	exportFull   bool

	boardDuration int
	boardLocal    bool
)

func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsDuration, "duration", 0, "only attempts of this length in seconds")
}

func historyConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Lang:        statsLang,
		Last:        statsLast,
		Duration:    statsDuration,
		CurveWindow: statsCurveWindow,
		Chars:       statsChars,
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 || cfg.Duration < 0 {
		return cfg, fmt.Errorf("--last and --duration must be >= 0")
	}
	return cfg, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addHistoryFlags(cmd)
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsChars, "char", "", "comma separated characters for per-char curves")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a plain text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig()
	if err != nil {
		return err
	}
	if cfg.CurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	st, closeStore, err := openStore(config.DefaultDBPath())
	if err != nil {
		return err
	}
	defer closeStore()

	if statsText {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.RenderReport(cmd.OutOrStdout(), report, cfg.CurveWindow, stats.PlotOptions{})
	}

	m := statsui.NewModel(st, leaderboard.NewStoreBoard(st), cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export session history as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	addHistoryFlags(cmd)
	cmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&exportFull, "full", false, "include keypress and snapshot logs for every session")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	cfg, err := historyConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(config.DefaultDBPath())
	if err != nil {
		return err
	}
	defer closeStore()

	doc, err := export.Build(cmd.Context(), st, cfg, time.Now(), export.Options{Full: exportFull})
	if err != nil {
		return err
	}
	if exportOutput == "" {
		return export.Write(cmd.OutOrStdout(), format, doc)
	}
	file, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	if err := export.Write(file, format, doc); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", exportOutput, err)
	}
	logErrf("Exported %d sessions to %s\n", len(doc.Sessions), exportOutput)
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top results for a duration",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().IntVar(&boardDuration, "duration", leaderboard.DefaultDuration, "attempt length in seconds")
	cmd.Flags().BoolVar(&boardLocal, "local", false, "rank local results even when a sync server is configured")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	if boardDuration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	var entries []model.LeaderboardEntry
	if fileCfg.Sync.Enabled() && !boardLocal {
		entries, err = remote.NewClient(fileCfg.Sync.URL, fileCfg.Sync.Token).Leaderboard(ctx, boardDuration)
		if err != nil {
			return fmt.Errorf("failed to fetch leaderboard: %w", err)
		}
	} else {
		st, closeStore, err := openStore(config.DefaultDBPath())
		if err != nil {
			return err
		}
		defer closeStore()
		entries, err = leaderboard.NewStoreBoard(st).Top(ctx, boardDuration, leaderboard.MaxEntries)
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}
	}
	return stats.RenderLeaderboard(cmd.OutOrStdout(), boardDuration, entries)
}
