package statsui

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/stats"
)

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFilterSummary() string {
	lang := m.cfg.Lang
	if lang == "" {
		lang = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	duration := "any"
	if m.cfg.Duration > 0 {
		duration = fmt.Sprintf("%ds", m.cfg.Duration)
	}
	summary := fmt.Sprintf("Settings: lang=%s  since=%s  last=%s  duration=%s  window=%d", lang, since, last, duration, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	switch m.activeTab {
	case tabCharCurves:
		help = "Nav: left/right  Scroll: up/down  Edit chars: enter  Window: -/=  Settings: /  Quit: q"
	case tabLeaderboard:
		help = "Nav: left/right  Scroll: up/down  Duration: d  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabCharTable {
		switch {
		case len(m.report.Sessions) == 0:
			return fitLines("No sessions found.", m.width, height)
		case len(m.report.CharAggsAll) == 0:
			return fitLines("No character stats found.", m.width, height)
		default:
			return fitLines(tableMutedStyle.Render(m.charTable.View()), m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	s := report.Summary
	sections := []string{renderSummaryCards(s, width)}
	if s.Best != nil && s.Worst != nil {
		sections = append(sections, headerStyle.Render("Best run: "+stats.RunLabel(*s.Best))+"\n"+
			headerStyle.Render("Worst run: "+stats.RunLabel(*s.Worst)))
	}

	var buf bytes.Buffer
	if err := stats.RenderBreakdown(&buf, s.ByDuration); err != nil {
		return fmt.Sprintf("Failed to render breakdown: %v", err)
	}
	if err := stats.RenderRecent(&buf, s.Recent); err != nil {
		return fmt.Sprintf("Failed to render recent runs: %v", err)
	}
	if err := stats.RenderCurves(&buf, report.Sessions, window, plotOptions(width)); err != nil {
		sections = append(sections, fmt.Sprintf("Failed to render curves: %v", err))
	}
	sections = append(sections, buf.String())
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderSummaryCards(s stats.Summary, width int) string {
	cards := []string{
		metricCard("Sessions", strconv.Itoa(s.Sessions)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", s.AvgWPM)),
		metricCard(fmt.Sprintf("Recent Avg (%d)", stats.RecentAverageRuns), fmt.Sprintf("%.1f", s.RecentAvgWPM)),
		metricCard("Best WPM", strconv.Itoa(s.BestWPM)),
		metricCard("Worst WPM", strconv.Itoa(s.WorstWPM)),
		metricCard("Avg Raw", fmt.Sprintf("%.1f", s.AvgRawWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", s.AvgAccuracy)),
		metricCard("Consistency", fmt.Sprintf("%.1f%%", s.AvgConsistency)),
		metricCard("Time Typing", s.TimeTyping.String()),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	rows := make([]string, 0, 3)
	for i := 0; i < len(cards); i += 3 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:i+3]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderCharCurves(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	if len(report.FocusChars) == 0 {
		return "No characters selected. Press Enter to set chars."
	}
	labels := make([]string, len(report.FocusChars))
	for i, ch := range report.FocusChars {
		labels[i] = charLabel(ch)
	}
	header := headerStyle.Render("Chars: " + strings.Join(labels, ", "))
	var buf bytes.Buffer
	if err := stats.RenderCharCurves(&buf, report.Sessions, report.PerSessionChars, report.FocusChars, window, plotOptions(width)); err != nil {
		return fmt.Sprintf("Failed to render character curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func renderLeaderboard(duration int, entries []model.LeaderboardEntry, errMsg string) string {
	if errMsg != "" {
		return errMsg
	}
	var buf bytes.Buffer
	if err := stats.RenderLeaderboard(&buf, duration, entries); err != nil {
		return fmt.Sprintf("Failed to render leaderboard: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func plotOptions(width int) stats.PlotOptions {
	return stats.PlotOptions{Width: stats.PlotWidthFor(width), Height: plotHeight, Color: true}
}

var charColumns = []table.Column{
	{Title: "Char", Width: 7},
	{Title: "Accuracy", Width: 9},
	{Title: "Avg Latency (ms)", Width: 17},
	{Title: "Correct", Width: 7},
	{Title: "Incorrect", Width: 9},
	{Title: "Total", Width: 6},
}

func buildCharTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(charColumns),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(charTableStyles())
	return t
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.Padding(0, 1).PaddingLeft(0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	return styles
}

// charTableRows lists characters by how often they were typed.
func charTableRows(sessions []model.SessionAggregate, aggs []model.CharAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	if len(sessions) == 0 {
		return rows
	}
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Char < sorted[j].Char
		}
		return ti > tj
	})
	for _, agg := range sorted {
		total := agg.Correct + agg.Incorrect
		acc := 0.0
		if total > 0 {
			acc = float64(agg.Correct) / float64(total) * 100
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, table.Row{
			charLabel(agg.Char),
			fmt.Sprintf("%.2f%%", acc),
			fmt.Sprintf("%.1f", lat),
			strconv.Itoa(agg.Correct),
			strconv.Itoa(agg.Incorrect),
			strconv.Itoa(total),
		})
	}
	return rows
}

func charLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	// 2 border + 4 padding
	return max(modalWidth(width)-6, 10)
}
