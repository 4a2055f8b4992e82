// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/wpmhero/internal/generator"
	"github.com/verte-zerg/wpmhero/internal/identity"
	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/results"
	"github.com/verte-zerg/wpmhero/internal/session"
	statsPkg "github.com/verte-zerg/wpmhero/internal/stats"
	"github.com/verte-zerg/wpmhero/internal/store"
)

const publishTimeout = 15 * time.Second

type syncState int

const (
	syncIdle syncState = iota
	syncPending
	syncDone
	syncFailed
)

type tickMsg struct {
	attempt int
}

type publishedMsg struct {
	err error
}

// Options wires the typing UI to its collaborators. Store, Publisher and
// Identity may be nil.
type Options struct {
	Config    model.Config
	Store     *store.Store
	Generator *generator.Generator
	Words     []string
	PunctSet  []rune
	WeakSet   map[rune]struct{}
	Publisher results.Publisher
	Identity  identity.Provider
	Now       func() time.Time
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config    model.Config
	store     *store.Store
	gen       *generator.Generator
	words     []string
	punctSet  []rune
	weakSet   map[rune]struct{}
	publisher results.Publisher
	identity  identity.Provider
	now       func() time.Time
	tick      func(attempt int) tea.Cmd

	keys keyMap
	bar  progress.Model
	sess *session.Session

	width  int
	height int

	// attempt increments on every Start so ticks from earlier attempts are dropped.
	attempt   int
	published int
	epoch     time.Time

	sync    syncState
	syncErr error

	lastWPM int
	lastAcc int
	hasLast bool
	allWPM  float64
	allAcc  float64

	weakNoticePrinted bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	gen := opts.Generator
	if gen == nil {
		gen = generator.New()
	}
	m := &Model{
		config:    opts.Config,
		store:     opts.Store,
		gen:       gen,
		words:     opts.Words,
		punctSet:  opts.PunctSet,
		weakSet:   opts.WeakSet,
		publisher: opts.Publisher,
		identity:  opts.Identity,
		now:       now,
		tick:      tickCmd,
		keys:      defaultKeyMap(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		sess:      session.New(opts.Config.Duration),
	}
	m.newText()
	m.loadFooterStats()
	return m
}

// Session exposes the underlying state machine.
func (m *Model) Session() *session.Session {
	return m.sess
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(m.contentWidth(), 1)
		return m, nil
	case tickMsg:
		if msg.attempt != m.attempt || !m.sess.Tick() {
			return m, nil
		}
		if m.sess.Phase() == session.PhaseCompleted {
			return m, m.complete()
		}
		return m, m.tick(m.attempt)
	case publishedMsg:
		m.handlePublished(msg.err)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.NewText):
		m.newText()
		return nil
	case key.Matches(msg, m.keys.Reset):
		m.sess.Reset()
		return nil
	case key.Matches(msg, m.keys.Duration):
		m.cycleDuration()
		return nil
	case key.Matches(msg, m.keys.Backspace):
		m.sess.Backspace()
		return nil
	}
	switch msg.Type {
	case tea.KeySpace:
		return m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		return m.handleRunes(msg.Runes)
	default:
		return nil
	}
}

// handleRunes feeds typed runes to the session. The first rune of an idle
// session starts the attempt and the clock.
func (m *Model) handleRunes(runes []rune) tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range runes {
		switch m.sess.Phase() {
		case session.PhaseCompleted:
			return tea.Batch(cmds...)
		case session.PhaseIdle:
			if !m.sess.Start() {
				return tea.Batch(cmds...)
			}
			m.attempt++
			m.epoch = m.now()
			cmds = append(cmds, m.tick(m.attempt))
		}
		m.sess.InputCharacter(r, m.now().Sub(m.epoch).Milliseconds())
		if m.sess.Phase() == session.PhaseCompleted {
			cmds = append(cmds, m.complete())
			break
		}
	}
	return tea.Batch(cmds...)
}

// complete builds the result for the current attempt and hands it to the
// publisher exactly once. Attempts without keypresses are not published.
func (m *Model) complete() tea.Cmd {
	if m.published == m.attempt {
		return nil
	}
	m.published = m.attempt
	res, ok := m.sess.Result()
	if !ok || len(res.Keypresses) == 0 {
		return nil
	}
	res.ID = uuid.NewString()
	res.Lang = m.config.Lang
	res.StartedAt = m.epoch
	res.EndedAt = m.now()
	if m.identity != nil {
		who := m.identity.Current()
		res.UserID = who.UserID
		res.UserName = who.DisplayName
	}
	if m.publisher == nil {
		return nil
	}
	m.sync = syncPending
	m.syncErr = nil
	pub := m.publisher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		return publishedMsg{err: pub.Publish(ctx, res)}
	}
}

func (m *Model) handlePublished(err error) {
	if err != nil {
		m.sync = syncFailed
		m.syncErr = err
		return
	}
	m.sync = syncDone
	m.syncErr = nil
	m.loadFooterStats()
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) newText() {
	m.sess.SetText(m.generateText())
}

func (m *Model) generateText() []string {
	count := m.config.Words
	if count <= 0 {
		count = 50
	}
	opts := generator.Options{
		Count:    count,
		CapsPct:  m.config.CapsPct,
		PunctPct: m.config.PunctPct,
		PunctSet: m.punctSet,
	}
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		return m.gen.GenerateWeighted(m.words, opts, m.weakSet, m.config.WeakFactor)
	}
	return m.gen.Generate(m.words, opts)
}

// cycleDuration moves to the next leaderboard preset, wrapping around.
func (m *Model) cycleDuration() {
	presets := leaderboard.Presets
	next := presets[0]
	if idx := slices.Index(presets, m.sess.Duration()); idx >= 0 && idx+1 < len(presets) {
		next = presets[idx+1]
	} else if idx < 0 {
		for _, p := range presets {
			if p > m.sess.Duration() {
				next = p
				break
			}
		}
	}
	m.config.Duration = next
	m.sess.SetDuration(next)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.sess.Phase() == session.PhaseCompleted {
		return m.place(m.renderResult(), "")
	}
	target := m.sess.Target()
	if len(target) == 0 {
		return ""
	}
	cursorIndex := -1
	if m.sess.Caret() < len(target) {
		cursorIndex = m.sess.Caret()
	}
	styledRunes := buildStyledRunes(target, m.sess.Slots(), cursorIndex)
	if m.width == 0 || m.height == 0 {
		return m.renderStatus() + "\n\n" + renderStyledRunes(styledRunes)
	}
	contentWidth := m.contentWidth()
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatus(),
		m.bar.ViewAs(m.remainingFraction()),
		"",
		lipgloss.NewStyle().Width(contentWidth).Render(wrapped),
	)
	return m.place(content, m.renderFooter())
}

func (m *Model) place(content, footer string) string {
	if m.width == 0 || m.height == 0 {
		if footer == "" {
			return content
		}
		return content + "\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) remainingFraction() float64 {
	if m.sess.Duration() == 0 {
		return 0
	}
	return float64(m.sess.Remaining()) / float64(m.sess.Duration())
}

func (m *Model) renderStatus() string {
	snap := m.sess.Snapshot()
	return statusStyle.Render(fmt.Sprintf("%s  %d wpm  %d%% acc  %d%% cons",
		statsPkg.FormatSeconds(m.sess.Remaining()), snap.WPM, snap.Accuracy, snap.Consistency))
}

func (m *Model) renderResult() string {
	final, _ := m.sess.Final()
	res, _ := m.sess.Result()
	wpm, raw := statsPkg.SnapshotSeries(m.sess.History())
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%d wpm", final.WPM)),
		"",
		fmt.Sprintf("raw %d  ·  accuracy %d%%  ·  consistency %d%%", final.RawWPM, final.Accuracy, final.Consistency),
		fmt.Sprintf("correct %d  ·  incorrect %d  ·  errors %d  ·  time %s",
			res.CharactersCorrect, res.CharactersIncorrect, final.Errors, statsPkg.FormatSeconds(res.ElapsedSeconds)),
	}
	if len(wpm) > 1 {
		lines = append(lines, "", "wpm "+statsPkg.Sparkline(wpm), "raw "+statsPkg.Sparkline(raw))
	}
	lines = append(lines, "")
	if s := m.syncLabel(); s != "" {
		lines = append(lines, footerStyle.Render(s))
	}
	lines = append(lines, footerStyle.Render(m.keys.helpLine()))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if len(m.sess.Target()) == 0 {
		return ""
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", m.sess.Progress()),
		fmt.Sprintf("%ds", m.sess.Duration()),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc))
	}
	if m.allWPM > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc))
	}
	if s := m.syncLabel(); s != "" {
		segments = append(segments, s)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) syncLabel() string {
	switch m.sync {
	case syncPending:
		return "saving…"
	case syncDone:
		return "saved"
	case syncFailed:
		return fmt.Sprintf("sync failed: %v", m.syncErr)
	default:
		return ""
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	sessions, err := m.store.ListSessions(ctx, model.StatsConfig{Lang: m.config.Lang})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true

	summary := statsPkg.Summarize(sessions)
	m.allWPM = summary.AvgWPM
	m.allAcc = summary.AvgAccuracy
}

func (m *Model) refreshWeakSet() {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	aggs, err := m.store.GetWeakChars(ctx, m.config.WeakWindow, m.config.Lang)
	if err != nil {
		logErrf("failed to load weak chars: %v\n", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticePrinted {
			logErrln("no stats available for weak-char focus yet; using normal generator")
			m.weakNoticePrinted = true
		}
		m.weakSet = map[rune]struct{}{}
		return
	}
	m.weakSet = statsPkg.SelectWeakChars(aggs, m.config.WeakTop)
}

func tickCmd(attempt int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{attempt: attempt}
	})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
