package ui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oxprint/oxdash/internal/state"
)

// StatusSource is the poller surface the dashboard consumes.
type StatusSource interface {
	Snapshot() state.Snapshot
	RefreshNow() bool
}

// PrefStore persists UI preferences.
type PrefStore interface {
	Set(key, value string) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Status    StatusSource
	Prefs     PrefStore
	ThemeKey  string
	ThemeName string
	BaseURL   string
	Tick      time.Duration
}

const defaultTick = 250 * time.Millisecond

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	status   StatusSource
	prefs    PrefStore
	themeKey string
	baseURL  string
	tick     time.Duration
	now      func() time.Time

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	ready   bool

	snapshot state.Snapshot
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		status:   opts.Status,
		prefs:    opts.Prefs,
		themeKey: opts.ThemeKey,
		baseURL:  opts.BaseURL,
		tick:     tick,
		now:      time.Now,
		theme:    GetTheme(opts.ThemeName),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
	}
	if m.status != nil {
		m.setSnapshot(m.status.Snapshot())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		m.spinner.Tick,
	}
	if m.status != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.status))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		var cmds []tea.Cmd
		if m.status != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.status))
		}
		cmds = append(cmds, tickCmd(m.tick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.setSnapshot(state.Snapshot(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		// Disabled while a check is in flight, so a held key cannot stack
		// manual polls.
		if m.status != nil && m.status.RefreshNow() {
			m.setSnapshot(m.status.Snapshot())
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefs != nil && m.themeKey != "" {
			if err := m.prefs.Set(m.themeKey, m.theme.Name); err != nil {
				log.Printf("save theme: %v", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m *Model) setSnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.keys.Refresh.SetEnabled(!snap.InFlight())
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.renderSystemStatus(),
		"",
		m.help.View(m.keys),
	)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(src StatusSource) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(src.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
