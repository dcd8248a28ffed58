package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/juststeveking/lodestone/internal/config"
	"github.com/juststeveking/lodestone/internal/monitor"
	"github.com/juststeveking/lodestone/internal/notify"
	"github.com/juststeveking/lodestone/internal/store"
)

// Model represents the TUI application state
type Model struct {
	parent   context.Context
	cfg      *config.Config
	poller   *monitor.Poller
	notifier *notify.Notifier
	logger   *slog.Logger

	// session increments whenever the poller is replaced, so snapshots
	// still queued from the old poller can be told apart.
	session  int
	updates  <-chan store.Snapshot
	snapshot store.Snapshot

	width    int
	height   int
	quitting bool
	spinner  spinner.Model

	copied       bool
	copyGen      int
	copiedFor    time.Duration
	clipboardMsg string
	clipboardErr bool

	// Form state
	form     *huh.Form
	showForm bool
	formData *FormData

	copyFn     func(string) error
	saveServer func(host string, port int) error
	newPoller  func(*config.Config, *slog.Logger) (*monitor.Poller, error)
}

// saveServer writes a new host and port to the config file
func saveServer(host string, port int) error {
	return config.UpdateConfig(func(c *config.Config) {
		c.Server.Host = host
		c.Server.Port = port
	})
}

// FormData holds the data for the edit server form
type FormData struct {
	Host string
	Port string
}

// NewModel creates a new TUI model around a started poller.
// The model owns the poller from here on and stops it on quit.
func NewModel(ctx context.Context, cfg *config.Config, p *monitor.Poller, n *notify.Notifier, logger *slog.Logger) Model {
	copiedFor := 2 * time.Second
	if d, err := cfg.Durations(); err == nil {
		copiedFor = d.CopiedDuration
	}

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(colorChecking)

	return Model{
		parent:     ctx,
		cfg:        cfg,
		poller:     p,
		notifier:   n,
		logger:     logger,
		updates:    p.Store().Subscribe(),
		snapshot:   p.Store().Snapshot(),
		spinner:    s,
		copiedFor:  copiedFor,
		copyFn:     clipboard.WriteAll,
		saveServer: saveServer,
		newPoller:  monitor.NewPoller,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshot(m.session, m.updates),
		m.spinner.Tick,
		doTick(),
	)
}

// Poller returns the poller currently driving the widget
func (m Model) Poller() *monitor.Poller {
	return m.poller
}

// snapshotMsg wraps a store update for Bubble Tea
type snapshotMsg struct {
	session int
	snap    store.Snapshot
	ok      bool
}

// waitForSnapshot listens for the next applied poll result
func waitForSnapshot(session int, ch <-chan store.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		return snapshotMsg{session: session, snap: snap, ok: ok}
	}
}

// tickMsg is sent on every tick
type tickMsg time.Time

// doTick returns a command that waits for the next tick
func doTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// clipboardMsg is sent when clipboard operation completes
type clipboardMsg struct {
	success bool
	message string
}

// copiedResetMsg ends the "copied" indication started by copy gen
type copiedResetMsg struct {
	gen int
}

// copyAddress writes the server address to the clipboard
func copyAddress(copyFn func(string) error, address string) tea.Cmd {
	return func() tea.Msg {
		if err := copyFn(address); err != nil {
			return clipboardMsg{success: false, message: "Copy failed: " + err.Error()}
		}
		return clipboardMsg{success: true, message: "Address copied to clipboard"}
	}
}
