package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/juststeveking/lodestone/internal/status"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Always update window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
	}

	// Handle form updates if form is active
	if m.showForm {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
			m.showForm = false
			m.form = nil
			return m, nil
		}

		// poll results, timers and ticks keep flowing while the form is open
		switch msg.(type) {
		case snapshotMsg, clipboardMsg, copiedResetMsg, spinner.TickMsg, tickMsg:
			return m.updateBackground(msg)
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		switch m.form.State {
		case huh.StateCompleted:
			m.showForm = false
			m.form = nil
			port, _ := strconv.Atoi(strings.TrimSpace(m.formData.Port))
			cmd := m.switchTarget(strings.TrimSpace(m.formData.Host), port)
			return m, cmd
		case huh.StateAborted:
			m.showForm = false
			m.form = nil
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.poller.Store().Unsubscribe(m.updates)
			m.poller.Stop()
			return m, tea.Quit
		case "c":
			return m, copyAddress(m.copyFn, m.address())
		case "r":
			m.poller.Refresh()
		case "e":
			m.showForm = true
			m.initEditForm()
			return m, m.form.Init()
		}
		return m, nil
	}

	return m.updateBackground(msg)
}

// updateBackground handles the messages that arrive whether or not the form is open
func (m Model) updateBackground(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		return m.handleSnapshot(msg)

	case clipboardMsg:
		m.clipboardMsg = msg.message
		m.clipboardErr = !msg.success
		if !msg.success {
			m.logger.Warn("clipboard write failed", "message", msg.message)
			m.copied = false
			return m, nil
		}
		m.copyGen++
		m.copied = true
		gen := m.copyGen
		return m, tea.Tick(m.copiedFor, func(time.Time) tea.Msg {
			return copiedResetMsg{gen: gen}
		})

	case copiedResetMsg:
		// a newer copy restarted the window
		if msg.gen == m.copyGen {
			m.copied = false
			m.clipboardMsg = ""
		}

	case spinner.TickMsg:
		if !m.snapshot.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m, doTick()
	}

	return m, nil
}

// handleSnapshot applies a store update from the current session
func (m Model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.session != m.session || !msg.ok {
		return m, nil
	}

	// an older result that overtook a newer one in the channel
	if msg.snap.Seq <= m.snapshot.Seq {
		return m, waitForSnapshot(m.session, m.updates)
	}

	if m.notifier != nil {
		m.notifier.NotifyStatusChange(m.snapshot, msg.snap)
	}
	m.snapshot = msg.snap

	return m, waitForSnapshot(m.session, m.updates)
}

// switchTarget saves the new address and replaces the poller, starting a new
// session that shows the loading state until its first poll resolves.
func (m *Model) switchTarget(host string, port int) tea.Cmd {
	if host == m.cfg.Server.Host && port == m.cfg.Server.Port {
		return nil
	}

	next := *m.cfg
	next.Server.Host = host
	next.Server.Port = port

	p, err := m.newPoller(&next, m.logger)
	if err != nil {
		m.clipboardMsg = fmt.Sprintf("Invalid server: %v", err)
		m.clipboardErr = true
		return nil
	}

	if err := m.saveServer(host, port); err != nil {
		m.logger.Error("failed to save config", "error", err)
	}

	m.poller.Store().Unsubscribe(m.updates)
	m.poller.Stop()

	*m.cfg = next
	m.poller = p
	m.session++
	m.updates = p.Store().Subscribe()
	m.snapshot = p.Store().Snapshot()
	m.clipboardMsg = ""
	m.clipboardErr = false

	p.Start(m.parent)

	m.logger.Info("switched server", "host", host, "port", port)

	return tea.Batch(waitForSnapshot(m.session, m.updates), m.spinner.Tick)
}

// initEditForm initializes the form for changing the game server address
func (m *Model) initEditForm() {
	m.formData = &FormData{
		Host: m.cfg.Server.Host,
		Port: strconv.Itoa(m.cfg.Server.Port),
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server Host").
				Value(&m.formData.Host).
				Validate(validateHost),
			huh.NewInput().
				Title("Server Port").
				Value(&m.formData.Port).
				Validate(validatePort),
		).Title("Game Server (Esc to cancel)"),
	).WithTheme(huh.ThemeCatppuccin()).WithWidth(60).WithShowHelp(true)
}

func validateHost(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("host is required")
	}
	if strings.ContainsAny(s, " /") {
		return errors.New("host must not contain spaces or slashes")
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("port must be a number")
	}
	if port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

// address returns the host:port players connect to
func (m Model) address() string {
	return status.Address(m.cfg.Server.Host, m.cfg.Server.Port)
}
