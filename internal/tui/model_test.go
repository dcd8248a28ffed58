package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/juststeveking/lodestone/internal/config"
	"github.com/juststeveking/lodestone/internal/monitor"
	"github.com/juststeveking/lodestone/internal/status"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubChecker struct {
	outcome status.Outcome
}

func (s stubChecker) Check(ctx context.Context, host string, port int) status.Outcome {
	return s.outcome
}

func welcomeStatus() status.ServerStatus {
	return status.ServerStatus{
		Online:  true,
		Players: status.Players{Online: 42, Max: 100},
		Version: "1.20.1",
		MOTD:    "Welcome",
	}
}

// newTestModel builds a model around an unstarted poller so tests drive the
// store directly.
func newTestModel(t *testing.T) (Model, *[]string, *[]*config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "mc.example.org"

	p := monitor.New(stubChecker{outcome: status.Success(welcomeStatus())}, cfg.Server.Host, cfg.Server.Port, time.Hour, testLogger())

	m := NewModel(context.Background(), cfg, p, nil, testLogger())

	var copied []string
	m.copyFn = func(s string) error {
		copied = append(copied, s)
		return nil
	}

	var saved []*config.Config
	m.saveServer = func(host string, port int) error {
		saved = append(saved, &config.Config{Server: config.Server{Host: host, Port: port}})
		return nil
	}
	m.newPoller = func(c *config.Config, logger *slog.Logger) (*monitor.Poller, error) {
		return monitor.New(stubChecker{outcome: status.Success(welcomeStatus())}, c.Server.Host, c.Server.Port, time.Hour, logger), nil
	}

	return m, &copied, &saved
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// apply pushes an outcome through the store and feeds the snapshot to the model
func apply(t *testing.T, m Model, seq uint64, outcome status.Outcome) Model {
	t.Helper()
	if !m.poller.Store().Apply(seq, outcome) {
		t.Fatalf("store rejected seq %d", seq)
	}
	updated, _ := m.Update(snapshotMsg{session: m.session, snap: m.poller.Store().Snapshot(), ok: true})
	return updated.(Model)
}

func TestLoadingView(t *testing.T) {
	m, _, _ := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "Fetching server status") {
		t.Errorf("Expected loading text, got:\n%s", view)
	}
	if !strings.Contains(view, "PROXYCRAFT") {
		t.Errorf("Expected server name in header, got:\n%s", view)
	}
}

func TestOnlineView(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = apply(t, m, 1, status.Success(welcomeStatus()))

	if m.snapshot.Loading {
		t.Fatal("Expected loading to clear after first snapshot")
	}

	view := m.View()
	for _, want := range []string{"● Online", "1.20.1", "42 / 100", "42%", "Welcome", "Updated"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestOfflineView(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = apply(t, m, 1, status.Failure(status.KindTimeout, status.ErrTimeout))

	view := m.View()
	for _, want := range []string{"● Offline", "Unavailable", "0 / 0", "0%", "mc.example.org", "last poll: timeout"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestSecondSnapshotReplacesFirst(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = apply(t, m, 1, status.Success(welcomeStatus()))

	second := welcomeStatus()
	second.Players.Online = 7
	second.MOTD = "Night"
	m = apply(t, m, 2, status.Success(second))

	if m.snapshot.Status != second {
		t.Errorf("Expected %+v, got %+v", second, m.snapshot.Status)
	}
	if strings.Contains(m.View(), "Welcome") {
		t.Error("Expected first MOTD to be fully replaced")
	}
}

func TestStaleSessionSnapshotIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, cmd := m.Update(snapshotMsg{session: m.session + 1, snap: m.poller.Store().Snapshot(), ok: true})
	m = updated.(Model)
	if cmd != nil {
		t.Error("Expected no follow-up command for a foreign session")
	}

	updated, cmd = m.Update(snapshotMsg{session: m.session, ok: false})
	if cmd != nil {
		t.Error("Expected closed subscription to stop listening")
	}
	if !updated.(Model).snapshot.Loading {
		t.Error("Expected snapshot to be untouched")
	}
}

func TestCopyAddress(t *testing.T) {
	m, copied, _ := newTestModel(t)

	_, cmd := m.Update(key("c"))
	if cmd == nil {
		t.Fatal("Expected copy command")
	}
	msg := cmd()

	if len(*copied) != 1 || (*copied)[0] != "mc.example.org" {
		t.Fatalf("Expected address copied, got %v", *copied)
	}

	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if !m.copied {
		t.Fatal("Expected copied flag after copy")
	}
	if cmd == nil {
		t.Error("Expected reset timer command")
	}
	if !strings.Contains(m.View(), "Copied!") {
		t.Error("Expected copied indication in view")
	}

	updated, _ = m.Update(copiedResetMsg{gen: m.copyGen})
	m = updated.(Model)
	if m.copied {
		t.Error("Expected copied flag to reset")
	}
}

func TestCopyAgainRestartsWindow(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, _ := m.Update(clipboardMsg{success: true})
	m = updated.(Model)
	first := m.copyGen

	updated, _ = m.Update(clipboardMsg{success: true})
	m = updated.(Model)

	// the first timer firing must not cut the second window short
	updated, _ = m.Update(copiedResetMsg{gen: first})
	m = updated.(Model)
	if !m.copied {
		t.Error("Expected copied flag to survive an outdated reset")
	}

	updated, _ = m.Update(copiedResetMsg{gen: m.copyGen})
	if updated.(Model).copied {
		t.Error("Expected latest reset to clear copied flag")
	}
}

func TestFormKeepsTimersRunning(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, _ := m.Update(clipboardMsg{success: true})
	m = updated.(Model)
	gen := m.copyGen

	updated, _ = m.Update(key("e"))
	m = updated.(Model)
	if !m.showForm {
		t.Fatal("Expected edit form to open")
	}

	// the copied window ends on time even with the form open
	updated, _ = m.Update(copiedResetMsg{gen: gen})
	m = updated.(Model)
	if m.copied {
		t.Error("Expected copied flag to reset while the form is open")
	}

	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	if cmd == nil {
		t.Error("Expected clock tick to be re-armed while the form is open")
	}

	updated, cmd = m.Update(m.spinner.Tick())
	m = updated.(Model)
	if cmd == nil {
		t.Error("Expected loading spinner to keep ticking while the form is open")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.showForm {
		t.Error("Expected esc to close the form")
	}
	if m.copied {
		t.Error("Expected copied flag to stay reset after closing the form")
	}
}

func TestOlderSnapshotIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)
	st := m.poller.Store()

	if !st.Apply(1, status.Success(welcomeStatus())) {
		t.Fatal("store rejected seq 1")
	}
	older := st.Snapshot()

	newer := welcomeStatus()
	newer.Players.Online = 7
	m = apply(t, m, 2, status.Success(newer))

	// seq 1 delivered after seq 2 must not roll the widget back
	updated, cmd := m.Update(snapshotMsg{session: m.session, snap: older, ok: true})
	m = updated.(Model)
	if m.snapshot.Seq != 2 || m.snapshot.Status.Players.Online != 7 {
		t.Errorf("Expected seq 2 to stay displayed, got seq %d with %d players", m.snapshot.Seq, m.snapshot.Status.Players.Online)
	}
	if cmd == nil {
		t.Error("Expected to keep listening after an older snapshot")
	}
}

func TestCopyFailure(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.copyFn = func(string) error { return errors.New("no clipboard") }

	_, cmd := m.Update(key("c"))
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	if m.copied {
		t.Error("Expected copied flag to stay false on failure")
	}
	if !strings.Contains(m.View(), "no clipboard") {
		t.Errorf("Expected clipboard error in view, got:\n%s", m.View())
	}
}

func TestQuitStopsPoller(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if updated.(Model).View() != "" {
		t.Error("Expected empty view after quit")
	}
	if m.poller.State() != monitor.StateStopped {
		t.Errorf("Expected poller stopped, got %s", m.poller.State())
	}
}

func TestSwitchTarget(t *testing.T) {
	m, _, saved := newTestModel(t)
	m = apply(t, m, 1, status.Success(welcomeStatus()))
	old := m.poller

	cmd := m.switchTarget("play.example.net", 25570)
	if cmd == nil {
		t.Fatal("Expected commands for the new session")
	}
	defer m.poller.Stop()

	if old.State() != monitor.StateStopped {
		t.Errorf("Expected old poller stopped, got %s", old.State())
	}
	if m.poller == old {
		t.Fatal("Expected a new poller")
	}
	if m.session != 1 {
		t.Errorf("Expected session 1, got %d", m.session)
	}
	if !m.snapshot.Loading {
		t.Error("Expected a new session to start loading")
	}
	if m.cfg.Server.Host != "play.example.net" || m.cfg.Server.Port != 25570 {
		t.Errorf("Expected config updated, got %s:%d", m.cfg.Server.Host, m.cfg.Server.Port)
	}
	if len(*saved) != 1 {
		t.Errorf("Expected config saved once, got %d", len(*saved))
	}
	if m.address() != "play.example.net:25570" {
		t.Errorf("Unexpected address %s", m.address())
	}

	// unchanged target is a no-op
	if cmd := m.switchTarget("play.example.net", 25570); cmd != nil {
		t.Error("Expected no-op for unchanged target")
	}
}

func TestValidators(t *testing.T) {
	if validateHost("") == nil || validateHost("a b") == nil {
		t.Error("Expected invalid hosts to be rejected")
	}
	if err := validateHost("mc.example.org"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	for _, bad := range []string{"", "abc", "0", "65536"} {
		if validatePort(bad) == nil {
			t.Errorf("Expected port %q to be rejected", bad)
		}
	}
	if err := validatePort("25565"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
