package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/juststeveking/lodestone/internal/status"
)

const barCells = 30

var (
	colorAccent    = lipgloss.Color("#04D9FF") // Neon Cyan
	colorHealthy   = lipgloss.Color("#00FF94") // Neon Green
	colorUnhealthy = lipgloss.Color("#FF0055") // Neon Red
	colorChecking  = lipgloss.Color("#FFD700") // Gold
	colorMuted     = lipgloss.Color("#565f89") // Muted Blue
	colorSubtle    = lipgloss.Color("#24283b") // Dark Blue
	colorCard      = lipgloss.Color("#16161e") // Very Dark Blue
	colorText      = lipgloss.Color("#c0caf5") // Light Blue/White

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(colorHealthy).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(colorUnhealthy).
			Bold(true)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorChecking).
			Bold(true)

	// Border color is overridden per status
	baseCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Background(colorCard).
			Padding(0, 1).
			MarginBottom(1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorCard).
			Background(colorAccent).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	motdStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Italic(true)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorUnhealthy)

	barFilledStyle = lipgloss.NewStyle().Foreground(colorAccent)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
)

// View renders the landing widget
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.showForm {
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(1, 2).
				Render(m.form.View()),
		)
	}

	width := m.width
	if width < 40 {
		width = 80
	}
	cardWidth := width - 4
	if cardWidth > 72 {
		cardWidth = 72
	}

	var b strings.Builder

	b.WriteString(m.renderHeader(width))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusCard(cardWidth))
	b.WriteString("\n")
	b.WriteString(m.renderAddress())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter(width))
	b.WriteString("\n")

	return b.String()
}

// renderHeader renders the server name with the live indicator on the right
func (m Model) renderHeader(width int) string {
	var b strings.Builder

	titleRendered := titleStyle.Render(strings.ToUpper(m.cfg.Server.Name))
	indicator := m.statusIndicator()

	gap := width - lipgloss.Width(titleRendered) - lipgloss.Width(indicator) - 2
	if gap < 0 {
		gap = 0
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		titleRendered,
		strings.Repeat(" ", gap),
		indicator,
	))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("━", width)))

	return b.String()
}

// statusIndicator returns the colored dot with its label
func (m Model) statusIndicator() string {
	switch {
	case m.snapshot.Loading:
		return loadingStyle.Render(m.spinner.View() + " Loading")
	case m.snapshot.Status.Online:
		return onlineStyle.Render("● Online")
	default:
		return offlineStyle.Render("● Offline")
	}
}

// renderStatusCard renders the status widget card
func (m Model) renderStatusCard(width int) string {
	var b strings.Builder
	snap := m.snapshot

	var borderColor lipgloss.Color
	switch {
	case snap.Loading:
		borderColor = colorChecking
	case snap.Status.Online:
		borderColor = colorHealthy
	default:
		borderColor = colorUnhealthy
	}

	if snap.Loading {
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), labelStyle.Render("Fetching server status…")))
		b.WriteString("\n")
		b.WriteString(secondaryStyle.Render(snap.Status.MOTD))

		return baseCardStyle.
			Width(width).
			BorderForeground(borderColor).
			Render(b.String())
	}

	s := snap.Status

	// Status line with version badge
	b.WriteString(m.statusIndicator())
	b.WriteString("  ")
	b.WriteString(badgeStyle.Render(s.Version))
	b.WriteString("\n\n")

	// Players
	percent := status.PlayerPercent(s)
	b.WriteString(labelStyle.Render("Players "))
	b.WriteString(fmt.Sprintf("%d / %d", s.Players.Online, s.Players.Max))
	b.WriteString("\n")
	b.WriteString(renderBar(percent, barCells))
	b.WriteString(" ")
	b.WriteString(secondaryStyle.Render(formatPercent(percent)))
	b.WriteString("\n\n")

	// MOTD
	if s.MOTD != "" {
		b.WriteString(motdStyle.Width(width - 4).Render(s.MOTD))
		b.WriteString("\n\n")
	}

	if !snap.UpdatedAt.IsZero() {
		b.WriteString(lipgloss.NewStyle().Foreground(colorMuted).Render("Updated " + humanize.Time(snap.UpdatedAt)))
	}

	return baseCardStyle.
		Width(width).
		BorderForeground(borderColor).
		Render(b.String())
}

// renderAddress renders the address line with the copy control
func (m Model) renderAddress() string {
	line := fmt.Sprintf("%s %s  %s",
		labelStyle.Render("Server IP"),
		lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(m.address()),
		secondaryStyle.Render("[c] Copy"),
	)

	switch {
	case m.copied:
		line += "  " + onlineStyle.Render("✓ Copied!")
	case m.clipboardErr && m.clipboardMsg != "":
		line += "  " + errorStyle.Render(m.clipboardMsg)
	}

	return line
}

// renderFooter renders the status bar with the clock and key help
func (m Model) renderFooter(width int) string {
	footerStyle := lipgloss.NewStyle().
		Foreground(colorMuted).
		BorderTop(true).
		BorderForeground(colorSubtle).
		Width(width).
		PaddingTop(1)

	left := fmt.Sprintf(" %s │ c copy • r refresh • e edit • q quit", time.Now().Format("15:04:05"))

	right := ""
	if !m.snapshot.Loading && m.snapshot.ErrorKind != status.KindNone {
		right = fmt.Sprintf("last poll: %s ", m.snapshot.ErrorKind)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return footerStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// renderBar draws the player ratio bar. The drawing is limited to cells; the
// percentage itself is shown unclamped next to it.
func renderBar(percent float64, cells int) string {
	filled := int(math.Round(percent / 100 * float64(cells)))
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}

	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", cells-filled))
}

// formatPercent formats a ratio for display
func formatPercent(percent float64) string {
	if percent == math.Trunc(percent) {
		return fmt.Sprintf("%.0f%%", percent)
	}
	return fmt.Sprintf("%.1f%%", percent)
}
