package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oxprint/oxdash/internal/state"
)

const (
	dashboardTitle    = "OxPrint Dashboard"
	dashboardSubtitle = "Modern 3D Printer Management System"
	minCardWidth      = 40
)

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(dashboardTitle),
		styles.Subtitle.Render(dashboardSubtitle),
	)
}

// renderSystemStatus renders the backend connection card.
func (m Model) renderSystemStatus() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	dot := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.IndicatorColor(snap.State))).
		Render("●")
	labelStyle := styles.DangerText
	if snap.State == state.Connected {
		labelStyle = styles.SuccessText
	}
	status := fmt.Sprintf("%s %s %s", dot, styles.Label.Render("Backend:"), labelStyle.Render(snap.State.Label()))

	left := lipgloss.JoinVertical(lipgloss.Left, status, m.renderDetails())
	right := m.renderRefreshControl()

	width := m.cardWidth()
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 2 {
		gap = 2
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitle.Render("System Status"),
		row,
	)
	return styles.Card.Width(width).Render(body)
}

func (m Model) renderDetails() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var lines []string
	if m.baseURL != "" {
		lines = append(lines, styles.MutedText.Render("API      ")+styles.Text.Render(m.baseURL))
	}
	checked := "never"
	if !snap.LastUpdated.IsZero() {
		checked = humanizeAge(m.now().Sub(snap.LastUpdated))
	}
	lines = append(lines, styles.MutedText.Render("Checked  ")+styles.Text.Render(checked))
	if snap.HasResult {
		if ts := snap.LastResult.ParsedTimestamp(); !ts.IsZero() {
			lines = append(lines, styles.MutedText.Render("Server   ")+styles.Text.Render(ts.Local().Format(time.DateTime)))
		}
	}
	if snap.LastError != nil && snap.State != state.Checking {
		lines = append(lines, styles.FaintText.Render(truncate(snap.LastError.Error(), m.cardWidth()-16)))
	}
	return strings.Join(lines, "\n")
}

// renderRefreshControl shows the refresh button, dimmed while a check is in
// flight.
func (m Model) renderRefreshControl() string {
	styles := m.theme.Styles()
	if m.snapshot.InFlight() {
		return styles.ButtonOff.Render(m.spinner.View() + " Checking...")
	}
	return styles.Button.Render("Refresh")
}

func (m Model) cardWidth() int {
	width := m.width - 2
	if width < minCardWidth {
		width = minCardWidth
	}
	return width
}

func humanizeAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
