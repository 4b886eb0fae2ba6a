package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/oxprint/oxdash/internal/state"
)

// Theme defines colors for the dashboard.
type Theme struct {
	Name string

	Background string
	Surface    string
	Border     string
	Text       string
	Muted      string
	Faint      string
	Accent     string
	Success    string
	Warning    string
	Danger     string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	Label       lipgloss.Style
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	SuccessText lipgloss.Style
	DangerText  lipgloss.Style
	Button      lipgloss.Style
	ButtonOff   lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		CardTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),
		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),
		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),
		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(0, 1),
		ButtonOff: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.Faint)).
			Padding(0, 1),
	}
}

// IndicatorColor returns the dot color for a connection state: green only
// when connected, red otherwise.
func (t Theme) IndicatorColor(s state.ConnectionState) string {
	if s == state.Connected {
		return t.Success
	}
	return t.Danger
}

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// Official Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name:       "Dracula",
		Background: "#191A21",
		Surface:    "#282A36",
		Border:     "#44475A",
		Text:       "#F8F8F2",
		Muted:      "#6272A4",
		Faint:      "#44475A",
		Accent:     "#BD93F9",
		Success:    "#50FA7B",
		Warning:    "#FFB86C",
		Danger:     "#FF5555",
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name:       "Slate",
		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		Border:     "#334155", // slate-700
		Text:       "#f1f5f9", // slate-100
		Muted:      "#94a3b8", // slate-400
		Faint:      "#64748b", // slate-500
		Accent:     "#38bdf8", // sky-400
		Success:    "#22c55e", // green-500
		Warning:    "#f59e0b", // amber-500
		Danger:     "#ef4444", // red-500
	}
}
