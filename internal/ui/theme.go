package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StateColors colors workspace state chips: active, hibernated,
	// loading, failed.
	StateColors map[string]string
}

// Styles contains pre-built Lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Banner   lipgloss.Style

	Pane      lipgloss.Style
	PaneFocus lipgloss.Style
	Modal     lipgloss.Style

	stateColors map[string]string
	background  string
	muted       string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		Padding(0, 1)

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Logo: fg(t.Warning).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Banner: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Warning)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 1),

		Pane:      pane,
		PaneFocus: pane.BorderForeground(lipgloss.Color(t.BorderFocus)),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(1, 2),

		stateColors: t.StateColors,
		background:  t.Background,
		muted:       t.Muted,
	}
}

// StateStyle returns the chip style for a workspace state.
func (s Styles) StateStyle(state string) lipgloss.Style {
	color := s.stateColors[state]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
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

func nightfoxTheme() Theme {
	// https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:          "Nightfox",
		Background:    "#131a24",
		Surface:       "#192330",
		SurfaceAlt:    "#212e3f",
		SelectionBg:   "#2b3b51",
		SelectionText: "#cdcecf",
		Border:        "#39506d",
		BorderFocus:   "#719cd6",
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Success:       "#81b29a",
		Warning:       "#dbc074",
		Danger:        "#c94f6d",
		Info:          "#63cdcf",
		StateColors: map[string]string{
			stateActive:     "#81b29a",
			stateHibernated: "#738091",
			stateLoading:    "#63cdcf",
			stateFailed:     "#c94f6d",
		},
	}
}

func kanagawaTheme() Theme {
	// https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:          "Kanagawa",
		Background:    "#16161D",
		Surface:       "#1F1F28",
		SurfaceAlt:    "#2A2A37",
		SelectionBg:   "#2D4F67",
		SelectionText: "#DCD7BA",
		Border:        "#54546D",
		BorderFocus:   "#7E9CD8",
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Success:       "#98BB6C",
		Warning:       "#E6C384",
		Danger:        "#E46876",
		Info:          "#7FB4CA",
		StateColors: map[string]string{
			stateActive:     "#98BB6C",
			stateHibernated: "#727169",
			stateLoading:    "#7FB4CA",
			stateFailed:     "#E46876",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS slate/sky
	return Theme{
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		SurfaceAlt:    "#1e293b",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Border:        "#334155",
		BorderFocus:   "#38bdf8",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		Info:          "#06b6d4",
		StateColors: map[string]string{
			stateActive:     "#22c55e",
			stateHibernated: "#64748b",
			stateLoading:    "#38bdf8",
			stateFailed:     "#dc2626",
		},
	}
}
