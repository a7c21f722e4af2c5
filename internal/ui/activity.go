package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roost/internal/logtail"
)

const activityLines = 300

// updateActivityViewport reloads the tail of roost's own log.
func (m *Model) updateActivityViewport() {
	styles := m.theme.Styles()
	if m.logPath == "" {
		m.activityViewport.SetContent(styles.MutedText.Render("Logging to stderr; no activity file."))
		return
	}

	entries, err := logtail.ReadEntries(m.logPath, activityLines)
	if err != nil {
		m.activityViewport.SetContent(styles.DangerText.Render(err.Error()))
		return
	}
	if len(entries) == 0 {
		m.activityViewport.SetContent(styles.MutedText.Render("No activity yet."))
		return
	}

	atBottom := m.activityViewport.AtBottom()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.renderEntry(e, styles))
	}
	m.activityViewport.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.activityViewport.GotoBottom()
	}
}

func (m Model) renderEntry(e logtail.Entry, styles Styles) string {
	if e.Raw != "" {
		return styles.FaintText.Render(truncate(e.Raw, m.activityViewport.Width))
	}

	level := strings.ToUpper(e.Level)
	var levelStyle lipgloss.Style
	switch e.Level {
	case "error", "dpanic", "panic", "fatal":
		levelStyle = styles.DangerText
	case "warn":
		levelStyle = styles.WarningText.Bold(true)
	case "debug":
		levelStyle = styles.InfoText
	default:
		levelStyle = styles.SuccessText
	}

	parts := make([]string, 0, 5)
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, levelStyle.Render(padRight(level, 5)))
	if e.Logger != "" {
		parts = append(parts, styles.AccentText.Render(e.Logger))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	if f := e.FieldsString(); f != "" {
		parts = append(parts, styles.MutedText.Render(f))
	}
	return strings.Join(parts, " ")
}
