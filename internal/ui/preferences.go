package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/five82/roost/internal/host"
)

// secretPreferences are never shown in clear.
var secretPreferences = map[string]bool{
	"licenseKey": true,
}

// formatPreference renders a preference value on one line.
func formatPreference(name string, v any) string {
	if v == nil {
		return "(unset)"
	}
	if secretPreferences[name] {
		return "••••••••"
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return `""`
		}
		return singleLine(t)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// preferenceLines renders one preference set as aligned name/value rows.
func preferenceLines(prefs host.Preferences, width int) []string {
	names := make([]string, 0, len(prefs))
	nameWidth := 0
	for name := range prefs {
		names = append(names, name)
		nameWidth = max(nameWidth, len(name))
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		value := formatPreference(name, prefs[name])
		lines = append(lines, padRight(name, nameWidth+2)+truncate(value, width-nameWidth-2))
	}
	return lines
}

// updatePreferencesViewport refreshes the preferences view content.
func (m *Model) updatePreferencesViewport() {
	styles := m.theme.Styles()
	width := m.prefsViewport.Width

	var b strings.Builder
	section := func(title string, prefs host.Preferences) {
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		lines := preferenceLines(prefs, width)
		if len(lines) == 0 {
			b.WriteString(styles.MutedText.Render("none"))
			b.WriteString("\n")
		}
		for _, line := range lines {
			b.WriteString(styles.Text.Render(line))
			b.WriteString("\n")
		}
	}
	section("Preferences", m.snapshot.Preferences)
	b.WriteString("\n")
	section("System Preferences", m.snapshot.SystemPreferences)

	m.prefsViewport.SetContent(b.String())
}
