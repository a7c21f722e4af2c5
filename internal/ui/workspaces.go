package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roost/internal/dialog"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
)

const (
	stateActive     = "active"
	stateHibernated = "hibernated"
	stateLoading    = "loading"
	stateFailed     = "failed"
)

// workspaceState derives the chip shown next to a workspace.
func workspaceState(w host.Workspace, meta host.WorkspaceMeta) string {
	switch {
	case meta.DidFailLoad:
		return stateFailed
	case meta.IsLoading:
		return stateLoading
	case w.Hibernated:
		return stateHibernated
	default:
		return stateActive
	}
}

// settingRow is one effective per-workspace setting.
type settingRow struct {
	Label  string
	Value  string
	Source string // "global" or "workspace"
}

// workspaceSettings resolves the per-workspace settings against the global
// preference set.
func workspaceSettings(w host.Workspace, global host.Preferences) []settingRow {
	o := dialog.WorkspaceOverridesFromMap(w.Preferences)

	source := func(set bool) string {
		if set {
			return "workspace"
		}
		return "global"
	}
	boolRow := func(label string, ov override.Override[bool], pref string) settingRow {
		return settingRow{
			Label:  label,
			Value:  override.YesNo(ov.Resolve(global.Bool(pref))),
			Source: source(ov.IsSet()),
		}
	}

	interval := o.AutoRefreshInterval.Resolve(global.Int64(dialog.PrefAutoRefreshInterval))
	intervalText := "not set"
	if interval > 0 {
		intervalText = dialog.RoundTime(interval).String()
	}

	return []settingRow{
		boolRow("Hibernate when unused", o.HibernateWhenUnused, dialog.PrefHibernateWhenUnused),
		boolRow("Disable notifications", o.DisableNotifications, dialog.PrefDisableNotifications),
		boolRow("Disable audio", o.DisableAudio, dialog.PrefDisableAudio),
		boolRow("Auto refresh", o.AutoRefresh, dialog.PrefAutoRefresh),
		{Label: "Refresh interval", Value: intervalText, Source: source(o.AutoRefreshInterval.IsSet())},
		{
			Label:  "Unread count badge",
			Value:  override.YesNo(o.UnreadCountBadge.Resolve(global.Bool(dialog.PrefUnreadCountBadge))),
			Source: source(o.UnreadCountBadge.IsOff()),
		},
	}
}

// selectedWorkspace returns the workspace under the cursor.
func (m Model) selectedWorkspace() (host.Workspace, bool) {
	if m.selected < 0 || m.selected >= len(m.workspaces) {
		return host.Workspace{}, false
	}
	return m.workspaces[m.selected], true
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.workspaces) {
		m.selected = len(m.workspaces) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// renderWorkspaces renders the list pane and the detail pane side by side.
func (m Model) renderWorkspaces(height int) string {
	styles := m.theme.Styles()
	listWidth := max(m.width*2/5, 24)
	detailWidth := max(m.width-listWidth, 20)

	// Pane borders take two columns and rows.
	list := styles.PaneFocus.Width(listWidth - 2).Height(height - 2).
		Render(m.renderWorkspaceList(listWidth-4, height-2))
	detail := styles.Pane.Width(detailWidth - 2).Height(height - 2).
		Render(m.renderWorkspaceDetail(detailWidth - 4))
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) renderWorkspaceList(width, height int) string {
	styles := m.theme.Styles()
	if len(m.workspaces) == 0 {
		return styles.MutedText.Render("No workspaces. Press a to add one.")
	}

	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}

	lines := make([]string, 0, height)
	for i := start; i < len(m.workspaces) && len(lines) < height; i++ {
		w := m.workspaces[i]
		meta := m.snapshot.WorkspaceMetas[w.ID]
		chip := styles.StateStyle(workspaceState(w, meta)).Render(workspaceState(w, meta))

		badge := ""
		if meta.BadgeCount > 0 {
			badge = fmt.Sprintf(" (%d)", meta.BadgeCount)
		}
		nameWidth := width - lipgloss.Width(chip) - len(badge) - 1
		name := padRight(truncate(w.DisplayName(), nameWidth), nameWidth) + badge

		line := name + " " + chip
		if i == m.selected {
			line = styles.Selected.Render(name) + " " + chip
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderWorkspaceDetail(width int) string {
	styles := m.theme.Styles()
	w, ok := m.selectedWorkspace()
	if !ok {
		return ""
	}
	meta := m.snapshot.WorkspaceMetas[w.ID]

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(truncate(w.DisplayName(), width)))
	b.WriteString("\n")
	if meta.Title != "" {
		b.WriteString(styles.MutedText.Render(truncate(meta.Title, width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(styles.FaintText.Render(padRight(label, 10)))
		b.WriteString(styles.Text.Render(truncate(value, width-10)))
		b.WriteString("\n")
	}
	field("Home", w.HomeURL)
	field("ID", w.ID)
	field("Order", fmt.Sprintf("%d", w.Order+1))
	b.WriteString("\n")

	b.WriteString(styles.AccentText.Bold(true).Render("Settings"))
	b.WriteString("\n")
	for _, row := range workspaceSettings(w, m.snapshot.Preferences) {
		b.WriteString(styles.MutedText.Render(padRight(row.Label, 24)))
		b.WriteString(styles.Text.Render(row.Value))
		if m.showSources {
			style := styles.FaintText
			if row.Source == "workspace" {
				style = styles.InfoText
			}
			b.WriteString("  " + style.Render(row.Source))
		}
		b.WriteString("\n")
	}
	return b.String()
}
