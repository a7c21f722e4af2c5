package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roost/internal/host"
)

// renderHeader renders the status bar: link state, workspace count and
// notification pause.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := styles.FaintText.Render("  │  ")

	parts := []string{styles.Logo.Render("roost")}
	parts = append(parts, m.linkStatus(styles))
	parts = append(parts, styles.MutedText.Render(fmt.Sprintf("%d workspaces", len(m.snapshot.Workspaces))))
	if pause := pauseLabel(m.snapshot.PauseNotificationsInfo); pause != "" {
		parts = append(parts, styles.WarningText.Render(pause))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+m.snapshot.LastUpdated.Format("15:04:05")))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) linkStatus(styles Styles) string {
	if m.link == nil {
		return styles.MutedText.Render("○ OFFLINE")
	}
	if m.link.Connected() {
		return styles.SuccessText.Render("● LIVE")
	}
	label := "○ RECONNECTING"
	if err := m.link.LastError(); err != nil {
		label += " " + truncate(err.Error(), 40)
	}
	return styles.DangerText.Render(label)
}

// pauseLabel describes an active notification pause, or "".
func pauseLabel(info *host.PauseNotificationsInfo) string {
	if info == nil || info.Reason == "" {
		return ""
	}
	switch {
	case info.Schedule != nil && info.Reason == "scheduled":
		return fmt.Sprintf("Notifications paused %s–%s", info.Schedule.From, info.Schedule.To)
	case !info.ParsedUntil().IsZero():
		return "Notifications paused until " + info.ParsedUntil().Format("15:04")
	default:
		return "Notifications paused"
	}
}

// noticeText maps a host notice to its banner text.
func noticeText(name string) string {
	switch name {
	case host.NoteShowRestartNotice:
		return "Restart required for the new settings to take effect."
	case host.NoteShowReloadNotice:
		return "Reload the workspace to apply the new home URL."
	default:
		return ""
	}
}

// renderBanner renders the pending host notice, if any.
func (m Model) renderBanner() string {
	if m.notice == "" {
		return ""
	}
	styles := m.theme.Styles()
	return styles.Banner.Width(m.width).Render(m.notice)
}

// renderCommandBar renders context key hints and the flash line.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(style.Render(m.flash))
	}

	var hints []string
	add := func(keys, desc string) {
		hints = append(hints, styles.WarningText.Render(keys)+" "+styles.MutedText.Render(desc))
	}
	switch m.currentView {
	case ViewWorkspaces:
		add("a", "add")
		add("enter", "edit")
		add("x", "remove")
		add("r", "interval")
		add("s", "sources")
	case ViewPreferences:
		add("P", "proxy")
		add("u", "agent")
		add("J/C", "inject")
		add("R", "interval")
		add("L", "license")
		add("K/U", "lock")
	case ViewActivity:
		add("j/k", "scroll")
		add("g/G", "top/bottom")
	}
	add("tab", "views")
	add("?", "help")
	add("e", "quit")
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(strings.Join(hints, "  "))
}
