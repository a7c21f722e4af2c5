package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit        key.Binding
	Help        key.Binding
	CycleTheme  key.Binding
	ShowSources key.Binding
	Tab         key.Binding
	Escape      key.Binding

	// View switching
	ViewWorkspaces  key.Binding
	ViewPreferences key.Binding
	ViewActivity    key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Workspace actions
	AddWorkspace      key.Binding
	EditWorkspace     key.Binding
	RemoveWorkspace   key.Binding
	WorkspaceInterval key.Binding

	// Global preference dialogs
	Proxy         key.Binding
	UserAgent     key.Binding
	InjectJS      key.Binding
	InjectCSS     key.Binding
	GlobalRefresh key.Binding
	License       key.Binding
	AppLock       key.Binding
	ClearAppLock  key.Binding

	// Modal
	Save    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Left    key.Binding
	Right   key.Binding
	Confirm key.Binding
	Accept  key.Binding
	Decline key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ShowSources: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle value sources"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Return to workspaces"),
		),

		ViewWorkspaces: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Workspaces view"),
		),
		ViewPreferences: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Preferences view"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Activity log"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		AddWorkspace: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add workspace"),
		),
		EditWorkspace: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Edit workspace"),
		),
		RemoveWorkspace: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Remove workspace"),
		),
		WorkspaceInterval: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Workspace refresh interval"),
		),

		Proxy: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Proxy"),
		),
		UserAgent: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Custom user agent"),
		),
		InjectJS: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "Inject JavaScript"),
		),
		InjectCSS: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Inject CSS"),
		),
		GlobalRefresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Global refresh interval"),
		),
		License: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Register license"),
		),
		AppLock: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "Set app lock"),
		),
		ClearAppLock: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "Clear app lock"),
		),

		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "Previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", " "),
			key.WithHelp("right", "Next option"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Yes"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewWorkspaces, k.ViewPreferences, k.ViewActivity, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.AddWorkspace, k.EditWorkspace, k.RemoveWorkspace, k.WorkspaceInterval},
		{k.Proxy, k.UserAgent, k.InjectJS, k.InjectCSS, k.GlobalRefresh},
		{k.License, k.AppLock, k.ClearAppLock},
		{k.ShowSources, k.CycleTheme, k.Help, k.Quit},
	}
}
