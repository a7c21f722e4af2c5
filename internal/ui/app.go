package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/roost/internal/dialog"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/state"
	"github.com/five82/roost/internal/uiprefs"
)

// View represents the current active view.
type View int

const (
	ViewWorkspaces View = iota
	ViewPreferences
	ViewActivity
)

const flashDuration = 4 * time.Second

// LinkStatus reports the state of the host push connection.
type LinkStatus interface {
	Connected() bool
	LastError() error
}

// Options configures the UI.
type Options struct {
	Store       *state.Store
	Commander   host.Commander
	Link        LinkStatus
	Logger      *zap.Logger
	Tick        time.Duration
	ThemeName   string
	ShowSources bool
	PrefsPath   string
	LogPath     string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	commander host.Commander
	link      LinkStatus
	log       *zap.Logger
	prefsPath string
	logPath   string
	tick      time.Duration
	keys      keyMap

	// Store subscription
	changes     chan state.Change
	unsubscribe func()

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	showSources bool
	modal       Modal

	// Data state
	snapshot   state.Snapshot
	workspaces []host.Workspace
	selected   int
	notice     string

	flash      string
	flashErr   bool
	flashUntil time.Time

	prefsViewport    viewport.Model
	activityViewport viewport.Model
}

type (
	tickMsg   time.Time
	changeMsg state.Change

	// actionResultMsg reports a one-shot host command outside a dialog.
	actionResultMsg struct {
		label string
		err   error
	}
)

// New creates a new Bubble Tea model subscribed to the store. Call Close when
// the model is no longer used.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tick := opts.Tick
	if tick == 0 {
		tick = time.Second
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = uiprefs.DefaultTheme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = uiprefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		commander:   opts.Commander,
		link:        opts.Link,
		log:         logger,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		changes:     make(chan state.Change, 64),
		unsubscribe: func() {},
		theme:       GetTheme(themeName),
		currentView: ViewWorkspaces,
		showSources: opts.ShowSources,
	}

	if m.store != nil {
		ch := m.changes
		m.unsubscribe = m.store.Subscribe(func(c state.Change) {
			// The loop re-reads the snapshot on every change, so a dropped
			// change only costs a notice when the buffer is full.
			select {
			case ch <- c:
			default:
			}
		})
		m.refreshSnapshot()
	}
	return m
}

// Close cancels the store subscription.
func (m Model) Close() {
	m.unsubscribe()
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForChange(ch <-chan state.Change) tea.Cmd {
	return func() tea.Msg {
		return changeMsg(<-ch)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), waitForChange(m.changes))
}

// refreshSnapshot copies the store state into the model.
func (m *Model) refreshSnapshot() {
	if m.store == nil {
		return
	}
	m.snapshot = m.store.Snapshot()
	m.workspaces = m.store.SortedWorkspaces()
	m.clampSelection()
	if m.ready {
		m.updatePreferencesViewport()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := max(m.width-4, 10), max(m.bodyHeight()-2, 3)
		if !m.ready {
			m.prefsViewport = viewport.New(w, h)
			m.activityViewport = viewport.New(w, h)
		} else {
			m.prefsViewport.Width, m.prefsViewport.Height = w, h
			m.activityViewport.Width, m.activityViewport.Height = w, h
		}
		m.ready = true
		m.updatePreferencesViewport()
		m.updateActivityViewport()
		return m, nil

	case tickMsg:
		if m.flash != "" && time.Now().After(m.flashUntil) {
			m.flash = ""
		}
		if m.currentView == ViewActivity {
			m.updateActivityViewport()
		}
		return m, tickCmd(m.tick)

	case changeMsg:
		c := state.Change(msg)
		if c.Kind == state.ChangeNotice {
			m.notice = noticeText(c.Notice)
		}
		m.refreshSnapshot()
		return m, waitForChange(m.changes)

	case flashMsg:
		m.setFlash(msg.text, msg.err)
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.log.Warn("action failed", zap.String("action", msg.label), zap.Error(msg.err))
			m.setFlash(msg.label+" failed: "+msg.err.Error(), true)
		} else {
			m.setFlash(msg.label, false)
		}
		m.refreshSnapshot()
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(keyMsg)
	}
	return m, nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashUntil = time.Now().Add(flashDuration)
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
		m.refreshSnapshot()
	} else {
		m.modal = modal
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	parts := []string{m.renderHeader()}
	if banner := m.renderBanner(); banner != "" {
		parts = append(parts, banner)
	}
	pane := m.theme.Styles().PaneFocus.Width(m.width - 2).Height(m.bodyHeight() - 2)
	switch m.currentView {
	case ViewPreferences:
		parts = append(parts, pane.Render(m.prefsViewport.View()))
	case ViewActivity:
		parts = append(parts, pane.Render(m.activityViewport.View()))
	default:
		parts = append(parts, m.renderWorkspaces(m.bodyHeight()))
	}
	parts = append(parts, m.renderCommandBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// bodyHeight is the space left for the active view.
func (m Model) bodyHeight() int {
	used := 2 // header and command bar
	if m.notice != "" {
		used++
	}
	return max(m.height-used, 4)
}

// handleKey processes keyboard input outside modals.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.updatePreferencesViewport()
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.ShowSources):
		m.showSources = !m.showSources
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.currentView = (m.currentView + 1) % (ViewActivity + 1)
		if m.currentView == ViewActivity {
			m.updateActivityViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.ViewWorkspaces):
		m.currentView = ViewWorkspaces
		return m, nil
	case key.Matches(msg, m.keys.ViewPreferences):
		m.currentView = ViewPreferences
		return m, nil
	case key.Matches(msg, m.keys.ViewActivity):
		m.currentView = ViewActivity
		m.updateActivityViewport()
		m.activityViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		// Esc dismisses the notice first, then returns to workspaces.
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		m.currentView = ViewWorkspaces
		return m, nil
	}

	if m.store == nil {
		return m, nil
	}
	prefs := m.snapshot.Preferences

	switch {
	case key.Matches(msg, m.keys.Proxy):
		return m.openDialog(dialog.Proxy(prefs))
	case key.Matches(msg, m.keys.UserAgent):
		return m.openDialog(dialog.CustomUserAgent(prefs))
	case key.Matches(msg, m.keys.InjectJS):
		return m.openDialog(dialog.CodeInjection(dialog.InjectJS, prefs))
	case key.Matches(msg, m.keys.InjectCSS):
		return m.openDialog(dialog.CodeInjection(dialog.InjectCSS, prefs))
	case key.Matches(msg, m.keys.GlobalRefresh):
		return m.openDialog(dialog.RefreshInterval(prefs))
	case key.Matches(msg, m.keys.License):
		return m.openDialog(dialog.LicenseRegistration(prefs))
	case key.Matches(msg, m.keys.AppLock):
		return m.openDialog(dialog.AppLock())
	case key.Matches(msg, m.keys.ClearAppLock):
		ctx, cmd := m.ctx, m.commander
		m.modal = confirmModal{
			title:  "Clear App Lock",
			prompt: "Remove the app lock password?",
			onYes: func() tea.Msg {
				return actionResultMsg{label: "App lock cleared", err: dialog.ClearAppLock(ctx, cmd)}
			},
		}
		return m, nil
	}

	switch m.currentView {
	case ViewWorkspaces:
		return m.handleWorkspacesKey(msg)
	case ViewPreferences:
		var cmd tea.Cmd
		m.prefsViewport, cmd = m.scroll(m.prefsViewport, msg)
		return m, cmd
	case ViewActivity:
		var cmd tea.Cmd
		m.activityViewport, cmd = m.scroll(m.activityViewport, msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleWorkspacesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prefs := m.snapshot.Preferences

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.workspaces)-1 {
			m.selected++
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(len(m.workspaces)-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.AddWorkspace):
		return m.openDialog(dialog.AddWorkspace(prefs))
	}

	w, ok := m.selectedWorkspace()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.EditWorkspace):
		return m.openDialog(dialog.EditWorkspace(w, prefs))
	case key.Matches(msg, m.keys.WorkspaceInterval):
		return m.openDialog(dialog.WorkspaceRefreshInterval(w, prefs))
	case key.Matches(msg, m.keys.RemoveWorkspace):
		ctx, cmd, id := m.ctx, m.commander, w.ID
		name := w.DisplayName()
		m.modal = confirmModal{
			title:  "Remove Workspace",
			prompt: "Remove " + name + "? Its data will be deleted.",
			onYes: func() tea.Msg {
				return actionResultMsg{label: "Removed " + name, err: dialog.RemoveWorkspace(ctx, cmd, id)}
			},
		}
		return m, nil
	}
	return m, nil
}

// scroll applies a navigation key to a viewport.
func (m Model) scroll(vp viewport.Model, msg tea.KeyMsg) (viewport.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		return vp, nil
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		return vp, nil
	}
	return vp.Update(msg)
}

// openDialog opens spec seeded with its own defaults.
func (m Model) openDialog(spec dialog.Spec) (tea.Model, tea.Cmd) {
	d := dialog.New(spec, m.commander, m.log)
	d.OpenDefault()
	modal, cmd := newFormModal(m.ctx, d)
	m.modal = modal
	m.log.Debug("dialog opened", zap.String("dialog", spec.Name))
	return m, cmd
}

func (m Model) savePrefs() {
	p := uiprefs.Prefs{Theme: m.theme.Name, ShowSources: m.showSources}
	if err := uiprefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save ui prefs failed", zap.Error(err))
	}
}
