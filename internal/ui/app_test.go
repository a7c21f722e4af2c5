package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roost/internal/dialog"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/kv"
	"github.com/five82/roost/internal/state"
	"github.com/five82/roost/internal/uiprefs"
)

type fakeFetcher struct {
	prefs      host.Preferences
	workspaces map[string]host.Workspace
}

func (f fakeFetcher) FetchPreferences(context.Context) (host.Preferences, error) {
	return f.prefs.Clone(), nil
}

func (f fakeFetcher) FetchSystemPreferences(context.Context) (host.Preferences, error) {
	return host.Preferences{}, nil
}

func (f fakeFetcher) FetchWorkspaces(context.Context) (map[string]host.Workspace, error) {
	out := make(map[string]host.Workspace, len(f.workspaces))
	for id, w := range f.workspaces {
		out[id] = w.Clone()
	}
	return out, nil
}

func (f fakeFetcher) FetchWorkspaceMetas(context.Context) (map[string]host.WorkspaceMeta, error) {
	return map[string]host.WorkspaceMeta{}, nil
}

func (f fakeFetcher) FetchPauseNotificationsInfo(context.Context) (*host.PauseNotificationsInfo, error) {
	return nil, nil
}

type fakeCommander struct {
	mu     sync.Mutex
	sent   []host.Command
	failOn string
}

func (f *fakeCommander) Send(_ context.Context, c host.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.Name == f.failOn {
		return errors.New("host unavailable")
	}
	f.sent = append(f.sent, c)
	return nil
}

func (f *fakeCommander) commands() []host.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]host.Command(nil), f.sent...)
}

type fakeLink struct{ connected bool }

func (l fakeLink) Connected() bool  { return l.connected }
func (l fakeLink) LastError() error { return nil }

type harness struct {
	model     Model
	store     *state.Store
	commander *fakeCommander
	prefsPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithPrefs(t, host.Preferences{"unreadCountBadge": true})
}

func newHarnessWithPrefs(t *testing.T, prefs host.Preferences) *harness {
	t.Helper()
	store := state.NewStore(fakeFetcher{
		prefs: prefs,
		workspaces: map[string]host.Workspace{
			"a": {ID: "a", Order: 0, Name: "Mail", HomeURL: "https://mail.example.com"},
			"b": {ID: "b", Order: 1, Name: "Chat", HomeURL: "https://chat.example.com"},
		},
	}, kv.NewMemoryStore(), nil)
	require.NoError(t, store.Load(context.Background()))

	h := &harness{
		store:     store,
		commander: &fakeCommander{},
		prefsPath: filepath.Join(t.TempDir(), "ui.toml"),
	}
	h.model = New(context.Background(), Options{
		Store:     store,
		Commander: h.commander,
		Link:      fakeLink{connected: true},
		PrefsPath: h.prefsPath,
	})
	t.Cleanup(h.model.Close)
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// run delivers msg and keeps feeding the messages its commands produce back
// in, the way the program loop would, until a command yields nothing.
func (h *harness) run(msg tea.Msg) {
	cmd := h.send(msg)
	for cmd != nil {
		out := cmd()
		if out == nil {
			return
		}
		cmd = h.send(out)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) form(t *testing.T) *formModal {
	t.Helper()
	fm, ok := h.model.modal.(*formModal)
	require.True(t, ok, "expected a form modal, got %T", h.model.modal)
	return fm
}

func TestModel_CodeInjectionKeepsLineBreaks(t *testing.T) {
	h := newHarnessWithPrefs(t, host.Preferences{"jsCodeInjection": "// greet\nalert(1)"})

	h.send(runes("J"))
	fm := h.form(t)
	require.Equal(t, "jsCodeInjection", fm.fields[0].Key)

	h.send(runes(";"))
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.IsType(t, &formModal{}, h.model.modal, "enter inserts a line break instead of saving")
	h.send(runes("done()"))
	assert.Equal(t, "// greet\nalert(1);\ndone()", fm.dialog.Values()["jsCodeInjection"])

	h.run(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, h.model.modal)

	cmds := h.commander.commands()
	require.NotEmpty(t, cmds)
	assert.Equal(t, host.CmdSetPreference, cmds[0].Name)
	assert.Equal(t, []any{"jsCodeInjection", "// greet\nalert(1);\ndone()"}, cmds[0].Args)
}

func TestModel_ListsWorkspacesInOrder(t *testing.T) {
	h := newHarness(t)

	require.Len(t, h.model.workspaces, 2)
	assert.Equal(t, "Mail", h.model.workspaces[0].Name)

	h.send(runes("j"))
	w, ok := h.model.selectedWorkspace()
	require.True(t, ok)
	assert.Equal(t, "b", w.ID)

	h.send(runes("j"))
	assert.Equal(t, 1, h.model.selected)
	assert.Contains(t, h.model.View(), "Chat")
}

func TestModel_ProxyDialogSavesFixedServers(t *testing.T) {
	h := newHarness(t)

	h.send(runes("P"))
	fm := h.form(t)
	assert.Equal(t, "Proxy Settings", fm.dialog.Title())
	require.Len(t, fm.fields, 1)

	h.send(tea.KeyMsg{Type: tea.KeyRight}) // system -> fixed_servers
	require.Len(t, fm.fields, 5)

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(tea.KeyMsg{Type: tea.KeyRight}) // protocol -> socks5
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(runes("proxy.local"))
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(runes("8080"))

	h.run(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, h.model.modal)
	assert.Equal(t, "Proxy Settings saved", h.model.flash)

	sent := h.commander.commands()
	require.Len(t, sent, 6)
	assert.Equal(t, []any{dialog.PrefProxyMode, dialog.ProxyFixedServers}, sent[0].Args)
	assert.Equal(t, []any{dialog.PrefProxyAddress, "proxy.local"}, sent[1].Args)
	assert.Equal(t, []any{dialog.PrefProxyPort, "8080"}, sent[2].Args)
	assert.Equal(t, []any{dialog.PrefProxyProtocol, "socks5"}, sent[3].Args)
	assert.Equal(t, host.CmdRequestRestartNotice, sent[5].Name)
}

func TestModel_InvalidSaveKeepsDialogOpen(t *testing.T) {
	h := newHarness(t)

	h.send(runes("P"))
	h.send(tea.KeyMsg{Type: tea.KeyRight})
	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	fm := h.form(t)
	assert.Equal(t, "Address is required.", fm.values["proxyAddressError"])
	assert.Equal(t, "Port is required.", fm.values["proxyPortError"])
	assert.Empty(t, h.commander.commands())
	assert.Contains(t, h.model.View(), "Address is required.")
}

func TestModel_DeliveryFailureShowsError(t *testing.T) {
	h := newHarness(t)
	h.commander.failOn = host.CmdSetPreference

	h.send(runes("u"))
	h.send(runes("roost/1.0"))
	h.run(tea.KeyMsg{Type: tea.KeyCtrlS})

	fm := h.form(t)
	assert.False(t, fm.saving)
	assert.Contains(t, fm.status, "host unavailable")
	assert.True(t, fm.dialog.IsOpen())
}

func TestModel_EscapeClosesWithoutSending(t *testing.T) {
	h := newHarness(t)

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	fm := h.form(t)
	assert.Equal(t, "Edit Mail", fm.dialog.Title())

	h.send(runes(" Inbox"))
	h.send(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, h.model.modal)
	assert.False(t, fm.dialog.IsOpen())
	assert.Empty(t, h.commander.commands())
}

func TestModel_RemoveWorkspaceAfterConfirm(t *testing.T) {
	h := newHarness(t)

	h.send(runes("x"))
	_, ok := h.model.modal.(confirmModal)
	require.True(t, ok)

	h.run(runes("y"))

	assert.Nil(t, h.model.modal)
	assert.Equal(t, "Removed Mail", h.model.flash)
	sent := h.commander.commands()
	require.Len(t, sent, 1)
	assert.Equal(t, host.CmdRemoveWorkspace, sent[0].Name)
	assert.Equal(t, []any{"a"}, sent[0].Args)
}

func TestModel_DeclineRemoveSendsNothing(t *testing.T) {
	h := newHarness(t)

	h.send(runes("x"))
	h.send(runes("n"))

	assert.Nil(t, h.model.modal)
	assert.Empty(t, h.commander.commands())
}

func TestModel_ShowsHostNotice(t *testing.T) {
	h := newHarness(t)

	n, err := host.NewNotification(host.NoteShowRestartNotice)
	require.NoError(t, err)
	require.NoError(t, h.store.Dispatch(n))

	h.send(waitForChange(h.model.changes)())

	assert.Equal(t, noticeText(host.NoteShowRestartNotice), h.model.notice)
	assert.Contains(t, h.model.View(), "Restart required")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, h.model.notice)
}

func TestModel_PicksUpPushedChanges(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.store.ApplyWorkspaceChange("c", map[string]any{"id": "c", "order": 2, "name": "Docs"}))
	h.send(waitForChange(h.model.changes)())

	require.Len(t, h.model.workspaces, 3)
	assert.Equal(t, "Docs", h.model.workspaces[2].Name)
}

func TestModel_ThemeAndSourcesPersist(t *testing.T) {
	h := newHarness(t)

	h.send(runes("T"))
	h.send(runes("s"))

	p := uiprefs.Load(h.prefsPath)
	assert.Equal(t, "Kanagawa", p.Theme)
	assert.True(t, p.ShowSources)
	assert.Contains(t, h.model.View(), "global")
}

func TestModel_HelpOverlay(t *testing.T) {
	h := newHarness(t)

	h.send(runes("?"))
	assert.Contains(t, h.model.View(), "Keyboard Shortcuts")

	h.send(runes("j"))
	assert.False(t, h.model.showHelp)
	assert.Equal(t, 0, h.model.selected)
}

func TestModel_ActivityViewTailsLog(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "roost.log")
	line := `{"level":"warn","ts":"2026-10-19T09:30:05.123+0000","logger":"listener","msg":"host link lost","error":"connection refused"}`
	require.NoError(t, os.WriteFile(logPath, []byte(line+"\n"), 0o644))
	h.model.logPath = logPath

	h.send(runes("l"))

	assert.Equal(t, ViewActivity, h.model.currentView)
	view := h.model.View()
	assert.Contains(t, view, "host link lost")
	assert.Contains(t, view, "error=connection refused")
}
