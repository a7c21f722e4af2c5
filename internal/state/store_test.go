package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/kv"
)

type fakeFetcher struct {
	mu         sync.Mutex
	calls      map[string]int
	prefs      host.Preferences
	system     host.Preferences
	workspaces map[string]host.Workspace
	metas      map[string]host.WorkspaceMeta
	pause      *host.PauseNotificationsInfo
	err        error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls: map[string]int{},
		prefs: host.Preferences{"hibernateWhenUnused": true, "unreadCountBadge": true},
		workspaces: map[string]host.Workspace{
			"a": {ID: "a", Order: 1, Name: "Mail"},
			"b": {ID: "b", Order: 0, Preferences: map[string]any{"hibernateWhenUnused": false}},
		},
	}
}

func (f *fakeFetcher) record(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	return f.err
}

func (f *fakeFetcher) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeFetcher) FetchPreferences(context.Context) (host.Preferences, error) {
	return f.prefs.Clone(), f.record(KeyPreferences)
}

func (f *fakeFetcher) FetchSystemPreferences(context.Context) (host.Preferences, error) {
	return f.system.Clone(), f.record(KeySystemPreferences)
}

func (f *fakeFetcher) FetchWorkspaces(context.Context) (map[string]host.Workspace, error) {
	return cloneWorkspaces(f.workspaces), f.record(KeyWorkspaces)
}

func (f *fakeFetcher) FetchWorkspaceMetas(context.Context) (map[string]host.WorkspaceMeta, error) {
	return cloneMetas(f.metas), f.record(KeyWorkspaceMetas)
}

func (f *fakeFetcher) FetchPauseNotificationsInfo(context.Context) (*host.PauseNotificationsInfo, error) {
	return f.pause, f.record(KeyPauseNotificationsInfo)
}

func loadedStore(t *testing.T) (*Store, *fakeFetcher, *kv.MemoryStore) {
	t.Helper()
	fetcher := newFakeFetcher()
	mem := kv.NewMemoryStore()
	s := NewStore(fetcher, mem, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, fetcher, mem
}

func TestStore_LoadFetchesAndPersists(t *testing.T) {
	s, fetcher, mem := loadedStore(t)

	assert.Equal(t, 1, fetcher.count(KeyPreferences))
	assert.Equal(t, 1, fetcher.count(KeyWorkspaces))
	assert.Equal(t, 5, mem.Len())

	var persisted host.Preferences
	require.NoError(t, mem.Get(KeyPreferences, &persisted))
	assert.Equal(t, true, persisted["hibernateWhenUnused"])

	snap := s.Snapshot()
	assert.Len(t, snap.Workspaces, 2)
	assert.False(t, snap.LastUpdated.IsZero())
}

func TestStore_LoadPrefersLocalSnapshot(t *testing.T) {
	fetcher := newFakeFetcher()
	mem := kv.NewMemoryStore()
	require.NoError(t, mem.Set(KeyPreferences, host.Preferences{"proxyMode": "system"}))

	s := NewStore(fetcher, mem, nil)
	require.NoError(t, s.Load(context.Background()))

	assert.Zero(t, fetcher.count(KeyPreferences))
	assert.Equal(t, 1, fetcher.count(KeyWorkspaces))
	v, ok := s.Preference("proxyMode")
	require.True(t, ok)
	assert.Equal(t, "system", v)
}

func TestStore_LoadRecoversFromCorruptSnapshot(t *testing.T) {
	fetcher := newFakeFetcher()
	mem := kv.NewMemoryStore()
	mem.SetRaw(KeyPreferences, []byte("{truncated"))

	s := NewStore(fetcher, mem, nil)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, 1, fetcher.count(KeyPreferences))
	v, _ := s.Preference("hibernateWhenUnused")
	assert.Equal(t, true, v)

	var repaired host.Preferences
	require.NoError(t, mem.Get(KeyPreferences, &repaired), "corrupt snapshot should be rewritten")
}

func TestStore_LoadFailsWhenHostUnavailable(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.err = errors.New("connection refused")

	s := NewStore(fetcher, kv.NewMemoryStore(), nil)
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch preferences")
}

func TestStore_RefreshIgnoresLocalSnapshots(t *testing.T) {
	s, fetcher, _ := loadedStore(t)
	fetcher.prefs = host.Preferences{"hibernateWhenUnused": false}

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, fetcher.count(KeyPreferences))
	v, _ := s.Preference("hibernateWhenUnused")
	assert.Equal(t, false, v)
}

func TestStore_ApplyPreferenceChange(t *testing.T) {
	s, _, mem := loadedStore(t)

	s.ApplyPreferenceChange("proxyMode", "fixed_servers")

	v, ok := s.Preference("proxyMode")
	require.True(t, ok)
	assert.Equal(t, "fixed_servers", v)

	var persisted host.Preferences
	require.NoError(t, mem.Get(KeyPreferences, &persisted))
	assert.Equal(t, "fixed_servers", persisted["proxyMode"])
	assert.Equal(t, true, persisted["hibernateWhenUnused"], "full set is re-persisted")
}

func TestStore_ApplyWorkspaceChange(t *testing.T) {
	s, _, mem := loadedStore(t)

	require.NoError(t, s.ApplyWorkspaceChange("a", map[string]any{"homeUrl": "https://mail.example.com"}))
	w, ok := s.Workspace("a")
	require.True(t, ok)
	assert.Equal(t, "Mail", w.Name, "merge keeps untouched fields")
	assert.Equal(t, "https://mail.example.com", w.HomeURL)

	require.NoError(t, s.ApplyWorkspaceChange("c", map[string]any{"order": 2}))
	w, ok = s.Workspace("c")
	require.True(t, ok, "absent workspace is created")
	assert.Equal(t, "c", w.ID)
	assert.Equal(t, 2, w.Order)

	require.NoError(t, s.ApplyWorkspaceChange("a", nil))
	_, ok = s.Workspace("a")
	assert.False(t, ok)

	var persisted map[string]host.Workspace
	require.NoError(t, mem.Get(KeyWorkspaces, &persisted))
	assert.NotContains(t, persisted, "a")
	assert.Contains(t, persisted, "c")
}

func TestStore_ApplyWorkspacesAndMetas(t *testing.T) {
	s, _, _ := loadedStore(t)

	s.ApplyWorkspaces(map[string]host.Workspace{"z": {ID: "z"}})
	assert.Len(t, s.SortedWorkspaces(), 1)

	require.NoError(t, s.ApplyWorkspaceMetaChange("z", map[string]any{"badgeCount": 4}))
	require.NoError(t, s.ApplyWorkspaceMetaChange("z", map[string]any{"title": "Inbox"}))
	meta := s.Snapshot().WorkspaceMetas["z"]
	assert.Equal(t, 4, meta.BadgeCount)
	assert.Equal(t, "Inbox", meta.Title)

	require.NoError(t, s.ApplyWorkspaceMetaChange("z", nil))
	assert.NotContains(t, s.Snapshot().WorkspaceMetas, "z")

	s.ApplyWorkspaceMetas(nil)
	assert.NotNil(t, s.Snapshot().WorkspaceMetas)
}

func TestStore_SortedWorkspaces(t *testing.T) {
	s, _, _ := loadedStore(t)
	ws := s.SortedWorkspaces()
	require.Len(t, ws, 2)
	assert.Equal(t, "b", ws[0].ID)
	assert.Equal(t, "a", ws[1].ID)
}

func TestStore_Effective(t *testing.T) {
	s, _, _ := loadedStore(t)

	assert.Equal(t, true, s.Effective("a", "hibernateWhenUnused"), "no override inherits global")
	assert.Equal(t, false, s.Effective("b", "hibernateWhenUnused"))
	assert.Equal(t, true, s.Effective("missing", "hibernateWhenUnused"))

	require.NoError(t, s.ApplyWorkspaceChange("b", map[string]any{"preferences": map[string]any{"hibernateWhenUnused": nil}}))
	assert.Equal(t, true, s.Effective("b", "hibernateWhenUnused"), "null override inherits global")
}

func TestStore_EffectiveBadgeOnlyTurnsOff(t *testing.T) {
	s, _, _ := loadedStore(t)

	assert.Equal(t, true, s.Effective("a", "unreadCountBadge"))
	require.NoError(t, s.ApplyWorkspaceChange("a", map[string]any{"preferences": map[string]any{"unreadCountBadge": false}}))
	assert.Equal(t, false, s.Effective("a", "unreadCountBadge"))

	s.ApplyPreferenceChange("unreadCountBadge", false)
	require.NoError(t, s.ApplyWorkspaceChange("a", map[string]any{"preferences": map[string]any{"unreadCountBadge": true}}))
	assert.Equal(t, false, s.Effective("a", "unreadCountBadge"), "a workspace cannot enable a globally disabled badge")
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, _, _ := loadedStore(t)

	snap := s.Snapshot()
	snap.Preferences["hibernateWhenUnused"] = false
	snap.Workspaces["b"].Preferences["hibernateWhenUnused"] = true

	v, _ := s.Preference("hibernateWhenUnused")
	assert.Equal(t, true, v)
	assert.Equal(t, false, s.Effective("b", "hibernateWhenUnused"))
}

func TestStore_SubscribeReceivesChangesInOrder(t *testing.T) {
	s, _, _ := loadedStore(t)

	var got []Change
	cancel := s.Subscribe(func(c Change) { got = append(got, c) })

	s.ApplyPreferenceChange("a", 1)
	require.NoError(t, s.ApplyWorkspaceChange("x", map[string]any{}))
	s.ApplyPauseNotificationsInfo(&host.PauseNotificationsInfo{Reason: "pause"})

	cancel()
	s.ApplyPreferenceChange("b", 2)

	require.Len(t, got, 3)
	assert.Equal(t, Change{Kind: ChangePreference, Key: "a"}, got[0])
	assert.Equal(t, Change{Kind: ChangeWorkspace, Key: "x"}, got[1])
	assert.Equal(t, ChangePauseNotifications, got[2].Kind)
}
