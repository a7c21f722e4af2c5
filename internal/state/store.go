package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/kv"
	"github.com/five82/roost/internal/override"
)

// Storage keys for the local warm-start snapshots.
const (
	KeyPreferences            = "preferences"
	KeySystemPreferences      = "systemPreferences"
	KeyWorkspaces             = "workspaces"
	KeyWorkspaceMetas         = "workspaceMetas"
	KeyPauseNotificationsInfo = "pauseNotificationsInfo"
)

// Snapshot is a copy of everything the cache mirrors.
type Snapshot struct {
	Preferences            host.Preferences
	SystemPreferences      host.Preferences
	Workspaces             map[string]host.Workspace
	WorkspaceMetas         map[string]host.WorkspaceMeta
	PauseNotificationsInfo *host.PauseNotificationsInfo
	LastUpdated            time.Time
}

// Store mirrors host-owned preferences and workspace state. It is created once
// by the composition root and shared by reference.
type Store struct {
	fetcher host.SnapshotFetcher
	kv      kv.Store
	log     *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot

	// applyMu serializes mutation and subscriber delivery so subscribers see
	// changes in apply order.
	applyMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// NewStore returns an empty store. Call Load before reading.
func NewStore(fetcher host.SnapshotFetcher, store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher: fetcher,
		kv:      store,
		log:     logger,
		snapshot: Snapshot{
			Preferences:       host.Preferences{},
			SystemPreferences: host.Preferences{},
			Workspaces:        map[string]host.Workspace{},
			WorkspaceMetas:    map[string]host.WorkspaceMeta{},
		},
		subs: make(map[int]func(Change)),
	}
}

// Load seeds the cache from local snapshots, fetching any missing or corrupt
// snapshot from the host and persisting it.
func (s *Store) Load(ctx context.Context) error {
	return s.load(ctx, false)
}

// Refresh re-fetches every snapshot from the host, ignoring local copies.
func (s *Store) Refresh(ctx context.Context) error {
	return s.load(ctx, true)
}

func (s *Store) load(ctx context.Context, force bool) error {
	prefs, err := loadOrFetch(ctx, s, KeyPreferences, force, s.fetcher.FetchPreferences)
	if err != nil {
		return err
	}
	system, err := loadOrFetch(ctx, s, KeySystemPreferences, force, s.fetcher.FetchSystemPreferences)
	if err != nil {
		return err
	}
	workspaces, err := loadOrFetch(ctx, s, KeyWorkspaces, force, s.fetcher.FetchWorkspaces)
	if err != nil {
		return err
	}
	metas, err := loadOrFetch(ctx, s, KeyWorkspaceMetas, force, s.fetcher.FetchWorkspaceMetas)
	if err != nil {
		return err
	}
	pause, err := loadOrFetch(ctx, s, KeyPauseNotificationsInfo, force, s.fetcher.FetchPauseNotificationsInfo)
	if err != nil {
		return err
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	s.snapshot = Snapshot{
		Preferences:            nonNilPrefs(prefs),
		SystemPreferences:      nonNilPrefs(system),
		Workspaces:             nonNilMap(workspaces),
		WorkspaceMetas:         nonNilMap(metas),
		PauseNotificationsInfo: pause,
		LastUpdated:            time.Now(),
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReloaded})
	return nil
}

func loadOrFetch[T any](ctx context.Context, s *Store, key string, force bool, fetch func(context.Context) (T, error)) (T, error) {
	var value T
	if !force && s.kv != nil {
		err := s.kv.Get(key, &value)
		switch {
		case err == nil:
			return value, nil
		case errors.Is(err, kv.ErrCorrupt):
			s.log.Warn("discarding corrupt local snapshot", zap.String("key", key), zap.Error(err))
		case !errors.Is(err, kv.ErrNotFound):
			s.log.Warn("local snapshot unreadable", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", key, err)
	}
	s.persist(key, value)
	return value, nil
}

// ApplyPreferenceChange merges one global preference.
func (s *Store) ApplyPreferenceChange(name string, value any) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	s.snapshot.Preferences[name] = value
	s.snapshot.LastUpdated = time.Now()
	full := s.snapshot.Preferences.Clone()
	s.mu.Unlock()

	s.persist(KeyPreferences, full)
	s.notify(Change{Kind: ChangePreference, Key: name})
}

// ApplySystemPreferenceChange merges one system preference.
func (s *Store) ApplySystemPreferenceChange(name string, value any) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	s.snapshot.SystemPreferences[name] = value
	s.snapshot.LastUpdated = time.Now()
	full := s.snapshot.SystemPreferences.Clone()
	s.mu.Unlock()

	s.persist(KeySystemPreferences, full)
	s.notify(Change{Kind: ChangeSystemPreference, Key: name})
}

// ApplyWorkspaceChange shallow-merges partial into workspace id, creating it
// when absent. A nil partial deletes the workspace.
func (s *Store) ApplyWorkspaceChange(id string, partial map[string]any) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if partial == nil {
		delete(s.snapshot.Workspaces, id)
	} else {
		current, ok := s.snapshot.Workspaces[id]
		if !ok {
			current = host.Workspace{ID: id}
		}
		merged, err := current.Merge(partial)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		merged.ID = id
		s.snapshot.Workspaces[id] = merged
	}
	s.snapshot.LastUpdated = time.Now()
	full := cloneWorkspaces(s.snapshot.Workspaces)
	s.mu.Unlock()

	s.persist(KeyWorkspaces, full)
	s.notify(Change{Kind: ChangeWorkspace, Key: id})
	return nil
}

// ApplyWorkspaces replaces every workspace record.
func (s *Store) ApplyWorkspaces(workspaces map[string]host.Workspace) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	s.snapshot.Workspaces = cloneWorkspaces(nonNilMap(workspaces))
	s.snapshot.LastUpdated = time.Now()
	full := cloneWorkspaces(s.snapshot.Workspaces)
	s.mu.Unlock()

	s.persist(KeyWorkspaces, full)
	s.notify(Change{Kind: ChangeWorkspaces})
}

// ApplyWorkspaceMetaChange shallow-merges partial into the meta for id. A nil
// partial deletes it.
func (s *Store) ApplyWorkspaceMetaChange(id string, partial map[string]any) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if partial == nil {
		delete(s.snapshot.WorkspaceMetas, id)
	} else {
		merged, err := s.snapshot.WorkspaceMetas[id].Merge(partial)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.snapshot.WorkspaceMetas[id] = merged
	}
	s.snapshot.LastUpdated = time.Now()
	full := cloneMetas(s.snapshot.WorkspaceMetas)
	s.mu.Unlock()

	s.persist(KeyWorkspaceMetas, full)
	s.notify(Change{Kind: ChangeWorkspaceMeta, Key: id})
	return nil
}

// ApplyWorkspaceMetas replaces every workspace meta.
func (s *Store) ApplyWorkspaceMetas(metas map[string]host.WorkspaceMeta) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	s.snapshot.WorkspaceMetas = cloneMetas(nonNilMap(metas))
	s.snapshot.LastUpdated = time.Now()
	full := cloneMetas(s.snapshot.WorkspaceMetas)
	s.mu.Unlock()

	s.persist(KeyWorkspaceMetas, full)
	s.notify(Change{Kind: ChangeWorkspaceMetas})
}

// ApplyPauseNotificationsInfo replaces the pause state. Nil means not paused.
func (s *Store) ApplyPauseNotificationsInfo(info *host.PauseNotificationsInfo) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	var stored *host.PauseNotificationsInfo
	if info != nil {
		dup := clonePause(*info)
		stored = &dup
	}

	s.mu.Lock()
	s.snapshot.PauseNotificationsInfo = stored
	s.snapshot.LastUpdated = time.Now()
	s.mu.Unlock()

	s.persist(KeyPauseNotificationsInfo, stored)
	s.notify(Change{Kind: ChangePauseNotifications})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Preferences:       s.snapshot.Preferences.Clone(),
		SystemPreferences: s.snapshot.SystemPreferences.Clone(),
		Workspaces:        cloneWorkspaces(s.snapshot.Workspaces),
		WorkspaceMetas:    cloneMetas(s.snapshot.WorkspaceMetas),
		LastUpdated:       s.snapshot.LastUpdated,
	}
	if s.snapshot.PauseNotificationsInfo != nil {
		dup := clonePause(*s.snapshot.PauseNotificationsInfo)
		snap.PauseNotificationsInfo = &dup
	}
	return snap
}

// Preferences returns a copy of the global preference set.
func (s *Store) Preferences() host.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Preferences.Clone()
}

// Preference returns one global preference.
func (s *Store) Preference(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.snapshot.Preferences[name]
	return v, ok
}

// Workspace returns a copy of workspace id.
func (s *Store) Workspace(id string) (host.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.snapshot.Workspaces[id]
	if !ok {
		return host.Workspace{}, false
	}
	return w.Clone(), true
}

// SortedWorkspaces returns workspaces ordered by Order, then ID.
func (s *Store) SortedWorkspaces() []host.Workspace {
	s.mu.RLock()
	out := make([]host.Workspace, 0, len(s.snapshot.Workspaces))
	for _, w := range s.snapshot.Workspaces {
		out = append(out, w.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// forceOffKeys are the settings a workspace may disable but never enable.
var forceOffKeys = map[string]bool{"unreadCountBadge": true}

// Effective resolves key for workspace id: the workspace override when
// present and non-null, otherwise the global preference. Unknown workspaces
// resolve to the global value. Force-off settings resolve to a bool and only
// honor an explicit false override.
func (s *Store) Effective(id, key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	overrides := s.snapshot.Workspaces[id].Preferences
	if forceOffKeys[key] {
		global, _ := s.snapshot.Preferences[key].(bool)
		return override.ForceOffFromAny(overrides[key]).Resolve(global)
	}
	return override.Effective(overrides, s.snapshot.Preferences, key)
}

func (s *Store) persist(key string, value any) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Set(key, value); err != nil {
		s.log.Warn("persist local snapshot failed", zap.String("key", key), zap.Error(err))
	}
}

func nonNilPrefs(p host.Preferences) host.Preferences {
	if p == nil {
		return host.Preferences{}
	}
	return p
}

func nonNilMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}

func cloneWorkspaces(in map[string]host.Workspace) map[string]host.Workspace {
	out := make(map[string]host.Workspace, len(in))
	for id, w := range in {
		out[id] = w.Clone()
	}
	return out
}

func cloneMetas(in map[string]host.WorkspaceMeta) map[string]host.WorkspaceMeta {
	out := make(map[string]host.WorkspaceMeta, len(in))
	for id, m := range in {
		out[id] = m
	}
	return out
}

func clonePause(p host.PauseNotificationsInfo) host.PauseNotificationsInfo {
	if p.Schedule != nil {
		sched := *p.Schedule
		p.Schedule = &sched
	}
	return p
}
