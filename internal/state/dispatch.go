package state

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/roost/internal/host"
)

// Dispatch applies one push notification from the host. It is the only path
// by which host pushes mutate the cache.
func (s *Store) Dispatch(n host.Notification) error {
	s.log.Debug("host notification", zap.String("name", n.Name), zap.Int("args", len(n.Args)))

	switch n.Name {
	case host.NoteSetPreference, host.NoteSetSystemPreference:
		var name string
		if err := n.Arg(0, &name); err != nil {
			return err
		}
		var value any
		if !n.IsNull(1) {
			if err := n.Arg(1, &value); err != nil {
				return err
			}
		}
		if n.Name == host.NoteSetPreference {
			s.ApplyPreferenceChange(name, value)
		} else {
			s.ApplySystemPreferenceChange(name, value)
		}
		return nil

	case host.NoteSetWorkspace:
		id, partial, err := idAndPartial(n)
		if err != nil {
			return err
		}
		return s.ApplyWorkspaceChange(id, partial)

	case host.NoteSetWorkspaces:
		var workspaces map[string]host.Workspace
		if err := n.Arg(0, &workspaces); err != nil {
			return err
		}
		s.ApplyWorkspaces(workspaces)
		return nil

	case host.NoteSetWorkspaceMeta:
		id, partial, err := idAndPartial(n)
		if err != nil {
			return err
		}
		return s.ApplyWorkspaceMetaChange(id, partial)

	case host.NoteSetWorkspaceMetas:
		var metas map[string]host.WorkspaceMeta
		if err := n.Arg(0, &metas); err != nil {
			return err
		}
		s.ApplyWorkspaceMetas(metas)
		return nil

	case host.NoteSetPauseNotificationsInfo:
		var info *host.PauseNotificationsInfo
		if !n.IsNull(0) {
			if err := n.Arg(0, &info); err != nil {
				return err
			}
		}
		s.ApplyPauseNotificationsInfo(info)
		return nil

	case host.NoteShowRestartNotice, host.NoteShowReloadNotice:
		var key string
		if !n.IsNull(0) {
			if err := n.Arg(0, &key); err != nil {
				return err
			}
		}
		s.applyMu.Lock()
		defer s.applyMu.Unlock()
		s.notify(Change{Kind: ChangeNotice, Key: key, Notice: n.Name})
		return nil
	}

	return fmt.Errorf("unknown notification %q", n.Name)
}

func idAndPartial(n host.Notification) (string, map[string]any, error) {
	var id string
	if err := n.Arg(0, &id); err != nil {
		return "", nil, err
	}
	if n.IsNull(1) {
		return id, nil, nil
	}
	var partial map[string]any
	if err := n.Arg(1, &partial); err != nil {
		return "", nil, err
	}
	if partial == nil {
		partial = map[string]any{}
	}
	return id, partial, nil
}
