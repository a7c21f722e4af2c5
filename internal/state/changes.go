package state

import "sort"

// ChangeKind identifies what part of the cache changed.
type ChangeKind int

const (
	ChangeReloaded ChangeKind = iota
	ChangePreference
	ChangeSystemPreference
	ChangeWorkspace
	ChangeWorkspaces
	ChangeWorkspaceMeta
	ChangeWorkspaceMetas
	ChangePauseNotifications
	ChangeNotice
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReloaded:
		return "reloaded"
	case ChangePreference:
		return "preference"
	case ChangeSystemPreference:
		return "system-preference"
	case ChangeWorkspace:
		return "workspace"
	case ChangeWorkspaces:
		return "workspaces"
	case ChangeWorkspaceMeta:
		return "workspace-meta"
	case ChangeWorkspaceMetas:
		return "workspace-metas"
	case ChangePauseNotifications:
		return "pause-notifications"
	case ChangeNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Change describes one applied update. Key is the preference name or
// workspace id when the change is scoped to one. Notice carries the host
// notice name for ChangeNotice.
type Change struct {
	Kind   ChangeKind
	Key    string
	Notice string
}

// Subscribe registers fn to receive every change in apply order. fn runs on
// the applying goroutine and must not call Apply* or Dispatch. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// notify is called with applyMu held.
func (s *Store) notify(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Change), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
