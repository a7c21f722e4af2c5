package host

import (
	"encoding/json"
	"fmt"
	"time"
)

const hostTimestampLayout = "2006-01-02 15:04:05"

// Preferences is a flat preference name to value map as served by the host.
// Numbers decode as float64.
type Preferences map[string]any

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	if p == nil {
		return nil
	}
	return Preferences(cloneMap(p))
}

// Bool returns the boolean preference name, or false.
func (p Preferences) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// String returns the string preference name, or "".
func (p Preferences) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Int64 returns the numeric preference name truncated to int64, or 0.
func (p Preferences) Int64(name string) int64 {
	switch v := p[name].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// Workspace mirrors one workspace record.
type Workspace struct {
	ID          string         `json:"id"`
	Order       int            `json:"order"`
	Name        string         `json:"name,omitempty"`
	HomeURL     string         `json:"homeUrl,omitempty"`
	PicturePath string         `json:"picturePath,omitempty"`
	Active      bool           `json:"active,omitempty"`
	Hibernated  bool           `json:"hibernated,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// DisplayName returns Name, or a generated name derived from Order.
func (w Workspace) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("Workspace %d", w.Order+1)
}

// Clone returns a deep copy.
func (w Workspace) Clone() Workspace {
	w.Preferences = cloneMap(w.Preferences)
	return w
}

// Merge shallow-merges partial into w. Top-level keys in partial replace the
// corresponding fields, so a partial "preferences" replaces the whole
// override map.
func (w Workspace) Merge(partial map[string]any) (Workspace, error) {
	var merged Workspace
	if err := mergeJSON(w, partial, &merged); err != nil {
		return w, fmt.Errorf("merge workspace %s: %w", w.ID, err)
	}
	return merged, nil
}

// WorkspaceMeta is transient per-workspace UI state pushed by the host.
type WorkspaceMeta struct {
	BadgeCount  int    `json:"badgeCount,omitempty"`
	DidFailLoad bool   `json:"didFailLoad,omitempty"`
	IsLoading   bool   `json:"isLoading,omitempty"`
	Title       string `json:"title,omitempty"`
}

// Merge shallow-merges partial into m.
func (m WorkspaceMeta) Merge(partial map[string]any) (WorkspaceMeta, error) {
	var merged WorkspaceMeta
	if err := mergeJSON(m, partial, &merged); err != nil {
		return m, fmt.Errorf("merge workspace meta: %w", err)
	}
	return merged, nil
}

// PauseNotificationsInfo describes an active notification pause, if any.
type PauseNotificationsInfo struct {
	Reason   string         `json:"reason"`
	Tilt     bool           `json:"tilt,omitempty"`
	Schedule *PauseSchedule `json:"schedule,omitempty"`
	Until    string         `json:"until,omitempty"`
}

// PauseSchedule is the daily do-not-disturb window.
type PauseSchedule struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ParsedUntil returns Until as time.Time when possible.
func (p PauseNotificationsInfo) ParsedUntil() time.Time {
	return parseTime(p.Until)
}

func mergeJSON(base any, partial map[string]any, dest any) error {
	data, err := json.Marshal(base)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k, v := range partial {
		fields[k] = v
	}
	data, err = json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(hostTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
