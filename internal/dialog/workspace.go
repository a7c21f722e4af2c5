package dialog

import (
	"context"
	"strings"

	"github.com/five82/roost/internal/form"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
	"github.com/five82/roost/internal/validate"
)

// Workspace-scoped preference names.
const (
	PrefHibernateWhenUnused  = "hibernateWhenUnused"
	PrefDisableNotifications = "disableNotifications"
	PrefDisableAudio         = "disableAudio"
	PrefAutoRefresh          = "autoRefresh"
	PrefUnreadCountBadge     = "unreadCountBadge"

	groupPreferences = "preferences"
)

// WorkspaceOverrides is the typed form of a workspace's sparse preference
// overrides. The unread badge can only be forced off per workspace.
type WorkspaceOverrides struct {
	HibernateWhenUnused  override.Override[bool]
	DisableNotifications override.Override[bool]
	DisableAudio         override.Override[bool]
	AutoRefresh          override.Override[bool]
	AutoRefreshInterval  override.Override[int64]
	UnreadCountBadge     override.ForceOff
}

// WorkspaceOverridesFromMap reads the known keys of a sparse override map.
// Values of the wrong type read as inherit.
func WorkspaceOverridesFromMap(m map[string]any) WorkspaceOverrides {
	var o WorkspaceOverrides
	o.HibernateWhenUnused, _ = override.FromAny[bool](m[PrefHibernateWhenUnused])
	o.DisableNotifications, _ = override.FromAny[bool](m[PrefDisableNotifications])
	o.DisableAudio, _ = override.FromAny[bool](m[PrefDisableAudio])
	o.AutoRefresh, _ = override.FromAny[bool](m[PrefAutoRefresh])
	o.AutoRefreshInterval, _ = override.FromAny[int64](m[PrefAutoRefreshInterval])
	o.UnreadCountBadge = override.ForceOffFromAny(m[PrefUnreadCountBadge])
	return o
}

// Map returns the sparse form of o. Inheriting settings are absent.
func (o WorkspaceOverrides) Map() map[string]any {
	return mergeOverrides(nil, o)
}

// mergeOverrides writes o over a copy of existing, keeping keys o does not
// model.
func mergeOverrides(existing map[string]any, o WorkspaceOverrides) map[string]any {
	out := make(map[string]any, len(existing))
	for k, v := range existing {
		out[k] = v
	}
	override.Put(out, PrefHibernateWhenUnused, o.HibernateWhenUnused)
	override.Put(out, PrefDisableNotifications, o.DisableNotifications)
	override.Put(out, PrefDisableAudio, o.DisableAudio)
	override.Put(out, PrefAutoRefresh, o.AutoRefresh)
	override.Put(out, PrefAutoRefreshInterval, o.AutoRefreshInterval)
	o.UnreadCountBadge.Put(out, PrefUnreadCountBadge)
	return form.Clean(out)
}

func workspaceRules(map[string]any) validate.Rules {
	return validate.Rules{
		"name":    {FieldName: "Name"},
		"homeUrl": {FieldName: "Home URL", Required: true, LessStrictURL: true},
	}
}

func workspaceFields(global host.Preferences) func(map[string]any) []Field {
	return func(map[string]any) []Field {
		return []Field{
			{Key: "name", Label: "Name", Placeholder: "Optional"},
			{Key: "homeUrl", Label: "Home URL", Placeholder: "mail.example.com"},
			{Key: PrefHibernateWhenUnused, Group: groupPreferences, Label: "Hibernate when not used", Kind: FieldChoice,
				Options: override.TriState(global.Bool(PrefHibernateWhenUnused))},
			{Key: PrefDisableNotifications, Group: groupPreferences, Label: "Disable notifications", Kind: FieldChoice,
				Options: override.TriState(global.Bool(PrefDisableNotifications))},
			{Key: PrefDisableAudio, Group: groupPreferences, Label: "Mute audio", Kind: FieldChoice,
				Options: override.TriState(global.Bool(PrefDisableAudio))},
			{Key: PrefAutoRefresh, Group: groupPreferences, Label: "Auto refresh", Kind: FieldChoice,
				Options: override.TriState(global.Bool(PrefAutoRefresh))},
			{Key: PrefUnreadCountBadge, Group: groupPreferences, Label: "Show unread count badge", Kind: FieldChoice,
				Options: override.ForceOffChoices(global.Bool(PrefUnreadCountBadge))},
		}
	}
}

// normalizeURL adds a scheme to bare hostnames accepted by LessStrictURL.
func normalizeURL(raw string) string {
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

func workspaceDescriptor(values map[string]any, existing map[string]any) map[string]any {
	nested, _ := values[groupPreferences].(map[string]any)
	return map[string]any{
		"name":           form.Trimmed(values, "name"),
		"homeUrl":        normalizeURL(form.Trimmed(values, "homeUrl")),
		groupPreferences: mergeOverrides(existing, WorkspaceOverridesFromMap(nested)),
	}
}

// AddWorkspace creates a workspace.
func AddWorkspace(global host.Preferences) Spec {
	return Spec{
		Name:   "add-workspace",
		Title:  "Add Workspace",
		Seed:   map[string]any{},
		Fields: workspaceFields(global),
		Rules:  workspaceRules,
		Commands: func(values map[string]any) ([]host.Command, error) {
			return []host.Command{host.CreateWorkspace(workspaceDescriptor(values, nil))}, nil
		},
	}
}

// EditWorkspace edits w and its overrides. Changing the home URL also asks
// the host to offer a reload.
func EditWorkspace(w host.Workspace, global host.Preferences) Spec {
	seed := form.Clean(map[string]any{
		"name":           w.Name,
		"homeUrl":        w.HomeURL,
		groupPreferences: w.Clone().Preferences,
	})
	return Spec{
		Name:   "edit-workspace",
		Title:  "Edit " + w.DisplayName(),
		Seed:   seed,
		Fields: workspaceFields(global),
		Rules:  workspaceRules,
		Commands: func(values map[string]any) ([]host.Command, error) {
			desc := workspaceDescriptor(values, w.Preferences)
			cmds := []host.Command{host.SetWorkspace(w.ID, desc)}
			if desc["homeUrl"] != normalizeURL(w.HomeURL) {
				cmds = append(cmds, host.RequestReloadDialog(w.ID))
			}
			return cmds, nil
		},
	}
}

// RemoveWorkspace asks the host to delete workspace id.
func RemoveWorkspace(ctx context.Context, cmd host.Commander, id string) error {
	return cmd.Send(ctx, host.RemoveWorkspace(id))
}
