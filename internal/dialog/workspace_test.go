package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
)

func TestWorkspaceOverrides_MapRoundTrip(t *testing.T) {
	m := map[string]any{
		PrefHibernateWhenUnused: false,
		PrefAutoRefreshInterval: float64(60000),
		PrefUnreadCountBadge:    false,
		PrefDisableAudio:        nil,
	}
	o := WorkspaceOverridesFromMap(m)

	v, ok := o.HibernateWhenUnused.Get()
	assert.True(t, ok)
	assert.False(t, v)
	assert.False(t, o.DisableAudio.IsSet())
	assert.True(t, o.UnreadCountBadge.IsOff())
	assert.Equal(t, int64(60000), o.AutoRefreshInterval.Resolve(0))

	assert.Equal(t, map[string]any{
		PrefHibernateWhenUnused: false,
		PrefAutoRefreshInterval: int64(60000),
		PrefUnreadCountBadge:    false,
	}, o.Map())
}

func TestWorkspaceOverrides_InheritDisappears(t *testing.T) {
	o := WorkspaceOverrides{
		HibernateWhenUnused: override.Inherit[bool](),
		AutoRefresh:         override.Value(true),
	}
	assert.Equal(t, map[string]any{PrefAutoRefresh: true}, o.Map())
	assert.Empty(t, WorkspaceOverrides{}.Map())
}

func TestWorkspaceOverrides_BadgeCannotForceOn(t *testing.T) {
	o := WorkspaceOverridesFromMap(map[string]any{PrefUnreadCountBadge: true})
	assert.False(t, o.UnreadCountBadge.IsOff())
	assert.False(t, o.UnreadCountBadge.Resolve(false))
	assert.NotContains(t, o.Map(), PrefUnreadCountBadge)
}

func TestEditWorkspace_Save(t *testing.T) {
	w := host.Workspace{
		ID:      "w1",
		Order:   2,
		HomeURL: "https://mail.example.com",
		Preferences: map[string]any{
			PrefHibernateWhenUnused: true,
			"transparentBackground": true,
		},
	}
	global := host.Preferences{PrefUnreadCountBadge: true}
	d, cmd := openDialog(EditWorkspace(w, global))
	assert.Equal(t, "Edit Workspace 3", d.Title())

	fields := d.Fields()
	badge := fields[len(fields)-1]
	assert.Equal(t, PrefUnreadCountBadge, badge.Key)
	assert.Equal(t, "Use global preference (Yes)", badge.Options[0].Label)
	assert.Len(t, badge.Options, 2)

	d.SetOverride(groupPreferences, PrefHibernateWhenUnused, nil)
	d.SetOverride(groupPreferences, PrefUnreadCountBadge, false)
	d.Update(map[string]any{"name": " Work "})

	res := d.Save(context.Background())
	require.NoError(t, res.Err)
	require.Equal(t, []string{host.CmdSetWorkspace}, cmd.names(), "unchanged home URL needs no reload")

	args := cmd.args()[0]
	assert.Equal(t, "w1", args[0])
	assert.Equal(t, map[string]any{
		"name":    "Work",
		"homeUrl": "https://mail.example.com",
		"preferences": map[string]any{
			"transparentBackground": true,
			PrefUnreadCountBadge:    false,
		},
	}, args[1])
}

func TestEditWorkspace_HomeURLChangeRequestsReload(t *testing.T) {
	w := host.Workspace{ID: "w1", HomeURL: "https://a.example.com"}
	d, cmd := openDialog(EditWorkspace(w, host.Preferences{}))

	d.Update(map[string]any{"homeUrl": "b.example.com"})
	assert.Empty(t, d.Error("homeUrl"))
	require.NoError(t, d.Save(context.Background()).Err)

	assert.Equal(t, []string{host.CmdSetWorkspace, host.CmdRequestReloadDialog}, cmd.names())
	assert.Equal(t, "https://b.example.com", cmd.args()[0][1].(map[string]any)["homeUrl"])
}

func TestEditWorkspace_BareHomeURLUnchangedNoReload(t *testing.T) {
	w := host.Workspace{ID: "w1", Name: "Mail", HomeURL: "mail.example.com"}
	d, cmd := openDialog(EditWorkspace(w, host.Preferences{}))

	d.Update(map[string]any{"name": "Inbox"})
	require.NoError(t, d.Save(context.Background()).Err)

	assert.Equal(t, []string{host.CmdSetWorkspace}, cmd.names())
	assert.Equal(t, "https://mail.example.com", cmd.args()[0][1].(map[string]any)["homeUrl"])
}

func TestAddWorkspace(t *testing.T) {
	d, cmd := openDialog(AddWorkspace(host.Preferences{}))

	res := d.Save(context.Background())
	assert.ErrorIs(t, res.Err, ErrInvalid)
	assert.Equal(t, "Home URL is required.", d.Error("homeUrl"))

	d.Update(map[string]any{"homeUrl": "not a url"})
	assert.Equal(t, "Home URL is not a valid URL.", d.Error("homeUrl"))

	d.Update(map[string]any{"homeUrl": "example.com"})
	d.SetOverride(groupPreferences, PrefDisableAudio, true)
	require.NoError(t, d.Save(context.Background()).Err)

	assert.Equal(t, []string{host.CmdCreateWorkspace}, cmd.names())
	assert.Equal(t, map[string]any{
		"name":        "",
		"homeUrl":     "https://example.com",
		"preferences": map[string]any{PrefDisableAudio: true},
	}, cmd.args()[0][0])
}

func TestRemoveWorkspace(t *testing.T) {
	cmd := &fakeCommander{}
	require.NoError(t, RemoveWorkspace(context.Background(), cmd, "w1"))
	assert.Equal(t, []any{"w1"}, cmd.args()[0])
}
