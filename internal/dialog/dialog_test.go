package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roost/internal/host"
)

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

func (f *fakeCommander) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, c := range f.sent {
		out = append(out, c.Name)
	}
	return out
}

func (f *fakeCommander) args() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]any, 0, len(f.sent))
	for _, c := range f.sent {
		out = append(out, c.Args)
	}
	return out
}

func openDialog(spec Spec) (*Dialog, *fakeCommander) {
	cmd := &fakeCommander{}
	d := New(spec, cmd, nil)
	d.OpenDefault()
	return d, cmd
}

func TestSave_BlocksOnErrors(t *testing.T) {
	d, cmd := openDialog(LicenseRegistration(host.Preferences{}))

	d.Update(map[string]any{PrefLicenseKey: "not-a-key"})
	assert.Equal(t, "License Key is not a valid license key.", d.Error(PrefLicenseKey))

	res := d.Save(context.Background())
	assert.False(t, res.Saved)
	assert.ErrorIs(t, res.Err, ErrInvalid)
	assert.True(t, d.IsOpen())
	assert.Empty(t, cmd.names())
}

func TestSave_ProxyModeSwitchRequiresServerFields(t *testing.T) {
	d, cmd := openDialog(Proxy(host.Preferences{PrefProxyMode: ProxyDirect}))
	assert.Empty(t, d.Error(PrefProxyAddress))

	d.Update(map[string]any{PrefProxyMode: ProxyFixedServers})
	res := d.Save(context.Background())

	assert.False(t, res.Saved)
	assert.True(t, d.IsOpen())
	assert.Equal(t, "Address is required.", d.Error(PrefProxyAddress))
	assert.Equal(t, "Port is required.", d.Error(PrefProxyPort))
	assert.Equal(t, "Protocol is required.", d.Error(PrefProxyProtocol))
	assert.NotContains(t, cmd.names(), host.CmdSetPreference)
}

func TestUpdate_DiscriminantChangeRevalidates(t *testing.T) {
	d, _ := openDialog(Proxy(host.Preferences{PrefProxyMode: ProxyFixedServers, PrefProxyPort: "99999"}))

	d.Update(map[string]any{PrefProxyAddress: "proxy.local"})
	assert.Empty(t, d.Error(PrefProxyPort), "only changed fields validate")

	d.Update(map[string]any{PrefProxyMode: ProxyFixedServers})
	assert.Equal(t, "Port is not a valid port.", d.Error(PrefProxyPort))

	d.Update(map[string]any{PrefProxyMode: ProxyDirect})
	assert.Empty(t, d.Error(PrefProxyPort), "errors of fields the new mode does not use are cleared")
}

func TestSave_ProxyFixedServers(t *testing.T) {
	d, cmd := openDialog(Proxy(host.Preferences{}))
	assert.Equal(t, ProxySystem, d.Values()[PrefProxyMode])

	d.Update(map[string]any{PrefProxyMode: ProxyFixedServers})
	d.Update(map[string]any{
		PrefProxyAddress:  " proxy.local ",
		PrefProxyPort:     "3128",
		PrefProxyProtocol: "http",
	})
	res := d.Save(context.Background())
	require.NoError(t, res.Err)
	assert.True(t, res.Saved)
	assert.False(t, d.IsOpen())

	assert.Equal(t, []string{
		host.CmdSetPreference, host.CmdSetPreference, host.CmdSetPreference,
		host.CmdSetPreference, host.CmdSetPreference, host.CmdRequestRestartNotice,
	}, cmd.names())
	args := cmd.args()
	assert.Equal(t, []any{PrefProxyMode, ProxyFixedServers}, args[0])
	assert.Equal(t, []any{PrefProxyAddress, "proxy.local"}, args[1], "strings are trimmed")
	assert.Equal(t, []any{PrefProxyBypassRules, ""}, args[4])
}

func TestSave_ProxyPacScript(t *testing.T) {
	d, cmd := openDialog(Proxy(host.Preferences{}))
	d.Update(map[string]any{PrefProxyMode: ProxyPacScript, PrefProxyPacScript: "https://example.com/proxy.pac"})

	res := d.Save(context.Background())
	require.NoError(t, res.Err)
	assert.Len(t, res.Commands, 3)
	assert.Equal(t, []any{PrefProxyPacScript, "https://example.com/proxy.pac"}, cmd.args()[1])
}

func TestSave_DeliveryFailureKeepsDialogOpen(t *testing.T) {
	cmd := &fakeCommander{failOn: host.CmdRequestRestartNotice}
	d := New(CustomUserAgent(host.Preferences{}), cmd, nil)
	d.OpenDefault()
	d.Update(map[string]any{PrefCustomUserAgent: "Mozilla/5.0 roost"})

	res := d.Save(context.Background())
	require.Error(t, res.Err)
	assert.NotErrorIs(t, res.Err, ErrInvalid)
	assert.Contains(t, res.Err.Error(), "host unavailable")
	assert.False(t, res.Saved)
	assert.True(t, d.IsOpen())
	assert.Len(t, res.Commands, 1, "commands delivered before the failure are reported")
}

func TestSave_EmptyUserAgentResets(t *testing.T) {
	d, cmd := openDialog(CustomUserAgent(host.Preferences{PrefCustomUserAgent: "x"}))
	d.Update(map[string]any{PrefCustomUserAgent: "   "})

	require.NoError(t, d.Save(context.Background()).Err)
	assert.Equal(t, []any{PrefCustomUserAgent, nil}, cmd.args()[0])
}

func TestClose_SendsNothing(t *testing.T) {
	d, cmd := openDialog(CustomUserAgent(host.Preferences{}))
	d.Update(map[string]any{PrefCustomUserAgent: "edited"})
	d.Close()

	assert.False(t, d.IsOpen())
	assert.Empty(t, cmd.names())

	d.OpenDefault()
	assert.Empty(t, d.Values(), "reopening reseeds")
}

func TestCodeInjection(t *testing.T) {
	d, cmd := openDialog(CodeInjection(InjectJS, host.Preferences{PrefAllowNodeInJSCodeInjection: true}))
	assert.Len(t, d.Fields(), 2)

	d.Update(map[string]any{PrefJSCodeInjection: "console.log(1)\n"})
	require.NoError(t, d.Save(context.Background()).Err)
	assert.Equal(t, [][]any{
		{PrefJSCodeInjection, "console.log(1)"},
		{PrefAllowNodeInJSCodeInjection, true},
		{},
	}, cmd.args())

	css, _ := openDialog(CodeInjection(InjectCSS, host.Preferences{}))
	assert.Len(t, css.Fields(), 1)
	assert.Equal(t, PrefCSSCodeInjection, css.Fields()[0].Key)
}

func TestAppLock(t *testing.T) {
	d, cmd := openDialog(AppLock())

	d.Update(map[string]any{fieldPassword: "abc"})
	assert.Equal(t, "Password is not valid.", d.Error(fieldPassword))

	d.Update(map[string]any{fieldPassword: "secret", fieldConfirmPassword: "secrex"})
	res := d.Save(context.Background())
	assert.ErrorIs(t, res.Err, ErrInvalid)
	assert.Equal(t, "Confirmation does not match.", d.Error(fieldConfirmPassword))

	d.Update(map[string]any{fieldConfirmPassword: "secret"})
	require.NoError(t, d.Save(context.Background()).Err)
	assert.Equal(t, []string{host.CmdSetAppLockPassword}, cmd.names())
	assert.Equal(t, []any{"secret"}, cmd.args()[0])

	require.NoError(t, ClearAppLock(context.Background(), cmd))
	assert.Equal(t, host.CmdClearAppLock, cmd.names()[1])
}
