package dialog

import (
	"github.com/five82/roost/internal/form"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
	"github.com/five82/roost/internal/validate"
)

// Proxy modes.
const (
	ProxyDirect       = "direct"
	ProxySystem       = "system"
	ProxyFixedServers = "fixed_servers"
	ProxyPacScript    = "pac_script"
)

// Proxy preference names.
const (
	PrefProxyMode        = "proxyMode"
	PrefProxyAddress     = "proxyAddress"
	PrefProxyPort        = "proxyPort"
	PrefProxyProtocol    = "proxyProtocol"
	PrefProxyBypassRules = "proxyBypassRules"
	PrefProxyPacScript   = "proxyPacScript"
)

// ProxySettings is the typed form of the proxy preferences.
type ProxySettings struct {
	Mode        string
	Address     string
	Port        string
	Protocol    string
	BypassRules string
	PacScript   string
}

// ProxyFromPreferences reads the proxy settings, defaulting Mode to system.
func ProxyFromPreferences(p host.Preferences) ProxySettings {
	s := ProxySettings{
		Mode:        p.String(PrefProxyMode),
		Address:     p.String(PrefProxyAddress),
		Port:        p.String(PrefProxyPort),
		Protocol:    p.String(PrefProxyProtocol),
		BypassRules: p.String(PrefProxyBypassRules),
		PacScript:   p.String(PrefProxyPacScript),
	}
	if s.Mode == "" {
		s.Mode = ProxySystem
	}
	return s
}

func proxyFromValues(values map[string]any) ProxySettings {
	return ProxySettings{
		Mode:        form.Trimmed(values, PrefProxyMode),
		Address:     form.Trimmed(values, PrefProxyAddress),
		Port:        form.Trimmed(values, PrefProxyPort),
		Protocol:    form.Trimmed(values, PrefProxyProtocol),
		BypassRules: form.Trimmed(values, PrefProxyBypassRules),
		PacScript:   form.Trimmed(values, PrefProxyPacScript),
	}
}

// Values returns the buffer form of s.
func (s ProxySettings) Values() map[string]any {
	return form.Clean(map[string]any{
		PrefProxyMode:        s.Mode,
		PrefProxyAddress:     s.Address,
		PrefProxyPort:        s.Port,
		PrefProxyProtocol:    s.Protocol,
		PrefProxyBypassRules: s.BypassRules,
		PrefProxyPacScript:   s.PacScript,
	})
}

// Commands returns the set-preference commands for the active mode. Fields of
// other modes are left as they are on the host.
func (s ProxySettings) Commands() []host.Command {
	cmds := []host.Command{host.SetPreference(PrefProxyMode, s.Mode)}
	switch s.Mode {
	case ProxyFixedServers:
		cmds = append(cmds,
			host.SetPreference(PrefProxyAddress, s.Address),
			host.SetPreference(PrefProxyPort, s.Port),
			host.SetPreference(PrefProxyProtocol, s.Protocol),
			host.SetPreference(PrefProxyBypassRules, s.BypassRules),
		)
	case ProxyPacScript:
		cmds = append(cmds, host.SetPreference(PrefProxyPacScript, s.PacScript))
	}
	return cmds
}

var proxyModeChoices = []override.Choice{
	{Label: "Do not use proxy", Value: ProxyDirect},
	{Label: "Use system proxy settings", Value: ProxySystem},
	{Label: "Manual proxy configuration", Value: ProxyFixedServers},
	{Label: "Automatic proxy configuration (PAC)", Value: ProxyPacScript},
}

var proxyProtocolChoices = []override.Choice{
	{Label: "SOCKS5", Value: "socks5"},
	{Label: "SOCKS4", Value: "socks4"},
	{Label: "HTTPS", Value: "https"},
	{Label: "HTTP", Value: "http"},
}

func proxyRules(values map[string]any) validate.Rules {
	switch form.Trimmed(values, PrefProxyMode) {
	case ProxyFixedServers:
		return validate.Rules{
			PrefProxyAddress:  {FieldName: "Address", Required: true, Hostname: true},
			PrefProxyPort:     {FieldName: "Port", Required: true, Port: true},
			PrefProxyProtocol: {FieldName: "Protocol", Required: true},
		}
	case ProxyPacScript:
		return validate.Rules{
			PrefProxyPacScript: {FieldName: "Script URL", Required: true, URL: true},
		}
	}
	return validate.Rules{}
}

func proxyFields(values map[string]any) []Field {
	fields := []Field{{Key: PrefProxyMode, Label: "Mode", Kind: FieldChoice, Options: proxyModeChoices}}
	switch form.Trimmed(values, PrefProxyMode) {
	case ProxyFixedServers:
		fields = append(fields,
			Field{Key: PrefProxyProtocol, Label: "Protocol", Kind: FieldChoice, Options: proxyProtocolChoices},
			Field{Key: PrefProxyAddress, Label: "Address", Placeholder: "proxy.example.com"},
			Field{Key: PrefProxyPort, Label: "Port", Placeholder: "8080"},
			Field{Key: PrefProxyBypassRules, Label: "Bypass rules", Placeholder: "localhost,*.internal"},
		)
	case ProxyPacScript:
		fields = append(fields, Field{Key: PrefProxyPacScript, Label: "Script URL", Placeholder: "https://example.com/proxy.pac"})
	}
	return fields
}

// Proxy returns the proxy settings dialog seeded from prefs.
func Proxy(prefs host.Preferences) Spec {
	return Spec{
		Name:          "proxy",
		Title:         "Proxy Settings",
		Seed:          ProxyFromPreferences(prefs).Values(),
		Fields:        proxyFields,
		Rules:         proxyRules,
		Discriminants: []string{PrefProxyMode},
		Commands: func(values map[string]any) ([]host.Command, error) {
			return proxyFromValues(values).Commands(), nil
		},
		RestartNotice: true,
	}
}
