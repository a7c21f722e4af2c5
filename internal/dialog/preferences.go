package dialog

import (
	"context"
	"regexp"

	"github.com/five82/roost/internal/form"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
	"github.com/five82/roost/internal/validate"
)

// Preference names edited by the single-purpose dialogs.
const (
	PrefCustomUserAgent            = "customUserAgent"
	PrefJSCodeInjection            = "jsCodeInjection"
	PrefCSSCodeInjection           = "cssCodeInjection"
	PrefAllowNodeInJSCodeInjection = "allowNodeInJsCodeInjection"
	PrefLicenseKey                 = "licenseKey"
)

// Code injection kinds.
const (
	InjectJS  = "js"
	InjectCSS = "css"
)

// orNil maps an empty string to nil so the host resets the preference.
func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CustomUserAgent edits the user agent string. Empty restores the default.
func CustomUserAgent(prefs host.Preferences) Spec {
	return Spec{
		Name:  "custom-user-agent",
		Title: "Custom User Agent",
		Seed:  form.Clean(map[string]any{PrefCustomUserAgent: prefs.String(PrefCustomUserAgent)}),
		Fields: func(map[string]any) []Field {
			return []Field{{Key: PrefCustomUserAgent, Label: "User agent", Placeholder: "Leave empty to use the default"}}
		},
		Commands: func(values map[string]any) ([]host.Command, error) {
			ua := form.Trimmed(values, PrefCustomUserAgent)
			return []host.Command{host.SetPreference(PrefCustomUserAgent, orNil(ua))}, nil
		},
		RestartNotice: true,
	}
}

// CodeInjection edits the injected JS or CSS.
func CodeInjection(kind string, prefs host.Preferences) Spec {
	key := PrefCSSCodeInjection
	title := "CSS Code Injection"
	if kind == InjectJS {
		key = PrefJSCodeInjection
		title = "JS Code Injection"
	}

	seed := map[string]any{key: prefs.String(key)}
	if kind == InjectJS {
		seed[PrefAllowNodeInJSCodeInjection] = prefs.Bool(PrefAllowNodeInJSCodeInjection)
	}

	return Spec{
		Name:  "code-injection",
		Title: title,
		Seed:  form.Clean(seed),
		Fields: func(map[string]any) []Field {
			fields := []Field{{Key: key, Label: "Code", Multiline: true}}
			if kind == InjectJS {
				fields = append(fields, Field{
					Key: PrefAllowNodeInJSCodeInjection, Label: "Allow access to Node.js", Kind: FieldChoice,
					Options: []override.Choice{{Label: "No", Value: false}, {Label: "Yes", Value: true}},
				})
			}
			return fields
		},
		Commands: func(values map[string]any) ([]host.Command, error) {
			cmds := []host.Command{host.SetPreference(key, orNil(form.Trimmed(values, key)))}
			if kind == InjectJS {
				allow, _ := values[PrefAllowNodeInJSCodeInjection].(bool)
				cmds = append(cmds, host.SetPreference(PrefAllowNodeInJSCodeInjection, allow))
			}
			return cmds, nil
		},
		RestartNotice: true,
	}
}

// LicenseRegistration records a license key. Only the key format is checked.
func LicenseRegistration(prefs host.Preferences) Spec {
	return Spec{
		Name:  "license-registration",
		Title: "License Registration",
		Seed:  form.Clean(map[string]any{PrefLicenseKey: prefs.String(PrefLicenseKey)}),
		Fields: func(map[string]any) []Field {
			return []Field{{Key: PrefLicenseKey, Label: "License key", Placeholder: "0-0-0-0-0"}}
		},
		Rules: func(map[string]any) validate.Rules {
			return validate.Rules{PrefLicenseKey: {FieldName: "License Key", Required: true, LicenseKey: true}}
		},
		Commands: func(values map[string]any) ([]host.Command, error) {
			return []host.Command{host.SetPreference(PrefLicenseKey, form.Trimmed(values, PrefLicenseKey))}, nil
		},
	}
}

const (
	fieldPassword        = "password"
	fieldConfirmPassword = "confirmPassword"
)

var minPassword = regexp.MustCompile(`^.{4,}$`)

// AppLock sets the app lock password. Passwords are sent as typed.
func AppLock() Spec {
	return Spec{
		Name:  "app-lock",
		Title: "App Lock",
		Seed:  map[string]any{},
		Fields: func(map[string]any) []Field {
			return []Field{
				{Key: fieldPassword, Label: "Password", Kind: FieldSecret},
				{Key: fieldConfirmPassword, Label: "Confirm password", Kind: FieldSecret},
			}
		},
		Rules: func(map[string]any) validate.Rules {
			return validate.Rules{
				fieldPassword:        {FieldName: "Password", Required: true, RegExp: minPassword},
				fieldConfirmPassword: {FieldName: "Confirmation", Required: true},
			}
		},
		Check: func(values map[string]any) map[string]string {
			pw, _ := values[fieldPassword].(string)
			confirm, _ := values[fieldConfirmPassword].(string)
			if pw != confirm {
				return map[string]string{fieldConfirmPassword: "Confirmation does not match."}
			}
			return nil
		},
		Commands: func(values map[string]any) ([]host.Command, error) {
			pw, _ := values[fieldPassword].(string)
			return []host.Command{host.SetAppLockPassword(pw)}, nil
		},
	}
}

// ClearAppLock removes the app lock.
func ClearAppLock(ctx context.Context, cmd host.Commander) error {
	return cmd.Send(ctx, host.ClearAppLock())
}
