package dialog

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/five82/roost/internal/form"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
	"github.com/five82/roost/internal/validate"
)

// Unit is a refresh interval unit.
type Unit string

const (
	Hours   Unit = "hours"
	Minutes Unit = "minutes"
	Seconds Unit = "seconds"
)

var unitMillis = map[Unit]int64{
	Hours:   3_600_000,
	Minutes: 60_000,
	Seconds: 1_000,
}

// Interval is a duration expressed in one unit, as the dialog shows it.
type Interval struct {
	Value int64
	Unit  Unit
}

// RoundTime expresses ms in the largest unit that divides it exactly. Values
// that are not whole seconds are rounded to the nearest second.
func RoundTime(ms int64) Interval {
	for _, u := range []Unit{Hours, Minutes, Seconds} {
		if ms != 0 && ms%unitMillis[u] == 0 {
			return Interval{Value: ms / unitMillis[u], Unit: u}
		}
	}
	return Interval{Value: int64(math.Round(float64(ms) / 1000)), Unit: Seconds}
}

// Milliseconds converts i back to milliseconds.
func (i Interval) Milliseconds() int64 {
	return i.Value * unitMillis[i.Unit]
}

func (i Interval) String() string {
	return fmt.Sprintf("%d %s", i.Value, i.Unit)
}

// Preference names used by the refresh interval dialog.
const (
	PrefAutoRefreshInterval = "autoRefreshInterval"

	fieldIntervalValue = "intervalValue"
	fieldIntervalUnit  = "intervalUnit"
)

// defaultRefreshInterval is used when no interval is configured.
const defaultRefreshInterval = 3_600_000

var unitChoices = []override.Choice{
	{Label: "Hours", Value: string(Hours)},
	{Label: "Minutes", Value: string(Minutes)},
	{Label: "Seconds", Value: string(Seconds)},
}

var positiveInteger = regexp.MustCompile(`^[1-9][0-9]*$`)

// configuredInterval falls back to the default when ms is unset.
func configuredInterval(ms int64) Interval {
	if ms <= 0 {
		ms = defaultRefreshInterval
	}
	return RoundTime(ms)
}

func intervalSeed(ms int64) map[string]any {
	i := configuredInterval(ms)
	return map[string]any{
		fieldIntervalValue: strconv.FormatInt(i.Value, 10),
		fieldIntervalUnit:  string(i.Unit),
	}
}

var errIntervalTooLarge = errors.New("interval is too large")

func intervalFromValues(values map[string]any) (Interval, error) {
	v, err := strconv.ParseInt(form.Trimmed(values, fieldIntervalValue), 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return Interval{}, errIntervalTooLarge
	}
	if err != nil {
		return Interval{}, fmt.Errorf("parse interval: %w", err)
	}
	u := Unit(form.Trimmed(values, fieldIntervalUnit))
	if _, ok := unitMillis[u]; !ok {
		return Interval{}, fmt.Errorf("unknown interval unit %q", u)
	}
	if v > math.MaxInt64/unitMillis[u] {
		return Interval{}, errIntervalTooLarge
	}
	return Interval{Value: v, Unit: u}, nil
}

// checkInterval reports an interval whose millisecond value does not fit.
func checkInterval(values map[string]any) map[string]string {
	if _, err := intervalFromValues(values); errors.Is(err, errIntervalTooLarge) {
		return map[string]string{fieldIntervalValue: "Interval is too large."}
	}
	return nil
}

func intervalFields(map[string]any) []Field {
	return []Field{
		{Key: fieldIntervalValue, Label: "Every", Placeholder: "1"},
		{Key: fieldIntervalUnit, Label: "Unit", Kind: FieldChoice, Options: unitChoices},
	}
}

func intervalRules(map[string]any) validate.Rules {
	return validate.Rules{
		fieldIntervalValue: {FieldName: "Interval", Required: true, RegExp: positiveInteger},
		fieldIntervalUnit:  {FieldName: "Unit", Required: true},
	}
}

// RefreshInterval edits the global auto-refresh interval.
func RefreshInterval(prefs host.Preferences) Spec {
	return Spec{
		Name:   "refresh-interval",
		Title:  "Auto Refresh Interval",
		Seed:   intervalSeed(prefs.Int64(PrefAutoRefreshInterval)),
		Fields: intervalFields,
		Rules:  intervalRules,
		Check:  checkInterval,
		Commands: func(values map[string]any) ([]host.Command, error) {
			i, err := intervalFromValues(values)
			if err != nil {
				return nil, err
			}
			return []host.Command{host.SetPreference(PrefAutoRefreshInterval, i.Milliseconds())}, nil
		},
	}
}

const (
	fieldIntervalSource = "intervalSource"
	intervalCustom      = "custom"
)

func customInterval(values map[string]any) bool {
	return values[fieldIntervalSource] == intervalCustom
}

// WorkspaceRefreshInterval edits one workspace's interval override, seeded
// from the effective value. Choosing the global preference removes the
// override. The workspace's other overrides are sent along unchanged because
// the host replaces the preferences map as a whole.
func WorkspaceRefreshInterval(w host.Workspace, global host.Preferences) Spec {
	base := WorkspaceOverridesFromMap(w.Preferences)
	globalMs := global.Int64(PrefAutoRefreshInterval)
	seed := intervalSeed(base.AutoRefreshInterval.Resolve(globalMs))
	if base.AutoRefreshInterval.IsSet() {
		seed[fieldIntervalSource] = intervalCustom
	}
	sources := []override.Choice{
		{Label: override.GlobalLabel(configuredInterval(globalMs).String())},
		{Label: "Custom", Value: intervalCustom},
	}

	return Spec{
		Name:  "refresh-interval",
		Title: "Auto Refresh Interval: " + w.DisplayName(),
		Seed:  seed,
		Fields: func(values map[string]any) []Field {
			fields := []Field{{Key: fieldIntervalSource, Label: "Interval", Kind: FieldChoice, Options: sources}}
			if customInterval(values) {
				fields = append(fields, intervalFields(values)...)
			}
			return fields
		},
		Rules: func(values map[string]any) validate.Rules {
			if !customInterval(values) {
				return validate.Rules{}
			}
			return intervalRules(values)
		},
		Discriminants: []string{fieldIntervalSource},
		Check: func(values map[string]any) map[string]string {
			if !customInterval(values) {
				return nil
			}
			return checkInterval(values)
		},
		Commands: func(values map[string]any) ([]host.Command, error) {
			o := base
			o.AutoRefreshInterval = override.Inherit[int64]()
			if customInterval(values) {
				i, err := intervalFromValues(values)
				if err != nil {
					return nil, err
				}
				o.AutoRefreshInterval = override.Value(i.Milliseconds())
			}
			prefs := mergeOverrides(w.Preferences, o)
			return []host.Command{host.SetWorkspace(w.ID, map[string]any{"preferences": prefs})}, nil
		},
	}
}
