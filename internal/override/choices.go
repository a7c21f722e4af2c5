package override

import "fmt"

// Choice is one option of a workspace-level setting control. Value is nil for
// the inherit option.
type Choice struct {
	Label string
	Value any
}

// GlobalLabel renders the inherit option, e.g. "Use global preference (Yes)".
func GlobalLabel(global string) string {
	return fmt.Sprintf("Use global preference (%s)", global)
}

// YesNo renders a boolean the way the choice labels do.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// TriState returns inherit, Yes and No choices for a boolean setting.
func TriState(global bool) []Choice {
	return []Choice{
		{Label: GlobalLabel(YesNo(global)), Value: nil},
		{Label: "Yes", Value: true},
		{Label: "No", Value: false},
	}
}

// ForceOffChoices returns the two choices of a ForceOff setting.
func ForceOffChoices(global bool) []Choice {
	return []Choice{
		{Label: GlobalLabel(YesNo(global)), Value: nil},
		{Label: "No", Value: false},
	}
}
