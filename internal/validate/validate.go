package validate

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrorSuffix marks annotation keys produced by Validate.
const ErrorSuffix = "Error"

// Changes is a flat set of field edits, optionally carrying <field>Error keys.
type Changes map[string]any

// RuleSet declares the checks for one field. Checks run in field order and
// stop at the first failure.
type RuleSet struct {
	FieldName     string
	Required      bool
	URL           bool
	LessStrictURL bool
	RegExp        *regexp.Regexp
	Hostname      bool
	Port          bool
	LicenseKey    bool
}

// Rules maps a field to its RuleSet.
type Rules map[string]RuleSet

type check struct {
	enabled func(RuleSet) bool
	run     func(value string, rs RuleSet) (reason string, ok bool)
	// optional checks do not run against empty values
	optional bool
}

var checks = []check{
	{
		enabled: func(rs RuleSet) bool { return rs.Required },
		run: func(value string, _ RuleSet) (string, bool) {
			return "required", strings.TrimSpace(value) != ""
		},
	},
	{
		enabled:  func(rs RuleSet) bool { return rs.URL },
		run:      func(value string, _ RuleSet) (string, bool) { return "not a valid URL", isURL(value) },
		optional: true,
	},
	{
		enabled: func(rs RuleSet) bool { return rs.LessStrictURL },
		run: func(value string, _ RuleSet) (string, bool) {
			return "not a valid URL", isURL(value) || isURL("http://"+value)
		},
		optional: true,
	},
	{
		enabled: func(rs RuleSet) bool { return rs.RegExp != nil },
		run: func(value string, rs RuleSet) (string, bool) {
			return "not valid", rs.RegExp.MatchString(value)
		},
		optional: true,
	},
	{
		enabled:  func(rs RuleSet) bool { return rs.Hostname },
		run:      func(value string, _ RuleSet) (string, bool) { return "not a valid hostname", isHostname(value) },
		optional: true,
	},
	{
		enabled:  func(rs RuleSet) bool { return rs.Port },
		run:      func(value string, _ RuleSet) (string, bool) { return "not a valid port", isPort(value) },
		optional: true,
	},
	{
		enabled:  func(rs RuleSet) bool { return rs.LicenseKey },
		run:      func(value string, _ RuleSet) (string, bool) { return "not a valid license key", isLicenseKey(value) },
		optional: true,
	},
}

// Validate returns changes plus a <field>Error entry for every field that does
// not itself end in "Error". The entry holds the first failing rule's message,
// or nil when the field is valid or has no rules.
func Validate(changes Changes, rules Rules) Changes {
	out := make(Changes, len(changes)*2)
	for key, value := range changes {
		out[key] = value
	}
	for key, value := range changes {
		if strings.HasSuffix(key, ErrorSuffix) {
			continue
		}
		rs, ok := rules[key]
		if !ok {
			out[ErrorKey(key)] = nil
			continue
		}
		if msg := firstFailure(stringify(value), rs); msg != "" {
			out[ErrorKey(key)] = msg
		} else {
			out[ErrorKey(key)] = nil
		}
	}
	return out
}

// firstFailure checks the trimmed value, matching what a commit sends.
func firstFailure(value string, rs RuleSet) string {
	value = strings.TrimSpace(value)
	for _, c := range checks {
		if !c.enabled(rs) {
			continue
		}
		if c.optional && value == "" {
			continue
		}
		if reason, ok := c.run(value, rs); !ok {
			return fmt.Sprintf("%s is %s.", rs.FieldName, reason)
		}
	}
	return ""
}

// ErrorKey returns the annotation key for field.
func ErrorKey(field string) string {
	return field + ErrorSuffix
}

// Message returns the error annotation for field, or "" when valid.
func Message(changes Changes, field string) string {
	msg, _ := changes[ErrorKey(field)].(string)
	return msg
}

// HasErrors reports whether any <field>Error entry is non-nil.
func HasErrors(changes Changes) bool {
	for key, value := range changes {
		if !strings.HasSuffix(key, ErrorSuffix) {
			continue
		}
		if msg, ok := value.(string); ok && msg != "" {
			return true
		}
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

var hostnamePattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func isHostname(value string) bool {
	if net.ParseIP(value) != nil {
		return true
	}
	return len(value) <= 253 && hostnamePattern.MatchString(value)
}

func isURL(value string) bool {
	if strings.ContainsAny(value, " \t\n") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return false
	}
	host := u.Hostname()
	if host == "" || !isHostname(host) {
		return false
	}
	if port := u.Port(); port != "" && !isPort(port) {
		return false
	}
	return true
}

func isPort(value string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	return err == nil && n > 0 && n <= 65535
}

// License keys are issued as canonical UUIDs.
func isLicenseKey(value string) bool {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 36 {
		return false
	}
	_, err := uuid.Parse(trimmed)
	return err == nil
}
