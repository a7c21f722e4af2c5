// Package validate checks form edits against a declarative rule table.
//
// Validate is pure. It copies the incoming changes and adds one
// "<field>Error" entry per validated field, holding either the first failing
// rule's message ("Home URL is not a valid URL.") or nil. Keys that already
// end in "Error" are carried through untouched, so a merged buffer can be fed
// back in without producing "fooErrorError" annotations.
//
// Rules run in RuleSet field order: Required, URL, LessStrictURL, RegExp,
// Hostname, Port, LicenseKey. Only Required looks at empty values; the other
// checks treat an empty field as valid.
package validate
