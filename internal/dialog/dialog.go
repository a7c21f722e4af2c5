package dialog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/roost/internal/form"
	"github.com/five82/roost/internal/host"
	"github.com/five82/roost/internal/override"
	"github.com/five82/roost/internal/validate"
)

// ErrInvalid is returned in Result.Err when validation blocked the save.
var ErrInvalid = errors.New("form has errors")

// FieldKind selects the input control for a field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldSecret
	FieldChoice
)

// Field describes one input. Fields with a Group live in the nested map under
// that key (workspace overrides).
type Field struct {
	Key         string
	Group       string
	Label       string
	Kind        FieldKind
	Options     []override.Choice
	Placeholder string
	Multiline   bool
}

// Spec is the static description of a dialog kind.
type Spec struct {
	Name  string
	Title string
	Seed  map[string]any

	// Fields and Rules receive the current buffer so they can vary with a
	// discriminant field.
	Fields func(values map[string]any) []Field
	Rules  func(values map[string]any) validate.Rules

	// Discriminants lists fields whose change swaps the rule table.
	Discriminants []string

	// Commands turns a valid buffer into host commands.
	Commands func(values map[string]any) ([]host.Command, error)

	// Check adds cross-field errors the rule table cannot express, keyed by
	// field. It runs only on Save and only for fields the rules passed.
	Check func(values map[string]any) map[string]string

	// RestartNotice sends request-restart-notice after the commands.
	RestartNotice bool
}

// Result reports the outcome of Save.
type Result struct {
	Saved    bool
	Commands []host.Command
	Err      error
}

// Dialog is one open editing surface. Like its buffer, it is owned by the UI
// loop.
type Dialog struct {
	spec Spec
	buf  *form.Buffer
	cmd  host.Commander
	log  *zap.Logger
}

// New returns a closed dialog for spec.
func New(spec Spec, cmd host.Commander, logger *zap.Logger) *Dialog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialog{
		spec: spec,
		buf:  form.New(),
		cmd:  cmd,
		log:  logger.With(zap.String("dialog", spec.Name)),
	}
}

// Name returns the dialog kind.
func (d *Dialog) Name() string { return d.spec.Name }

// Title returns the heading to display.
func (d *Dialog) Title() string { return d.spec.Title }

// Open seeds the buffer and shows the dialog.
func (d *Dialog) Open(seed map[string]any) {
	d.buf.Open(seed)
}

// OpenDefault opens with the spec's own seed.
func (d *Dialog) OpenDefault() {
	d.buf.Open(d.spec.Seed)
}

// IsOpen reports whether the dialog is showing.
func (d *Dialog) IsOpen() bool { return d.buf.IsOpen() }

// Close hides the dialog, discarding nothing and sending nothing.
func (d *Dialog) Close() { d.buf.Close() }

// Values returns a copy of the buffer, error annotations included.
func (d *Dialog) Values() map[string]any { return d.buf.Values() }

// Fields returns the inputs for the current buffer.
func (d *Dialog) Fields() []Field {
	if d.spec.Fields == nil {
		return nil
	}
	return d.spec.Fields(d.buf.Values())
}

// Error returns the validation message for field, or "".
func (d *Dialog) Error(field string) string {
	s, _ := d.buf.Get(validate.ErrorKey(field))
	msg, _ := s.(string)
	return msg
}

// Update merges changes into the buffer and validates them. When a
// discriminant changes, every field the resulting rule table names and the
// buffer holds is revalidated, and errors for fields the table no longer names
// are cleared.
func (d *Dialog) Update(changes map[string]any) {
	d.buf.Update(changes)
	values := d.buf.Values()
	rules := d.rules(values)

	input := validate.Changes{}
	for k, v := range changes {
		input[k] = v
	}
	if d.touchesDiscriminant(changes) {
		for field := range rules {
			if v, ok := values[field]; ok {
				input[field] = v
			}
		}
		for k := range values {
			if field, ok := errorField(k); ok {
				if _, named := rules[field]; !named {
					input[k] = nil
				}
			}
		}
	}
	d.buf.Update(validate.Validate(input, rules))
}

// SetOverride edits one key of a grouped field. Nil inherits.
func (d *Dialog) SetOverride(group, key string, value any) {
	d.buf.SetOverride(group, key, value)
}

// Validate runs the full rule table against the buffer and merges the
// annotations back. Fields missing from the buffer validate as empty. It
// reports whether the buffer is valid.
func (d *Dialog) Validate() bool {
	values := d.buf.Values()
	rules := d.rules(values)

	input := make(validate.Changes, len(rules))
	for field := range rules {
		if v, ok := values[field]; ok {
			input[field] = v
		} else {
			input[field] = ""
		}
	}
	result := validate.Validate(input, rules)
	if d.spec.Check != nil {
		for field, msg := range d.spec.Check(values) {
			if validate.Message(result, field) == "" {
				result[validate.ErrorKey(field)] = msg
			}
		}
	}
	d.buf.Update(annotations(result))
	return !validate.HasErrors(result)
}

// Save validates the buffer and, when it is valid, sends the dialog's
// commands in order and closes. On a validation error nothing is sent and the
// dialog stays open. A delivery failure is returned in Result.Err and also
// leaves the dialog open; commands sent before the failure are not undone.
func (d *Dialog) Save(ctx context.Context) Result {
	if !d.Validate() {
		return Result{Err: ErrInvalid}
	}

	cmds, err := d.spec.Commands(d.buf.Values())
	if err != nil {
		return Result{Err: err}
	}
	if d.spec.RestartNotice {
		cmds = append(cmds, host.RequestRestartNotice())
	}

	for i, c := range cmds {
		if err := d.cmd.Send(ctx, c); err != nil {
			d.log.Warn("command delivery failed",
				zap.String("command", c.Name),
				zap.String("id", c.ID),
				zap.Error(err))
			return Result{Commands: cmds[:i], Err: fmt.Errorf("save %s: %w", d.spec.Name, err)}
		}
	}

	d.log.Info("dialog saved", zap.Int("commands", len(cmds)))
	d.buf.Close()
	return Result{Saved: true, Commands: cmds}
}

func (d *Dialog) rules(values map[string]any) validate.Rules {
	if d.spec.Rules == nil {
		return validate.Rules{}
	}
	return d.spec.Rules(values)
}

func (d *Dialog) touchesDiscriminant(changes map[string]any) bool {
	for _, k := range d.spec.Discriminants {
		if _, ok := changes[k]; ok {
			return true
		}
	}
	return false
}

func annotations(result validate.Changes) map[string]any {
	out := make(map[string]any)
	for k, v := range result {
		if _, ok := errorField(k); ok {
			out[k] = v
		}
	}
	return out
}

func errorField(key string) (string, bool) {
	n := len(key) - len(validate.ErrorSuffix)
	if n <= 0 || key[n:] != validate.ErrorSuffix {
		return "", false
	}
	return key[:n], true
}
