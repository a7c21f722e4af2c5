package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roost/internal/dialog"
	"github.com/five82/roost/internal/validate"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// saveResultMsg carries a finished dialog save back to the UI loop.
type saveResultMsg struct {
	result dialog.Result
}

// flashMsg shows a transient status line.
type flashMsg struct {
	text string
	err  bool
}

func flashCmd(text string, err bool) tea.Cmd {
	return func() tea.Msg { return flashMsg{text: text, err: err} }
}

// formModal drives a dialog.Dialog with text editors and choice cyclers. While
// a save is in flight the dialog belongs to the save command, so the modal
// renders from its cached values and fields.
type formModal struct {
	ctx    context.Context
	dialog *dialog.Dialog

	fields []dialog.Field
	values map[string]any
	inputs map[string]*fieldEditor
	focus  int

	saving bool
	status string
}

func newFormModal(ctx context.Context, d *dialog.Dialog) (*formModal, tea.Cmd) {
	m := &formModal{
		ctx:    ctx,
		dialog: d,
		inputs: make(map[string]*fieldEditor),
	}
	m.sync()
	return m, m.focusCurrent()
}

func fieldID(f dialog.Field) string {
	if f.Group != "" {
		return f.Group + "." + f.Key
	}
	return f.Key
}

// fieldValue reads f from a buffer snapshot.
func fieldValue(values map[string]any, f dialog.Field) any {
	if f.Group == "" {
		return values[f.Key]
	}
	group, _ := values[f.Group].(map[string]any)
	return group[f.Key]
}

func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// sync refreshes the cached view of the dialog and creates inputs for fields
// that appeared since the last sync.
func (m *formModal) sync() {
	m.values = m.dialog.Values()
	m.fields = m.dialog.Fields()
	for _, f := range m.fields {
		if f.Kind == dialog.FieldChoice {
			continue
		}
		id := fieldID(f)
		if _, ok := m.inputs[id]; ok {
			continue
		}
		m.inputs[id] = newFieldEditor(f, valueText(fieldValue(m.values, f)))
	}
	if m.focus >= len(m.fields) {
		m.focus = max(len(m.fields)-1, 0)
	}
}

func (m *formModal) current() (dialog.Field, bool) {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return dialog.Field{}, false
	}
	return m.fields[m.focus], true
}

// focusCurrent focuses the input under the cursor and blurs the rest.
func (m *formModal) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i, f := range m.fields {
		in, ok := m.inputs[fieldID(f)]
		if !ok {
			continue
		}
		if i == m.focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (m *formModal) move(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.focusCurrent()
}

// set writes one field value into the dialog.
func (m *formModal) set(f dialog.Field, value any) {
	if f.Group != "" {
		m.dialog.SetOverride(f.Group, f.Key, value)
	} else {
		m.dialog.Update(map[string]any{f.Key: value})
	}
	m.sync()
}

// cycle steps a choice field through its options.
func (m *formModal) cycle(f dialog.Field, delta int) {
	if len(f.Options) == 0 {
		return
	}
	current := fieldValue(m.values, f)
	idx := -1
	for i, opt := range f.Options {
		if opt.Value == current {
			idx = i
			break
		}
	}
	if idx < 0 && delta < 0 {
		idx = 0
	}
	next := f.Options[(idx+delta+len(f.Options))%len(f.Options)]
	m.set(f, next.Value)
}

func (m *formModal) save() tea.Cmd {
	if !m.dialog.Validate() {
		m.sync()
		m.status = "Fix the highlighted fields."
		return nil
	}
	m.saving = true
	m.status = "Saving..."
	ctx, d := m.ctx, m.dialog
	return func() tea.Msg {
		return saveResultMsg{result: d.Save(ctx)}
	}
}

func (m *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case saveResultMsg:
		m.saving = false
		res := msg.result
		if res.Saved {
			return m, flashCmd(m.dialog.Title()+" saved", false), true
		}
		m.sync()
		if errors.Is(res.Err, dialog.ErrInvalid) {
			m.status = "Fix the highlighted fields."
		} else if res.Err != nil {
			m.status = res.Err.Error()
		}
		return m, nil, false

	case tea.KeyMsg:
		if m.saving {
			return m, nil, false
		}
		return m.handleKey(msg, keys)
	}

	if m.saving {
		return m, nil, false
	}
	if f, ok := m.current(); ok {
		if in, ok := m.inputs[fieldID(f)]; ok {
			return m, in.Update(msg), false
		}
	}
	return m, nil, false
}

func (m *formModal) handleKey(msg tea.KeyMsg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch {
	case msg.String() == "esc":
		m.dialog.Close()
		return m, nil, true
	case key.Matches(msg, keys.Save):
		return m, m.save(), false
	case msg.String() == "tab" || msg.String() == "shift+tab":
		if msg.String() == "tab" {
			return m, m.move(1), false
		}
		return m, m.move(-1), false
	}

	f, ok := m.current()
	if !ok {
		return m, nil, false
	}

	if f.Kind == dialog.FieldChoice {
		switch {
		case key.Matches(msg, keys.Left):
			m.cycle(f, -1)
		case key.Matches(msg, keys.Right):
			m.cycle(f, 1)
		case key.Matches(msg, keys.Next):
			return m, m.move(1), false
		case key.Matches(msg, keys.Prev):
			return m, m.move(-1), false
		case key.Matches(msg, keys.Confirm):
			if m.focus == len(m.fields)-1 {
				return m, m.save(), false
			}
			return m, m.move(1), false
		}
		return m, nil, false
	}

	in := m.inputs[fieldID(f)]
	// A multiline editor keeps enter and the arrows for itself; tab leaves it.
	if !in.multiline() {
		switch {
		case key.Matches(msg, keys.Next):
			return m, m.move(1), false
		case key.Matches(msg, keys.Prev):
			return m, m.move(-1), false
		case key.Matches(msg, keys.Confirm):
			if m.focus == len(m.fields)-1 {
				return m, m.save(), false
			}
			return m, m.move(1), false
		}
	}

	before := in.Value()
	cmd := in.Update(msg)
	if in.Value() != before {
		m.set(f, in.Value())
		m.status = ""
	}
	return m, cmd, false
}

func (m *formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	labelWidth := 0
	for _, f := range m.fields {
		labelWidth = max(labelWidth, len([]rune(f.Label)))
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.dialog.Title()))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		marker := "  "
		label := styles.MutedText.Render(padRight(f.Label, labelWidth))
		if i == m.focus {
			marker = styles.AccentText.Render("▸ ")
			label = styles.Text.Bold(true).Render(padRight(f.Label, labelWidth))
		}
		b.WriteString(marker + label + "  ")

		if f.Kind == dialog.FieldChoice {
			b.WriteString(m.renderChoice(f, styles, i == m.focus))
		} else if in, ok := m.inputs[fieldID(f)]; ok {
			if in.multiline() {
				b.WriteString("\n")
			}
			b.WriteString(in.View())
		}
		b.WriteString("\n")

		errKey := validate.ErrorKey(f.Key)
		if msg := valueText(m.values[errKey]); msg != "" && f.Group == "" {
			b.WriteString(strings.Repeat(" ", labelWidth+4))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		style := styles.WarningText
		if !m.saving {
			style = styles.DangerText
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("ctrl+s save · esc cancel · tab next field · ←/→ change option"))

	modalWidth := min(max(width-8, 40), 80)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.Modal.Width(modalWidth).Render(b.String()))
}

func (m *formModal) renderChoice(f dialog.Field, styles Styles, focused bool) string {
	current := fieldValue(m.values, f)
	label := ""
	for _, opt := range f.Options {
		if opt.Value == current {
			label = opt.Label
			break
		}
	}
	if label == "" {
		label = "(choose)"
	}
	if focused {
		return styles.AccentText.Render("‹ " + label + " ›")
	}
	return styles.Text.Render(label)
}

// confirmModal asks a yes/no question and runs onYes on acceptance.
type confirmModal struct {
	title  string
	prompt string
	onYes  tea.Cmd
}

func (m confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Accept):
		return m, m.onYes, true
	case key.Matches(keyMsg, keys.Decline):
		return m, nil, true
	}
	return m, nil, false
}

func (m confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render(m.title) + "\n\n" +
		styles.Text.Render(m.prompt) + "\n\n" +
		styles.FaintText.Render("y confirm · n cancel")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.Modal.Width(min(max(width-8, 30), 60)).Render(content))
}
