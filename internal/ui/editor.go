package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/roost/internal/dialog"
)

// fieldEditor edits one text field. Multiline fields get a textarea so line
// breaks survive editing; everything else is a single-line textinput.
type fieldEditor struct {
	input *textinput.Model
	area  *textarea.Model
}

func newFieldEditor(f dialog.Field, value string) *fieldEditor {
	if f.Multiline {
		ta := textarea.New()
		ta.Placeholder = f.Placeholder
		ta.ShowLineNumbers = true
		ta.CharLimit = 0
		ta.MaxHeight = 0
		ta.SetWidth(60)
		ta.SetHeight(6)
		ta.SetValue(value)
		return &fieldEditor{area: &ta}
	}

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = f.Placeholder
	in.CharLimit = 0
	in.Width = 40
	if f.Kind == dialog.FieldSecret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	in.SetValue(value)
	return &fieldEditor{input: &in}
}

func (e *fieldEditor) multiline() bool { return e.area != nil }

func (e *fieldEditor) Value() string {
	if e.area != nil {
		return e.area.Value()
	}
	return e.input.Value()
}

func (e *fieldEditor) Focus() tea.Cmd {
	if e.area != nil {
		return e.area.Focus()
	}
	return e.input.Focus()
}

func (e *fieldEditor) Blur() {
	if e.area != nil {
		e.area.Blur()
		return
	}
	e.input.Blur()
}

func (e *fieldEditor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if e.area != nil {
		*e.area, cmd = e.area.Update(msg)
		return cmd
	}
	*e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *fieldEditor) View() string {
	if e.area != nil {
		return e.area.View()
	}
	return e.input.View()
}
