package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestFormTypingAndFocus(t *testing.T) {
	f := newForm("test",
		textField("title", "Title", true),
		textField("body", "Body", false),
	)

	assert.Equal(t, formNone, f.Update(keyRunes("hi")))
	assert.Equal(t, "hi", f.Value("title"))

	// Backspace edits the focused field.
	f.Update(key(tea.KeyBackspace))
	assert.Equal(t, "h", f.Value("title"))

	// Enter advances; enter on the last field submits.
	assert.Equal(t, formNone, f.Update(key(tea.KeyEnter)))
	f.Update(keyRunes("x"))
	assert.Equal(t, "x", f.Value("body"))
	assert.Equal(t, formSubmit, f.Update(key(tea.KeyEnter)))
}

func TestFormSelectCycling(t *testing.T) {
	f := newForm("test",
		selectField("priority", "Priority", "low", "medium", "high"),
	)
	assert.Equal(t, "low", f.Value("priority"))

	f.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "medium", f.Value("priority"))

	f.Update(tea.KeyMsg{Type: tea.KeyLeft})
	f.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "high", f.Value("priority"), "cycling wraps")
}

func TestFormResetRestoresTemplate(t *testing.T) {
	f := newForm("test",
		textField("title", "Title", true),
		selectField("priority", "Priority", "low", "high"),
	)
	f.SetValue("title", "leak")
	f.Update(tea.KeyMsg{Type: tea.KeyDown})
	f.Update(tea.KeyMsg{Type: tea.KeyRight})
	f.err = "boom"
	f.fieldErrs = map[string]string{"title": "taken"}

	f.Reset()

	assert.Empty(t, f.Value("title"))
	assert.Equal(t, "low", f.Value("priority"))
	assert.Equal(t, 0, f.focus)
	assert.Empty(t, f.err)
	assert.Nil(t, f.fieldErrs)
}

func TestFormMissingRequired(t *testing.T) {
	f := newForm("test",
		textField("title", "Title", true),
		textField("note", "Note", false),
	)
	assert.Equal(t, "title", f.missingRequired())

	f.SetValue("title", "x")
	assert.Empty(t, f.missingRequired())
}

func TestFormCancel(t *testing.T) {
	f := newForm("test", textField("title", "Title", true))
	assert.Equal(t, formCancel, f.Update(key(tea.KeyEsc)))
}

func TestFormIgnoresInputWhileSubmitting(t *testing.T) {
	f := newForm("test", textField("title", "Title", true))
	f.SetValue("title", "leak")
	f.submitting = true

	assert.Equal(t, formNone, f.Update(keyRunes("x")))
	assert.Equal(t, "leak", f.Value("title"))
	assert.Equal(t, formNone, f.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))
	assert.Equal(t, formNone, f.Update(key(tea.KeyEsc)))

	// A server rejection reopens the form for corrections.
	f.ApplyError(assert.AnError)
	assert.False(t, f.submitting)
}

func TestFormValuesSnapshot(t *testing.T) {
	f := newForm("test",
		textField("title", "Title", true),
		selectField("priority", "Priority", "low", "high"),
	)
	f.SetValue("title", "  leak  ")

	vals := f.Values()
	assert.Equal(t, "leak", vals["title"])
	assert.Equal(t, "low", vals["priority"])

	// Later edits must not show up in an already-taken snapshot.
	f.SetValue("title", "changed")
	assert.Equal(t, "leak", vals["title"])
}
