package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"nconnect-cli/internal/api"
)

// Form buffers are transient per-view input state. Each create/update form
// keeps its own buffer; a successful submission resets it to the initial
// template, a failed one keeps the values so corrections can be retried.

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSelect
)

type formField struct {
	Key      string
	Label    string
	Kind     fieldKind
	Options  []string
	Required bool
	Secret   bool

	value   string
	initial string
	optIdx  int
}

func textField(key, label string, required bool) formField {
	return formField{Key: key, Label: label, Required: required}
}

func secretField(key, label string) formField {
	return formField{Key: key, Label: label, Required: true, Secret: true}
}

func selectField(key, label string, options ...string) formField {
	return formField{Key: key, Label: label, Kind: fieldSelect, Options: options, value: options[0]}
}

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

type formModel struct {
	title  string
	fields []formField
	focus  int

	// submitting blocks input between a submit and its actionDoneMsg, so one
	// open form cannot issue overlapping writes.
	submitting bool

	// Server-side rejection detail, kept until the next submit.
	err       string
	fieldErrs map[string]string
}

func newForm(title string, fields ...formField) *formModel {
	for i := range fields {
		fields[i].initial = fields[i].value
	}
	return &formModel{title: title, fields: fields}
}

func (f *formModel) Value(key string) string {
	for i := range f.fields {
		if f.fields[i].Key == key {
			return strings.TrimSpace(f.fields[i].value)
		}
	}
	return ""
}

// Values snapshots the current field values. Submission commands read the
// snapshot on their own goroutine; they never touch the live form.
func (f *formModel) Values() map[string]string {
	vals := make(map[string]string, len(f.fields))
	for i := range f.fields {
		vals[f.fields[i].Key] = strings.TrimSpace(f.fields[i].value)
	}
	return vals
}

func (f *formModel) SetValue(key, v string) {
	for i := range f.fields {
		if f.fields[i].Key == key {
			f.fields[i].value = v
			for oi, opt := range f.fields[i].Options {
				if opt == v {
					f.fields[i].optIdx = oi
				}
			}
			return
		}
	}
}

// Reset restores the initial template. Called after a successful submit.
func (f *formModel) Reset() {
	for i := range f.fields {
		f.fields[i].value = f.fields[i].initial
		f.fields[i].optIdx = 0
	}
	f.focus = 0
	f.submitting = false
	f.err = ""
	f.fieldErrs = nil
}

// missingRequired returns the key of the first required field that is empty.
func (f *formModel) missingRequired() string {
	for i := range f.fields {
		if f.fields[i].Required && strings.TrimSpace(f.fields[i].value) == "" {
			return f.fields[i].Key
		}
	}
	return ""
}

// ApplyError records a server rejection on the form, field-by-field where
// the payload allows it.
func (f *formModel) ApplyError(err error) {
	f.submitting = false
	f.fieldErrs = nil
	if re, ok := err.(*api.RequestError); ok {
		f.fieldErrs = map[string]string{}
		for i := range f.fields {
			if msg := re.FieldError(f.fields[i].Key); msg != "" {
				f.fieldErrs[f.fields[i].Key] = msg
			}
		}
	}
	f.err = err.Error()
}

// Update handles one key press. It reports what the caller should do next;
// the form never performs the submission itself.
func (f *formModel) Update(msg tea.KeyMsg) formAction {
	if f.submitting {
		return formNone
	}
	switch msg.String() {
	case "esc", "ctrl+g":
		return formCancel
	case "ctrl+s":
		return formSubmit
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
		return formNone
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
		return formNone
	case "enter":
		if f.focus == len(f.fields)-1 {
			return formSubmit
		}
		f.focus++
		return formNone
	}

	fld := &f.fields[f.focus]
	switch fld.Kind {
	case fieldSelect:
		switch msg.String() {
		case "left", "h":
			fld.optIdx = (fld.optIdx - 1 + len(fld.Options)) % len(fld.Options)
			fld.value = fld.Options[fld.optIdx]
		case "right", "l", " ":
			fld.optIdx = (fld.optIdx + 1) % len(fld.Options)
			fld.value = fld.Options[fld.optIdx]
		}
	default:
		switch msg.Type {
		case tea.KeyBackspace:
			if fld.value != "" {
				rs := []rune(fld.value)
				fld.value = string(rs[:len(rs)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			fld.value += string(msg.Runes)
			if msg.Type == tea.KeySpace {
				fld.value += " "
			}
		}
	}
	return formNone
}

func (f *formModel) View(termW int) string {
	bodyW := modalBodyWidth(termW)
	labelW := 0
	for i := range f.fields {
		if w := len(f.fields[i].Label); w > labelW {
			labelW = w
		}
	}

	var b strings.Builder
	for i := range f.fields {
		fld := &f.fields[i]

		label := fld.Label + strings.Repeat(" ", labelW-len(fld.Label))
		if i == f.focus {
			label = glyphArrow() + " " + label
		} else {
			label = "  " + label
		}

		shown := fld.value
		if fld.Secret {
			shown = strings.Repeat("*", len([]rune(shown)))
		}
		if fld.Kind == fieldSelect {
			shown = "< " + shown + " >"
		} else if i == f.focus {
			shown += "_"
		}

		inputW := bodyW - labelW - 4
		b.WriteString(label + " " + renderInputLine(inputW, truncate(shown, inputW)))
		b.WriteString("\n")

		if msg, ok := f.fieldErrs[fld.Key]; ok {
			b.WriteString("  " + styleError().Render(truncate(msg, bodyW-2)) + "\n")
		}
	}

	if f.err != "" && len(f.fieldErrs) == 0 {
		b.WriteString("\n" + styleError().Width(bodyW).Render(f.err) + "\n")
	}

	help := "enter/tab: next   ctrl+s: submit   esc: cancel"
	if f.submitting {
		help = "working…"
	}
	b.WriteString("\n" + styleMuted().Width(bodyW).Render(help))

	return renderModalBox(termW, f.title, b.String())
}
