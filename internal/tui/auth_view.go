package tui

import (
	"github.com/charmbracelet/lipgloss"
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
)

// authModel is the unauthenticated screen: the sign-in form, with a
// registration variant one keystroke away. Successful registration does not
// sign the user in; it routes back here with a notice.
type authModel struct {
	mode       authMode
	form       *formModel
	submitting bool
	notice     string
}

func newAuthModel() *authModel {
	a := &authModel{}
	a.setMode(authLogin)
	return a
}

func (a *authModel) setMode(m authMode) {
	a.mode = m
	a.submitting = false
	switch m {
	case authRegister:
		a.form = newForm("Create account",
			textField("username", "Username", true),
			textField("email", "Email", true),
			secretField("password", "Password"),
			secretField("password2", "Confirm"),
		)
	default:
		a.form = newForm("Sign in",
			textField("username", "Username", true),
			secretField("password", "Password"),
		)
	}
}

func (a *authModel) View(width, height int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Render("NeighborConnect")

	hint := "ctrl+r: create account   ctrl+c: quit"
	if a.mode == authRegister {
		hint = "ctrl+r: back to sign in   ctrl+c: quit"
	}

	parts := []string{title, ""}
	if a.notice != "" {
		parts = append(parts, styleSuccess().Render(a.notice), "")
	}
	body := a.form.View(width)
	if a.submitting {
		body = renderModalBox(width, a.form.title, styleMuted().Render("working…"))
	}
	parts = append(parts, body, "", styleMuted().Render(hint))

	return overlayCentered(width, height,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}
