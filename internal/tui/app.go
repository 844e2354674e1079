package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"nconnect-cli/internal/api"
	"nconnect-cli/internal/config"
	"nconnect-cli/internal/session"
	"nconnect-cli/internal/state"
)

// Options carries everything the TUI needs. The session controller is the
// single owner of authentication state; views get read-only snapshots and
// report intents back through messages.
type Options struct {
	Config     config.Config
	Client     *api.Client
	Store      state.Store
	Controller *session.Controller
	Logger     *slog.Logger
	InitialTab string
}

type appModel struct {
	opts Options

	width, height int

	auth      *authModel
	console   *consoleModel
	verifying bool
	resumeGen int
}

func newAppModel(opts Options) appModel {
	m := appModel{opts: opts, auth: newAuthModel(), width: 80, height: 24}
	if gen, ok := opts.Controller.Resume(context.Background()); ok {
		m.verifying = true
		m.resumeGen = gen
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.verifying {
		return m.verifyCmd(m.resumeGen)
	}
	return nil
}

// verifyCmd runs the status round-trip for a login or resume issued under gen.
func (m appModel) verifyCmd(gen int) tea.Cmd {
	client := m.opts.Client
	timeout := m.opts.Config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		st, err := client.UserStatus(ctx)
		return sessionVerifiedMsg{gen: gen, st: st, err: err}
	}
}

func (m appModel) loginCmd(username, password string) tea.Cmd {
	ctrl := m.opts.Controller
	client := m.opts.Client
	timeout := m.opts.Config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		gen, err := ctrl.Login(ctx, username, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		st, verr := client.UserStatus(ctx)
		return sessionVerifiedMsg{gen: gen, st: st, err: verr}
	}
}

func (m appModel) registerCmd(username, email, password, password2 string) tea.Cmd {
	client := m.opts.Client
	timeout := m.opts.Config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return registerDoneMsg{err: client.Register(ctx, username, email, password, password2)}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	ctrl := m.opts.Controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.Config.Timeout)
		defer cancel()
		ctrl.Logout(ctx)
		return loggedOutMsg{}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.console != nil {
			cmd, _ := m.console.Update(msg)
			return m, cmd
		}
		return m, nil

	case sessionVerifiedMsg:
		outcome := m.opts.Controller.FinishVerify(context.Background(), msg.gen, msg.st, msg.err)
		switch outcome {
		case session.VerifyOK:
			m.verifying = false
			m.console = newConsole(m.opts.Controller.User(), m.opts.Config, m.opts.Client,
				m.opts.Store, m.opts.Logger, m.opts.InitialTab, m.width, m.height)
			return m, tea.Batch(m.console.refreshAll(), m.console.pollTick())
		case session.VerifyFailed:
			m.verifying = false
			m.console = nil
			m.auth = newAuthModel()
			m.auth.notice = "session expired, sign in again"
			return m, nil
		default:
			// Stale: a logout won while this was in flight.
			return m, nil
		}

	case loginFailedMsg:
		m.auth.submitting = false
		m.auth.notice = ""
		m.auth.form.ApplyError(msg.err)
		return m, nil

	case registerDoneMsg:
		m.auth.submitting = false
		if msg.err != nil {
			m.auth.form.ApplyError(msg.err)
			return m, nil
		}
		m.auth.setMode(authLogin)
		m.auth.notice = "account created, sign in"
		return m, nil

	case loggedOutMsg:
		m.console = nil
		m.verifying = false
		m.auth = newAuthModel()
		return m, nil
	}

	if m.console != nil {
		cmd, logout := m.console.Update(msg)
		if logout {
			m.console.tracker.InvalidateAll()
			return m, m.logoutCmd()
		}
		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.updateAuth(key)
	}
	return m, nil
}

func (m appModel) updateAuth(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		if m.auth.mode == authLogin {
			m.auth.setMode(authRegister)
		} else {
			m.auth.setMode(authLogin)
		}
		m.auth.notice = ""
		return m, nil
	}
	if m.verifying || m.auth.submitting {
		return m, nil
	}

	switch m.auth.form.Update(key) {
	case formSubmit:
		if k := m.auth.form.missingRequired(); k != "" {
			m.auth.form.err = "required: " + k
			return m, nil
		}
		f := m.auth.form
		if m.auth.mode == authRegister {
			if f.Value("password") != f.Value("password2") {
				f.err = "passwords do not match"
				return m, nil
			}
			m.auth.submitting = true
			return m, m.registerCmd(f.Value("username"), f.Value("email"),
				f.Value("password"), f.Value("password2"))
		}
		m.auth.submitting = true
		return m, m.loginCmd(f.Value("username"), f.Value("password"))
	case formCancel:
		// Nothing to cancel into; stay on the form.
	}
	return m, nil
}

func (m appModel) View() string {
	if m.console != nil {
		return m.console.View()
	}
	if m.verifying {
		return overlayCentered(m.width, m.height, styleMuted().Render("verifying session…"))
	}
	return m.auth.View(m.width, m.height)
}
