package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/app"
)

// loginMode switches the form between sign-in and account creation.
type loginMode int

const (
	modeSignIn loginMode = iota
	modeRegister
)

// loginState holds the auth form.
type loginState struct {
	mode     loginMode
	username textinput.Model
	email    textinput.Model
	password textinput.Model
	field    int
	remember bool
	busy     bool
	errMsg   string
	infoMsg  string
}

// authResultMsg reports a login or registration round trip.
type authResultMsg struct {
	resp     *api.AuthResponse
	register bool
	err      error
}

func (m *Model) initLogin() {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 48

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 64
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 64
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m.login = loginState{
		username: username,
		email:    email,
		password: password,
	}
}

// fieldCount returns how many focusable inputs the current mode has.
func (l loginState) fieldCount() int {
	if l.mode == modeRegister {
		return 3
	}
	return 2
}

// inputs returns the visible inputs in focus order.
func (l *loginState) inputs() []*textinput.Model {
	if l.mode == modeRegister {
		return []*textinput.Model{&l.username, &l.email, &l.password}
	}
	return []*textinput.Model{&l.email, &l.password}
}

func (l *loginState) focusField(field int) {
	l.field = field
	for i, input := range l.inputs() {
		if i == field {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

// handleLoginKey processes keyboard input on the auth screen.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "down":
		m.login.focusField((m.login.field + 1) % m.login.fieldCount())
		return m, nil

	case "shift+tab", "up":
		m.login.focusField((m.login.field + m.login.fieldCount() - 1) % m.login.fieldCount())
		return m, nil

	case "ctrl+r":
		m.login.remember = !m.login.remember
		return m, nil

	case "ctrl+n":
		// Flip between sign-in and registration.
		if m.login.mode == modeSignIn {
			m.login.mode = modeRegister
		} else {
			m.login.mode = modeSignIn
		}
		m.login.errMsg = ""
		m.login.focusField(0)
		return m, nil

	case "enter":
		return m.submitAuth()
	}

	var cmd tea.Cmd
	inputs := m.login.inputs()
	*inputs[m.login.field], cmd = inputs[m.login.field].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.login.email.Value())
	password := m.login.password.Value()
	if email == "" || password == "" {
		m.login.errMsg = "email and password are required"
		return m, nil
	}

	m.login.busy = true
	m.login.errMsg = ""

	if m.login.mode == modeRegister {
		username := strings.TrimSpace(m.login.username.Value())
		if username == "" {
			m.login.busy = false
			m.login.errMsg = "username is required"
			return m, nil
		}
		return m, registerCmd(m.ctx, m.app, api.Registration{
			Username: username,
			Email:    email,
			Password: password,
		})
	}

	return m, loginCmd(m.ctx, m.app, api.Credentials{Email: email, Password: password})
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false

	if msg.err != nil {
		m.login.errMsg = msg.err.Error()
		return m, nil
	}

	if msg.register {
		// Registration needs email confirmation before sign-in works.
		m.login.mode = modeSignIn
		m.login.infoMsg = msg.resp.Message
		if m.login.infoMsg == "" {
			m.login.infoMsg = "account created, check your email for the confirmation code"
		}
		m.login.focusField(0)
		return m, nil
	}

	if err := m.app.Session.Establish(msg.resp.Token, msg.resp.Role, msg.resp.CourierID, m.login.remember); err != nil {
		// The session is live in memory even when persisting it failed.
		m.statusMsg = "could not remember session: " + err.Error()
	}

	m.login.password.SetValue("")
	m.currentView = ViewDashboard
	return m, refreshSnapshotsCmd(m.app)
}

// renderLogin renders the auth screen.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	title := "LogiTrack Dispatch"
	action := "Sign in"
	if m.login.mode == modeRegister {
		action = "Create account"
	}

	var b strings.Builder
	b.WriteString("\n  " + styles.Header.Render(title) + "\n\n")
	b.WriteString("  " + styles.Title.Render(action) + "\n\n")

	if m.login.mode == modeRegister {
		b.WriteString("  Username: " + m.login.username.View() + "\n")
	}
	b.WriteString("  Email:    " + m.login.email.View() + "\n")
	b.WriteString("  Password: " + m.login.password.View() + "\n\n")

	remember := "[ ]"
	if m.login.remember {
		remember = "[x]"
	}
	b.WriteString("  " + remember + " remember me (ctrl+r)\n\n")

	if m.login.busy {
		b.WriteString("  " + styles.MutedText.Render("signing in...") + "\n")
	}
	if m.login.errMsg != "" {
		b.WriteString("  " + styles.DangerText.Render(m.login.errMsg) + "\n")
	}
	if m.login.infoMsg != "" {
		b.WriteString("  " + styles.SuccessText.Render(m.login.infoMsg) + "\n")
	}

	other := "ctrl+n: create account"
	if m.login.mode == modeRegister {
		other = "ctrl+n: back to sign in"
	}
	b.WriteString("\n  " + styles.MutedText.Render("enter: submit  tab: next field  "+other+"  ctrl+c: quit"))
	return b.String()
}

// Commands

func loginCmd(ctx context.Context, a *app.App, creds api.Credentials) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.Client.Login(ctx, creds)
		return authResultMsg{resp: resp, err: err}
	}
}

func registerCmd(ctx context.Context, a *app.App, reg api.Registration) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.Client.Register(ctx, reg)
		return authResultMsg{resp: resp, register: true, err: err}
	}
}
