package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Login failures collapse into one fixed line; the backend does not say
// which part was wrong. Expired sessions get their own wording so the
// user knows why they are back here.
const (
	loginFailedText    = "login failed: check username and password"
	loginMissingText   = "enter a username and a password"
	sessionExpiredText = "session expired, sign in again"
)

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errMsg   string
}

func newLoginForm() loginForm {
	u := textinput.New()
	u.Prompt = "> "
	u.Placeholder = "username"
	u.CharLimit = 64
	u.Focus()

	p := textinput.New()
	p.Prompt = "> "
	p.Placeholder = "password"
	p.CharLimit = 64
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	return loginForm{username: u, password: p}
}

func (f *loginForm) toggleFocus() {
	if f.focus == 0 {
		f.focus = 1
		f.username.Blur()
		f.password.Focus()
	} else {
		f.focus = 0
		f.password.Blur()
		f.username.Focus()
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.login.busy = false
		if msg.err != nil {
			m.logger.Error("login rejected", "error", msg.err)
			m.login.errMsg = loginFailedText
			m.login.password.SetValue("")
			return m, nil
		}
		if err := m.session.Store(msg.token, msg.username); err != nil {
			m.logger.Error("store session", "error", err)
			m.login.errMsg = "could not save the session"
			return m, nil
		}
		return m.enterBrowse()

	case tea.KeyMsg:
		if m.login.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			m.login.toggleFocus()
			return m, textinput.Blink
		case "enter":
			if m.login.focus == 0 {
				m.login.toggleFocus()
				return m, textinput.Blink
			}
			username := strings.TrimSpace(m.login.username.Value())
			password := m.login.password.Value()
			if username == "" || password == "" {
				m.login.errMsg = loginMissingText
				return m, nil
			}
			m.login.busy = true
			m.login.errMsg = ""
			return m, loginCmd(m.client, username, password)
		}
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.username, cmd = m.login.username.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}
