package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
)

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (*domain.Profile, error)
}

type loggedInMsg struct {
	profile *domain.Profile
	err     error
}

const (
	loginPhone = iota
	loginPassword
)

type loginModel struct {
	auth   Authenticator
	form   formModel
	notice string
	width  int
	height int
}

func newLoginModel(auth Authenticator, notice string) loginModel {
	return loginModel{
		auth: auth,
		form: newForm("Sign in",
			formField{label: "phone", hint: "registered admin phone"},
			formField{label: "password", secret: true},
		),
		notice: notice,
	}
}

func (m loginModel) Init() tea.Cmd { return nil }

func (m loginModel) editing() bool { return true }

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loggedInMsg:
		if msg.err != nil {
			m.form.fail(loginError(msg.err))
			m.form.setValue(loginPassword, "")
			m.form.focus = loginPassword
		}

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		if m.form.submitted {
			m.form.submitted = false
			return m.submit()
		}
		return m, cmd
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	phone, password := m.form.value(loginPhone), m.form.fields[loginPassword].value
	if phone == "" || password == "" {
		m.form.fail("Phone and password are required.")
		return m, nil
	}
	if m.auth == nil {
		return m, nil
	}
	m.notice = ""
	m.form.busy = true
	auth := m.auth
	return m, func() tea.Msg {
		p, err := auth.Login(context.Background(), phone, password)
		return loggedInMsg{profile: p, err: err}
	}
}

// loginError maps a failed login to the message shown under the form.
func loginError(err error) string {
	var he *client.HTTPError
	switch {
	case errors.As(err, &he) && he.Message != "":
		return he.Message
	case errors.Is(err, client.ErrNetwork):
		return "Network error. Please try again."
	default:
		return "Login failed"
	}
}

func (m loginModel) View() string {
	s := "\n"
	if m.notice != "" {
		s += " " + warnStyle.Render(m.notice) + "\n\n"
	}
	return s + m.form.View()
}

func (m loginModel) helpKeys() string {
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "sign in") + "  " + helpEntry("ctrl+c", "quit")
}
