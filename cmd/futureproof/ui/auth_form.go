package ui

import (
	"context"
	"strings"
	"time"

	"futureproof/internal/auth"
	"futureproof/internal/nav"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AuthMode selects between the sign-in and sign-up forms.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

func (m AuthMode) String() string {
	if m == ModeRegister {
		return "Register"
	}
	return "Login"
}

const (
	inputFullName = iota
	inputEmail
	inputPassword
	inputRole
	inputCount
)

// authDoneMsg carries the result of a login or registration.
type authDoneMsg struct {
	result *auth.Result
	err    error
}

// NavigateMsg asks a screen to hand over to the given route.
type NavigateMsg struct {
	Route nav.Route
}

// navigateAfter delivers a NavigateMsg once the delay has passed.
func navigateAfter(o nav.Outcome) tea.Cmd {
	return tea.Tick(o.Delay, func(time.Time) tea.Msg {
		return NavigateMsg{Route: o.Route}
	})
}

// AuthFormModel is the combined login / register screen.
type AuthFormModel struct {
	ctx     context.Context
	authn   *auth.Authenticator
	styles  Styles
	mode    AuthMode
	inputs  [inputCount]textinput.Model
	focus   int
	spinner spinner.Model
	busy    bool

	errMsg  string
	success string

	// Route is where to go next once the form is done; empty if the user quit.
	Route  nav.Route
	Result *auth.Result
}

// NewAuthForm builds the form in the given mode.
func NewAuthForm(ctx context.Context, a *auth.Authenticator, styles Styles, mode AuthMode) *AuthFormModel {
	m := &AuthFormModel{ctx: ctx, authn: a, styles: styles, mode: mode}

	placeholders := [inputCount]string{"Full name", "Email", "Password", "Role"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = "  "
		ti.CharLimit = 128
		m.inputs[i] = ti
	}
	m.inputs[inputPassword].EchoMode = textinput.EchoPassword
	m.inputs[inputPassword].EchoCharacter = '•'
	m.inputs[inputRole].SetValue(auth.DefaultRole)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	m.spinner = sp

	m.focus = m.fields()[0]
	m.inputs[m.focus].Focus()
	return m
}

// fields lists the inputs of the current mode in display order.
func (m *AuthFormModel) fields() []int {
	if m.mode == ModeRegister {
		return []int{inputFullName, inputEmail, inputPassword, inputRole}
	}
	return []int{inputEmail, inputPassword}
}

// Mode returns the current form mode.
func (m *AuthFormModel) Mode() AuthMode { return m.mode }

// Messages returns the error and success lines currently shown.
func (m *AuthFormModel) Messages() (errMsg, success string) { return m.errMsg, m.success }

// Init starts the cursor blinking.
func (m *AuthFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Toggle switches between login and register and clears any message.
func (m *AuthFormModel) Toggle() tea.Cmd {
	if m.mode == ModeLogin {
		m.mode = ModeRegister
	} else {
		m.mode = ModeLogin
	}
	m.errMsg, m.success = "", ""
	return m.setFocus(m.fields()[0])
}

func (m *AuthFormModel) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *AuthFormModel) moveFocus(delta int) tea.Cmd {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	return m.setFocus(fields[pos])
}

func (m *AuthFormModel) onLastField() bool {
	fields := m.fields()
	return m.focus == fields[len(fields)-1]
}

// Update handles messages.
func (m *AuthFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.busy || m.success != "" {
			return m, nil
		}
		switch msg.String() {
		case "tab":
			return m, m.Toggle()
		case "down":
			return m, m.moveFocus(1)
		case "up", "shift+tab":
			return m, m.moveFocus(-1)
		case "enter":
			if !m.onLastField() {
				return m, m.moveFocus(1)
			}
			return m, m.submit()
		}
		before := m.inputs[m.focus].Value()
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		if m.inputs[m.focus].Value() != before {
			m.errMsg = ""
		}
		return m, cmd

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = auth.UserMessage(msg.err)
			return m, nil
		}
		m.Result = msg.result
		m.success = msg.result.Message
		return m, navigateAfter(msg.result.Outcome)

	case NavigateMsg:
		m.Route = msg.Route
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit starts the request for the current mode.
func (m *AuthFormModel) submit() tea.Cmd {
	m.busy = true
	m.errMsg, m.success = "", ""
	return tea.Batch(m.spinner.Tick, m.authCmd())
}

func (m *AuthFormModel) authCmd() tea.Cmd {
	mode := m.mode
	values := [inputCount]string{}
	for i := range m.inputs {
		values[i] = m.inputs[i].Value()
	}
	return func() tea.Msg {
		var res *auth.Result
		var err error
		if mode == ModeRegister {
			res, err = m.authn.Register(m.ctx, values[inputFullName], values[inputEmail], values[inputPassword], values[inputRole])
		} else {
			res, err = m.authn.Login(m.ctx, values[inputEmail], values[inputPassword])
		}
		return authDoneMsg{result: res, err: err}
	}
}

// View renders the form.
func (m *AuthFormModel) View() string {
	s := m.styles
	var sb strings.Builder

	sb.WriteString(Logo(s))
	sb.WriteString("\n\n")

	tabs := []string{}
	for _, mode := range []AuthMode{ModeLogin, ModeRegister} {
		style := s.Tab
		if mode == m.mode {
			style = s.ActiveTab
		}
		tabs = append(tabs, style.Render(mode.String()))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	sb.WriteString("\n\n")

	labels := [inputCount]string{"Full name", "Email", "Password", "Role"}
	for _, i := range m.fields() {
		label := s.Label
		if i == m.focus {
			label = s.FocusedLabel
		}
		sb.WriteString(label.Render(labels[i]))
		sb.WriteString("\n")
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n\n")
	}

	switch {
	case m.busy:
		sb.WriteString(m.spinner.View() + " " + s.Muted.Render("Processing..."))
	case m.errMsg != "":
		sb.WriteString(s.Error.Render(m.errMsg))
	case m.success != "":
		sb.WriteString(s.Success.Render(m.success))
	}
	sb.WriteString("\n\n")

	sb.WriteString(s.Footer.Render("tab switch form • ↑/↓ move • enter next/submit • esc quit"))
	return s.Content.Render(sb.String())
}
