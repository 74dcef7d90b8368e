package ui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"futureproof/internal/api"
	"futureproof/internal/auth"
	"futureproof/internal/nav"
	"futureproof/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type stubBackend struct {
	loginResp *api.TokenResponse
	loginErr  error
	signups   []api.SignupRequest
}

func (b *stubBackend) Login(ctx context.Context, in api.LoginRequest) (*api.TokenResponse, error) {
	return b.loginResp, b.loginErr
}

func (b *stubBackend) Signup(ctx context.Context, in api.SignupRequest) (*api.TokenResponse, error) {
	b.signups = append(b.signups, in)
	return &api.TokenResponse{AccessToken: "tok"}, nil
}

func (b *stubBackend) Me(ctx context.Context, s *session.Session) (*api.User, error) {
	return &api.User{Email: s.Email}, nil
}

func newTestAuthForm(t *testing.T, b *stubBackend, mode AuthMode) *AuthFormModel {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), nil)
	authn := auth.NewAuthenticator(b, store, time.Millisecond, nil)
	return NewAuthForm(context.Background(), authn, NewStyles(LightTheme()), mode)
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func press(m tea.Model, k tea.KeyType) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func TestAuthForm_ToggleClearsMessages(t *testing.T) {
	m := newTestAuthForm(t, &stubBackend{}, ModeLogin)
	m.Update(authDoneMsg{err: &auth.Error{Message: auth.MsgLoginFailed}})
	if errMsg, _ := m.Messages(); errMsg != auth.MsgLoginFailed {
		t.Fatalf("expected error message, got %q", errMsg)
	}

	press(m, tea.KeyTab)
	if m.Mode() != ModeRegister {
		t.Fatalf("expected register mode after tab, got %v", m.Mode())
	}
	if errMsg, ok := m.Messages(); errMsg != "" || ok != "" {
		t.Errorf("messages not cleared: %q %q", errMsg, ok)
	}
	if m.focus != inputFullName {
		t.Errorf("expected focus on full name, got %d", m.focus)
	}

	press(m, tea.KeyTab)
	if m.Mode() != ModeLogin {
		t.Errorf("expected login mode after second tab")
	}
}

func TestAuthForm_PasswordIsMasked(t *testing.T) {
	m := newTestAuthForm(t, &stubBackend{}, ModeLogin)
	press(m, tea.KeyDown)
	typeText(m, "hunter22")

	if got := m.inputs[inputPassword].Value(); got != "hunter22" {
		t.Fatalf("password value = %q", got)
	}
	if view := m.View(); containsText(view, "hunter22") {
		t.Errorf("password shown in clear text")
	}
}

func TestAuthForm_LoginSuccessNavigates(t *testing.T) {
	done := true
	b := &stubBackend{loginResp: &api.TokenResponse{AccessToken: "tok", HasTakenOnboarding: &done}}
	m := newTestAuthForm(t, b, ModeLogin)

	typeText(m, "ada@example.com")
	press(m, tea.KeyEnter)
	if m.focus != inputPassword {
		t.Fatalf("enter should move to password, focus=%d", m.focus)
	}
	typeText(m, "password123")
	_, cmd := press(m, tea.KeyEnter)
	if !m.busy || cmd == nil {
		t.Fatalf("expected busy form with a pending command")
	}

	msg := m.authCmd()()
	m.Update(msg)
	if m.busy {
		t.Errorf("form still busy after the result")
	}
	if _, ok := m.Messages(); ok != auth.MsgLoginSuccess {
		t.Errorf("success message = %q", ok)
	}
	if m.Result == nil || m.Result.Route != nav.RouteDashboard {
		t.Fatalf("unexpected result %+v", m.Result)
	}

	// Keys are ignored while the redirect is pending.
	press(m, tea.KeyTab)
	if m.Mode() != ModeLogin {
		t.Errorf("mode changed during redirect")
	}

	_, cmd = m.Update(NavigateMsg{Route: m.Result.Route})
	if m.Route != nav.RouteDashboard {
		t.Errorf("route = %q", m.Route)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestAuthForm_LoginFailureShowsServerMessage(t *testing.T) {
	b := &stubBackend{loginErr: &api.Error{Status: 401, Message: "Invalid email or password"}}
	m := newTestAuthForm(t, b, ModeLogin)
	m.inputs[inputEmail].SetValue("ada@example.com")
	m.inputs[inputPassword].SetValue("wrong")

	m.Update(m.authCmd()())

	if errMsg, _ := m.Messages(); errMsg != "Invalid email or password" {
		t.Errorf("error message = %q", errMsg)
	}
	if m.Route != "" {
		t.Errorf("failed login must not navigate")
	}
}

func TestAuthForm_TypingClearsError(t *testing.T) {
	m := newTestAuthForm(t, &stubBackend{}, ModeLogin)
	m.Update(authDoneMsg{err: &auth.Error{Message: auth.MsgLoginFailed}})

	// Moving focus is not an edit.
	press(m, tea.KeyDown)
	if errMsg, _ := m.Messages(); errMsg != auth.MsgLoginFailed {
		t.Fatalf("focus change cleared the error")
	}

	typeText(m, "x")
	if errMsg, _ := m.Messages(); errMsg != "" {
		t.Errorf("error still shown after typing: %q", errMsg)
	}
	if got := m.inputs[inputPassword].Value(); got != "x" {
		t.Errorf("password = %q", got)
	}
}

func TestAuthForm_RegisterSendsRole(t *testing.T) {
	b := &stubBackend{}
	m := newTestAuthForm(t, b, ModeRegister)
	m.inputs[inputFullName].SetValue("Ada Obi")
	m.inputs[inputEmail].SetValue("ada@example.com")
	m.inputs[inputPassword].SetValue("password123")

	m.Update(m.authCmd()())

	if len(b.signups) != 1 {
		t.Fatalf("expected one signup, got %d", len(b.signups))
	}
	if b.signups[0].Role != auth.DefaultRole {
		t.Errorf("role = %q", b.signups[0].Role)
	}
	if m.Result == nil || m.Result.Route != nav.RouteOnboarding {
		t.Errorf("registration should route to onboarding, got %+v", m.Result)
	}
}

func TestAuthForm_EscQuits(t *testing.T) {
	m := newTestAuthForm(t, &stubBackend{}, ModeLogin)
	_, cmd := press(m, tea.KeyEsc)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
	if m.Route != "" {
		t.Errorf("quitting must leave the route empty")
	}
}
