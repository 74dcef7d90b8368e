package auth

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"futureproof/internal/api"
	"futureproof/internal/nav"
	"futureproof/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   int
	login   func(api.LoginRequest) (*api.TokenResponse, error)
	signup  func(api.SignupRequest) (*api.TokenResponse, error)
	me      func(*session.Session) (*api.User, error)
	release chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) Login(ctx context.Context, in api.LoginRequest) (*api.TokenResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	return f.login(in)
}

func (f *fakeBackend) Signup(ctx context.Context, in api.SignupRequest) (*api.TokenResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.signup(in)
}

func (f *fakeBackend) Me(ctx context.Context, s *session.Session) (*api.User, error) {
	return f.me(s)
}

func boolPtr(b bool) *bool { return &b }

func newStore(t *testing.T) *session.Store {
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"), nil)
}

func TestLogin_RoutesToOnboardingWhenNotTaken(t *testing.T) {
	store := newStore(t)
	b := &fakeBackend{login: func(in api.LoginRequest) (*api.TokenResponse, error) {
		return &api.TokenResponse{AccessToken: "tok", HasTakenOnboarding: boolPtr(false)}, nil
	}}
	a := NewAuthenticator(b, store, 0, nil)

	res, err := a.Login(context.Background(), " ada@example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, MsgLoginSuccess, res.Message)
	assert.Equal(t, nav.RouteOnboarding, res.Route)
	assert.Equal(t, DefaultRedirectWait, res.Delay)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", stored.Token)
	assert.Equal(t, "ada@example.com", stored.Email)
}

func TestLogin_RoutesToDashboardWhenTaken(t *testing.T) {
	b := &fakeBackend{login: func(api.LoginRequest) (*api.TokenResponse, error) {
		return &api.TokenResponse{AccessToken: "tok", HasTakenOnboarding: boolPtr(true)}, nil
	}}
	res, err := NewAuthenticator(b, newStore(t), 10*time.Millisecond, nil).Login(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, nav.RouteDashboard, res.Route)
	assert.Equal(t, 10*time.Millisecond, res.Delay)
}

func TestLogin_NavigatesAfterDelay(t *testing.T) {
	b := &fakeBackend{login: func(api.LoginRequest) (*api.TokenResponse, error) {
		return &api.TokenResponse{AccessToken: "tok", HasTakenOnboarding: boolPtr(false)}, nil
	}}
	res, err := NewAuthenticator(b, newStore(t), 5*time.Millisecond, nil).Login(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)

	var went nav.Route
	require.NoError(t, nav.Follow(context.Background(), res.Outcome, nav.NavigatorFunc(func(r nav.Route) { went = r })))
	assert.Equal(t, nav.RouteOnboarding, went)
}

func TestLogin_MissingFieldsMakesNoCall(t *testing.T) {
	b := &fakeBackend{}
	a := NewAuthenticator(b, newStore(t), 0, nil)

	_, err := a.Login(context.Background(), "a@b.co", "")
	assert.Equal(t, MsgLoginMissing, UserMessage(err))
	assert.Zero(t, b.calls)
}

func TestRegister_MissingPasswordMakesNoCall(t *testing.T) {
	b := &fakeBackend{}
	a := NewAuthenticator(b, newStore(t), 0, nil)

	_, err := a.Register(context.Background(), "Ada Lovelace", "ada@example.com", "", DefaultRole)
	assert.Equal(t, "All fields are required.", UserMessage(err))
	assert.Zero(t, b.calls)
}

func TestRegister_AlwaysRoutesToOnboarding(t *testing.T) {
	var got api.SignupRequest
	b := &fakeBackend{signup: func(in api.SignupRequest) (*api.TokenResponse, error) {
		got = in
		return &api.TokenResponse{AccessToken: "new", HasTakenOnboarding: boolPtr(true)}, nil
	}}
	res, err := NewAuthenticator(b, newStore(t), 0, nil).Register(context.Background(), "Ada", "ada@example.com", "longenough", "student")
	require.NoError(t, err)
	assert.Equal(t, MsgRegisterSuccess, res.Message)
	assert.Equal(t, nav.RouteOnboarding, res.Route)
	assert.Equal(t, api.SignupRequest{FullName: "Ada", Email: "ada@example.com", Password: "longenough", Role: "student"}, got)
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.Error{Status: 401, Message: "Invalid email or password"}, "Invalid email or password"},
		{"server without message", &api.Error{Status: 500}, MsgLoginFailed},
		{"network", fmt.Errorf("%w: connection refused", api.ErrNetwork), MsgNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{login: func(api.LoginRequest) (*api.TokenResponse, error) { return nil, tt.err }}
			store := newStore(t)
			_, err := NewAuthenticator(b, store, 0, nil).Login(context.Background(), "a@b.co", "pw")
			assert.Equal(t, tt.want, UserMessage(err))

			_, loadErr := store.Load()
			assert.ErrorIs(t, loadErr, session.ErrNoSession)
		})
	}
}

func TestRegister_FallbackMessage(t *testing.T) {
	b := &fakeBackend{signup: func(api.SignupRequest) (*api.TokenResponse, error) { return nil, &api.Error{Status: 500} }}
	_, err := NewAuthenticator(b, newStore(t), 0, nil).Register(context.Background(), "A", "a@b.co", "pw", "student")
	assert.Equal(t, MsgRegisterFailed, UserMessage(err))
}

func TestLogin_BusyWhileInFlight(t *testing.T) {
	b := &fakeBackend{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		login: func(api.LoginRequest) (*api.TokenResponse, error) {
			return &api.TokenResponse{AccessToken: "tok"}, nil
		},
		signup: func(api.SignupRequest) (*api.TokenResponse, error) {
			return &api.TokenResponse{AccessToken: "tok"}, nil
		},
	}
	a := NewAuthenticator(b, newStore(t), 0, nil)

	done := make(chan error, 1)
	go func() {
		_, err := a.Login(context.Background(), "a@b.co", "pw")
		done <- err
	}()
	<-b.entered

	assert.True(t, a.Busy())
	_, err := a.Register(context.Background(), "A", "b@c.co", "pw", "student")
	assert.ErrorIs(t, err, ErrBusy)

	close(b.release)
	require.NoError(t, <-done)
	assert.False(t, a.Busy())
	assert.Equal(t, 1, b.calls)
}

func TestLanding(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(session.New("tok", "a@b.co")))

	b := &fakeBackend{me: func(s *session.Session) (*api.User, error) {
		assert.Equal(t, "tok", s.Token)
		return &api.User{HasTakenOnboarding: true}, nil
	}}
	a := NewAuthenticator(b, store, 0, nil)

	route, err := a.Landing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, nav.RouteDashboard, route)

	require.NoError(t, a.Logout())
	route, err = a.Landing(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, nav.RouteAuth, route)
}

func TestLogin_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := &fakeBackend{login: func(api.LoginRequest) (*api.TokenResponse, error) {
		return nil, &api.Error{Status: 401, Message: "Invalid email or password"}
	}}
	_, err := NewAuthenticator(b, newStore(t), 0, zap.New(core)).Login(context.Background(), "a@b.co", "pw")
	require.Error(t, err)

	entries := logs.FilterMessage("login failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@b.co", entries[0].ContextMap()["email"])
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(session.ErrNoSession), "not signed in")
	assert.Equal(t, MsgNetworkError, UserMessage(errors.New("boom")))
}

func TestWatchSession_LogoutEndsSession(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(session.New("tok", "a@b.co")))
	a := NewAuthenticator(&fakeBackend{}, store, 0, nil)

	w, err := a.WatchSession(context.Background())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, a.Logout())
	select {
	case <-w.Ended():
	case <-time.After(2 * time.Second):
		t.Fatal("logout was not reported")
	}
}

func TestWatchSession_NoStore(t *testing.T) {
	_, err := NewAuthenticator(&fakeBackend{}, nil, 0, nil).WatchSession(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
}
