// Package auth signs users in and up against the API, stores the resulting
// session and decides where the client goes next.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"futureproof/internal/api"
	"futureproof/internal/nav"
	"futureproof/internal/session"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// User-facing messages.
const (
	MsgLoginMissing     = "Email and password are required for login."
	MsgRegisterMissing  = "All fields are required."
	MsgLoginSuccess     = "Login successful! Redirecting..."
	MsgRegisterSuccess  = "Account created successfully! Logged in automatically."
	MsgLoginFailed      = "Login failed. Please check your credentials."
	MsgRegisterFailed   = "Registration failed due to a server error."
	MsgNetworkError     = "A network error occurred. Please try again."
	DefaultRedirectWait = 1500 * time.Millisecond
	DefaultRole         = "student"
)

// ErrBusy is returned when a login or registration is already in flight.
var ErrBusy = errors.New("auth: a request is already in progress")

// Error is a failed attempt with the message to show the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Backend is the subset of the API client the authenticator needs.
type Backend interface {
	Login(ctx context.Context, in api.LoginRequest) (*api.TokenResponse, error)
	Signup(ctx context.Context, in api.SignupRequest) (*api.TokenResponse, error)
	Me(ctx context.Context, s *session.Session) (*api.User, error)
}

// Authenticator runs login and registration. Only one of them can be in
// flight at a time.
type Authenticator struct {
	backend  Backend
	store    *session.Store
	redirect time.Duration
	logger   *zap.Logger
	busy     *semaphore.Weighted
}

// NewAuthenticator wires the authenticator. redirect is the pause before
// navigating after success (DefaultRedirectWait when zero).
func NewAuthenticator(b Backend, store *session.Store, redirect time.Duration, logger *zap.Logger) *Authenticator {
	if redirect <= 0 {
		redirect = DefaultRedirectWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		backend:  b,
		store:    store,
		redirect: redirect,
		logger:   logger,
		busy:     semaphore.NewWeighted(1),
	}
}

// Busy reports whether a request is in flight.
func (a *Authenticator) Busy() bool {
	if a.busy.TryAcquire(1) {
		a.busy.Release(1)
		return false
	}
	return true
}

// Result is a successful sign-in.
type Result struct {
	nav.Outcome
	Session *session.Session
}

// Login signs in. On success the session is stored and the outcome routes to
// the dashboard when onboarding is done, to onboarding otherwise.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &Error{Message: MsgLoginMissing}
	}
	if !a.busy.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer a.busy.Release(1)

	resp, err := a.backend.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		a.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return nil, failure(err, MsgLoginFailed)
	}

	route := nav.RouteOnboarding
	if resp.OnboardingDone() {
		route = nav.RouteDashboard
	}
	return a.finish(email, resp, MsgLoginSuccess, route)
}

// Register creates an account and signs in. Success always routes to onboarding.
func (a *Authenticator) Register(ctx context.Context, fullName, email, password, role string) (*Result, error) {
	fullName, email, role = strings.TrimSpace(fullName), strings.TrimSpace(email), strings.TrimSpace(role)
	if fullName == "" || email == "" || password == "" || role == "" {
		return nil, &Error{Message: MsgRegisterMissing}
	}
	if !a.busy.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer a.busy.Release(1)

	resp, err := a.backend.Signup(ctx, api.SignupRequest{FullName: fullName, Email: email, Password: password, Role: role})
	if err != nil {
		a.logger.Info("registration failed", zap.String("email", email), zap.Error(err))
		return nil, failure(err, MsgRegisterFailed)
	}
	return a.finish(email, resp, MsgRegisterSuccess, nav.RouteOnboarding)
}

func (a *Authenticator) finish(email string, resp *api.TokenResponse, msg string, route nav.Route) (*Result, error) {
	if resp.AccessToken == "" {
		return nil, &Error{Message: MsgNetworkError, Err: api.ErrMalformedResponse}
	}
	s := session.New(resp.AccessToken, email)
	if a.store != nil {
		if err := a.store.Save(s); err != nil {
			return nil, fmt.Errorf("signed in but could not store the session: %w", err)
		}
	}
	a.logger.Info("signed in", zap.String("email", email), zap.String("route", string(route)))
	return &Result{
		Outcome: nav.Outcome{Message: msg, Route: route, Delay: a.redirect},
		Session: s,
	}, nil
}

// failure maps a backend error to what the user sees.
func failure(err error, fallback string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if api.IsNetwork(err) {
		return &Error{Message: MsgNetworkError, Err: err}
	}
	return &Error{Message: api.ServerMessage(err, fallback), Err: err}
}

// Current loads the stored session.
func (a *Authenticator) Current() (*session.Session, error) {
	if a.store == nil {
		return nil, session.ErrNoSession
	}
	return a.store.Load()
}

// Whoami fetches the profile of the stored session's user.
func (a *Authenticator) Whoami(ctx context.Context) (*api.User, error) {
	s, err := a.Current()
	if err != nil {
		return nil, err
	}
	return a.backend.Me(ctx, s)
}

// Landing picks the route for an already signed-in user.
func (a *Authenticator) Landing(ctx context.Context) (nav.Route, error) {
	u, err := a.Whoami(ctx)
	if err != nil {
		return nav.RouteAuth, err
	}
	if u.HasTakenOnboarding {
		return nav.RouteDashboard, nil
	}
	return nav.RouteOnboarding, nil
}

// Logout drops the stored session.
func (a *Authenticator) Logout() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.logger.Info("signed out")
	return nil
}

// WatchSession reports when the stored session is removed from outside this
// process.
func (a *Authenticator) WatchSession(ctx context.Context) (*session.Watcher, error) {
	if a.store == nil {
		return nil, session.ErrNoSession
	}
	return a.store.Watch(ctx)
}

// UserMessage returns the text to show for any error from this package.
func UserMessage(err error) string {
	var authErr *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.Is(err, ErrBusy):
		return "Please wait for the current request to finish."
	case errors.Is(err, session.ErrNoSession):
		return "You are not signed in. Run `futureproof auth login` first."
	}
	return MsgNetworkError
}
