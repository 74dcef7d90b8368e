// Package api is the HTTP client for the FutureProof REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"futureproof/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader correlates client logs with server logs.
	RequestIDHeader = "X-Request-ID"
)

// Endpoints are the API paths, relative to the base URL.
type Endpoints struct {
	Login            string `yaml:"login"`
	Signup           string `yaml:"signup"`
	Me               string `yaml:"me"`
	OnboardingSubmit string `yaml:"onboarding_submit"`
}

// DefaultEndpoints returns the paths the API server mounts today. The
// onboarding route sits under the auth prefix on the server, hence the
// doubled "/api".
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:            "/api/auth/login",
		Signup:           "/api/auth/signup",
		Me:               "/api/auth/me",
		OnboardingSubmit: "/api/auth/api/onboarding/submit",
	}
}

// withDefaults fills empty paths from DefaultEndpoints.
func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	if e.Login == "" {
		e.Login = d.Login
	}
	if e.Signup == "" {
		e.Signup = d.Signup
	}
	if e.Me == "" {
		e.Me = d.Me
	}
	if e.OnboardingSubmit == "" {
		e.OnboardingSubmit = d.OnboardingSubmit
	}
	return e
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Endpoints  Endpoints
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the API. It holds no credentials; authenticated calls take
// the session explicitly.
type Client struct {
	baseURL   *url.URL
	endpoints Endpoints
	http      *http.Client
	logger    *zap.Logger
}

// New builds a client. A cookie jar is attached so server-set cookies follow
// the session like they would in a browser.
func New(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   base,
		endpoints: opts.Endpoints.withDefaults(),
		http:      hc,
		logger:    logger,
	}, nil
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) url(path string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// User is the profile returned by the API.
type User struct {
	ID                 int    `json:"id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	HasTakenOnboarding bool   `json:"has_taken_onboarding"`
	Role               string `json:"role"`
	CreatedAt          string `json:"created_at"`
}

// TokenResponse is returned by login and signup.
type TokenResponse struct {
	Message            string `json:"message,omitempty"`
	AccessToken        string `json:"access_token"`
	HasTakenOnboarding *bool  `json:"has_taken_onboarding,omitempty"`
	User               *User  `json:"user,omitempty"`
}

// OnboardingDone reports whether the user already completed onboarding. The
// top-level flag wins; the embedded user record is the fallback.
func (r *TokenResponse) OnboardingDone() bool {
	if r.HasTakenOnboarding != nil {
		return *r.HasTakenOnboarding
	}
	return r.User != nil && r.User.HasTakenOnboarding
}

type meResponse struct {
	User User `json:"user"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.postJSON(ctx, c.endpoints.Login, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and returns its first token.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.postJSON(ctx, c.endpoints.Signup, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the session's user.
func (c *Client) Me(ctx context.Context, s *session.Session) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(c.endpoints.Me), nil)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(req); err != nil {
		return nil, err
	}
	var out meResponse
	// The token middleware answers with "msg"; the handler itself with "error".
	if err := c.do(req, &out, "msg", "error"); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// SubmitOnboarding posts a multipart questionnaire body.
func (c *Client) SubmitOnboarding(ctx context.Context, s *session.Session, contentType string, body io.Reader) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.endpoints.OnboardingSubmit), body)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(req); err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	out := map[string]any{}
	if err := c.do(req, &out, "msg"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	// The auth routes explain failures in "error" only.
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, "error")
}

// do sends the request and decodes a 2xx JSON body into out. Non-2xx answers
// become *Error with the message read from the first non-empty errKeys field;
// transport and decode failures wrap ErrNetwork.
func (c *Client) do(req *http.Request, out any, errKeys ...string) error {
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")

	log := c.logger.With(
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", reqID),
	)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("failed to read response", zap.Error(err))
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}
	log.Debug("response", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(data, errKeys...)}
		log.Info("request rejected", zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// errorMessage returns the first non-empty string field of an error body
// among keys, or "" so the caller's fallback text applies.
func errorMessage(data []byte, keys ...string) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	for _, k := range keys {
		if msg, ok := body[k].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}

// IsNetwork reports whether err is a transport-level failure rather than a
// server answer.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
