package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"futureproof/internal/api"
	"futureproof/internal/nav"
	"futureproof/internal/session"

	"go.uber.org/zap"
)

const (
	MsgSubmitted      = "Onboarding complete! Taking you to your dashboard..."
	MsgSubmitFallback = "Submission failed due to an unknown error."
	MsgSubmitNetwork  = "An unexpected error occurred. Please check your network connection."

	DefaultSubmitRedirect = 2 * time.Second
)

// Uploader is the API call the submission needs.
type Uploader interface {
	SubmitOnboarding(ctx context.Context, s *session.Session, contentType string, body io.Reader) (map[string]any, error)
}

// SubmitError is a failed submission with the message to show the user.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("Submission Failed: %s", e.Message)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// HTTPSubmitter posts the questionnaire with the caller's session. It makes
// exactly one attempt per call.
type HTTPSubmitter struct {
	api      Uploader
	session  *session.Session
	redirect time.Duration
	logger   *zap.Logger

	// Result holds the server's answer to the last successful submission.
	Result map[string]any
}

// NewHTTPSubmitter wires a submitter. redirect defaults to DefaultSubmitRedirect.
func NewHTTPSubmitter(u Uploader, s *session.Session, redirect time.Duration, logger *zap.Logger) *HTTPSubmitter {
	if redirect <= 0 {
		redirect = DefaultSubmitRedirect
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSubmitter{api: u, session: s, redirect: redirect, logger: logger}
}

// Submit encodes and sends the answers. On success the outcome routes to the
// dashboard after the redirect delay.
func (h *HTTPSubmitter) Submit(ctx context.Context, a *Answers) (nav.Outcome, error) {
	if !h.session.Valid() {
		return nav.Outcome{}, session.ErrNoSession
	}

	body, contentType, err := BuildPayload(a)
	if err != nil {
		return nav.Outcome{}, err
	}

	result, err := h.api.SubmitOnboarding(ctx, h.session, contentType, body)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nav.Outcome{}, err
		case api.IsNetwork(err):
			h.logger.Warn("submission failed", zap.Error(err))
			return nav.Outcome{}, &SubmitError{Message: MsgSubmitNetwork, Err: err}
		default:
			h.logger.Info("submission rejected", zap.Error(err))
			return nav.Outcome{}, &SubmitError{Message: api.ServerMessage(err, MsgSubmitFallback), Err: err}
		}
	}

	h.Result = result
	h.logger.Info("onboarding submitted", zap.Bool("cv_attached", a.CV() != nil))
	return nav.Outcome{Message: MsgSubmitted, Route: nav.RouteDashboard, Delay: h.redirect}, nil
}
