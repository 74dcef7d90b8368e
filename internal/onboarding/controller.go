package onboarding

import (
	"context"
	"errors"

	"futureproof/internal/nav"

	"go.uber.org/zap"
)

// Step is one stage of the questionnaire.
type Step int

const (
	StepFoundation Step = 1
	StepSkills     Step = 2
	StepProof      Step = 3
)

// Steps lists the stages in order.
var Steps = []Step{StepFoundation, StepSkills, StepProof}

// String returns the title shown in the progress bar.
func (s Step) String() string {
	switch s {
	case StepFoundation:
		return "Foundation"
	case StepSkills:
		return "Skills & Path"
	case StepProof:
		return "The Proof"
	}
	return "Unknown"
}

// ErrNotFinalStep is returned by Submit before the last step is reached.
var ErrNotFinalStep = errors.New("onboarding: submit is only available on the final step")

// Controller walks the three steps. Forward moves are gated by Validate,
// backward moves are not.
type Controller struct {
	answers *Answers
	step    Step
	errors  ValidationErrors
	logger  *zap.Logger

	// OnEnterStep runs after every step change; the wizard uses it to scroll to the top.
	OnEnterStep func(Step)
}

// NewController starts on the first step with the given answers (a fresh
// store when nil).
func NewController(a *Answers, logger *zap.Logger) *Controller {
	if a == nil {
		a = NewAnswers()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		answers: a,
		step:    StepFoundation,
		errors:  ValidationErrors{},
		logger:  logger,
	}
}

// Step returns the current step.
func (c *Controller) Step() Step { return c.step }

// Answers returns the underlying store.
func (c *Controller) Answers() *Answers { return c.answers }

// Errors returns the errors stored by the last failed transition.
func (c *Controller) Errors() ValidationErrors { return c.errors }

// Set updates a field and drops its stored error.
func (c *Controller) Set(f Field, value string) error {
	if err := c.answers.Set(f, value); err != nil {
		return err
	}
	delete(c.errors, f)
	return nil
}

// SetCV attaches the CV and drops any stored error for it.
func (c *Controller) SetCV(cv *Attachment) {
	c.answers.SetCV(cv)
	delete(c.errors, FieldCVFile)
}

// Check validates the current step and stores the result for display. An
// empty map means the step is complete.
func (c *Controller) Check() ValidationErrors {
	errs := Validate(c.step, c.answers)
	c.errors = errs
	if len(errs) > 0 {
		c.logger.Debug("step incomplete", zap.Int("step", int(c.step)), zap.Int("errors", len(errs)))
	}
	return errs
}

// Next validates the current step and advances when it is complete. It
// reports whether the step changed.
func (c *Controller) Next() bool {
	if len(c.Check()) > 0 || c.step == StepProof {
		return false
	}
	c.enter(c.step + 1)
	return true
}

// Back returns to the previous step and clears all stored errors. On the
// first step only the errors are cleared.
func (c *Controller) Back() {
	c.errors = ValidationErrors{}
	if c.step > StepFoundation {
		c.enter(c.step - 1)
	}
}

func (c *Controller) enter(s Step) {
	c.step = s
	c.logger.Debug("entered step", zap.Int("step", int(s)), zap.String("title", s.String()))
	if c.OnEnterStep != nil {
		c.OnEnterStep(s)
	}
}

// Submitter sends a completed questionnaire.
type Submitter interface {
	Submit(ctx context.Context, a *Answers) (nav.Outcome, error)
}

// Submit validates the final step and hands the answers to the submitter.
// Validation failures are stored and returned without any network call.
func (c *Controller) Submit(ctx context.Context, s Submitter) (nav.Outcome, error) {
	if c.step != StepProof {
		return nav.Outcome{}, ErrNotFinalStep
	}
	if errs := c.Check(); len(errs) > 0 {
		return nav.Outcome{}, errs
	}
	return s.Submit(ctx, c.answers)
}
