package onboarding

import (
	"context"
	"testing"

	"futureproof/internal/nav"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	calls int
	got   *Answers
}

func (r *recordingSubmitter) Submit(ctx context.Context, a *Answers) (nav.Outcome, error) {
	r.calls++
	r.got = a
	return nav.Outcome{Message: "ok", Route: nav.RouteDashboard}, nil
}

func TestController_Step1MissingChallengeStaysPut(t *testing.T) {
	c := NewController(nil, nil)
	require.NoError(t, c.Set(FieldMainGoal, "switch-career"))
	require.NoError(t, c.Set(FieldAge, "27-30"))
	require.NoError(t, c.Set(FieldCurrentSituation, "working-non-related"))
	require.NoError(t, c.Set(FieldLearningPace, "11-20"))

	assert.False(t, c.Next())
	assert.Equal(t, StepFoundation, c.Step())
	assert.Equal(t, ValidationErrors{FieldBiggestChallenge: "Please select your biggest challenge"}, c.Errors())

	// Fixing the field clears its error immediately.
	require.NoError(t, c.Set(FieldBiggestChallenge, "dont-know"))
	assert.Empty(t, c.Errors())
	assert.True(t, c.Next())
	assert.Equal(t, StepSkills, c.Step())
}

func TestController_OnEnterStep(t *testing.T) {
	a := NewAnswers()
	completeStep1(t, a)
	completeStep2(t, a)

	var entered []Step
	c := NewController(a, nil)
	c.OnEnterStep = func(s Step) { entered = append(entered, s) }

	require.True(t, c.Next())
	require.True(t, c.Next())
	c.Back()
	assert.Equal(t, []Step{StepSkills, StepProof, StepSkills}, entered)
}

func TestController_BackAlwaysClearsErrors(t *testing.T) {
	for _, start := range Steps {
		t.Run(start.String(), func(t *testing.T) {
			a := NewAnswers()
			completeStep1(t, a)
			completeStep2(t, a)
			c := NewController(a, nil)
			for c.Step() < start {
				require.True(t, c.Next())
			}
			if start == StepProof {
				_, err := c.Submit(context.Background(), &recordingSubmitter{})
				require.Error(t, err)
			} else {
				c.errors = ValidationErrors{FieldAge: "x", FieldHearAbout: "y"}
			}
			require.NotEmpty(t, c.Errors())

			c.Back()
			assert.Empty(t, c.Errors())
			want := start - 1
			if start == StepFoundation {
				want = StepFoundation
			}
			assert.Equal(t, want, c.Step())
		})
	}
}

func TestController_OtherCareerPathBlocksWithoutNetwork(t *testing.T) {
	a := NewAnswers()
	completeStep1(t, a)
	completeStep2(t, a)
	completeStep3(t, a)
	c := NewController(a, nil)
	require.True(t, c.Next())

	require.NoError(t, c.Set(FieldCareerPath, CareerPathOther))
	assert.False(t, c.Next())
	assert.Equal(t, StepSkills, c.Step())
	assert.Equal(t, "Please specify your career path", c.Errors()[FieldOtherCareerPath])

	sub := &recordingSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrNotFinalStep)
	assert.Zero(t, sub.calls)
}

func TestController_SubmitValidatesFinalStep(t *testing.T) {
	a := NewAnswers()
	completeStep1(t, a)
	completeStep2(t, a)
	c := NewController(a, nil)
	require.True(t, c.Next())
	require.True(t, c.Next())

	sub := &recordingSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Zero(t, sub.calls)

	completeStep3(t, a)
	out, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, nav.RouteDashboard, out.Route)
	assert.Equal(t, 1, sub.calls)
	assert.Same(t, a, sub.got)
	assert.Empty(t, c.Errors())
}

func TestController_CheckStoresErrorsWithoutMoving(t *testing.T) {
	c := NewController(nil, nil)

	errs := c.Check()
	assert.Len(t, errs, 5)
	assert.Equal(t, errs, c.Errors())
	assert.Equal(t, StepFoundation, c.Step())

	completeStep1(t, c.Answers())
	assert.Empty(t, c.Check())
	assert.Empty(t, c.Errors())
	assert.Equal(t, StepFoundation, c.Step())
}

func TestController_NextOnFinalStepDoesNotAdvance(t *testing.T) {
	a := NewAnswers()
	completeStep1(t, a)
	completeStep2(t, a)
	completeStep3(t, a)
	c := NewController(a, nil)
	require.True(t, c.Next())
	require.True(t, c.Next())

	assert.False(t, c.Next())
	assert.Equal(t, StepProof, c.Step())
	assert.Empty(t, c.Errors())
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "Foundation", StepFoundation.String())
	assert.Equal(t, "Skills & Path", StepSkills.String())
	assert.Equal(t, "The Proof", StepProof.String())
	assert.Equal(t, "Unknown", Step(9).String())
}
