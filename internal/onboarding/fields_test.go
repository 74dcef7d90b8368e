package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnswers_Defaults(t *testing.T) {
	a := NewAnswers()
	assert.Equal(t, DefaultSkillLevel, a.SkillLevel())
	assert.Empty(t, a.Get(FieldMainGoal))
	assert.Nil(t, a.CV())
}

func TestSet_RejectsUnknownAndInvalid(t *testing.T) {
	a := NewAnswers()
	assert.ErrorIs(t, a.Set(Field("favouriteColour"), "blue"), ErrUnknownField)
	assert.ErrorIs(t, a.Set(FieldCVFile, "cv.pdf"), ErrUnknownField)
	assert.ErrorIs(t, a.Set(FieldAge, "99"), ErrInvalidOption)
	assert.ErrorIs(t, a.SetSkillLevel(0), ErrInvalidOption)
	assert.ErrorIs(t, a.SetSkillLevel(6), ErrInvalidOption)
	assert.ErrorIs(t, a.Set(FieldSkillLevel, "three"), ErrInvalidOption)

	// Clearing an enum is allowed.
	require.NoError(t, a.Set(FieldAge, "31+"))
	require.NoError(t, a.Set(FieldAge, ""))
	assert.Empty(t, a.Get(FieldAge))
}

func TestSet_CareerPathSideEffects(t *testing.T) {
	a := NewAnswers()
	require.NoError(t, a.Set(FieldCareerPath, CareerPathOther))
	require.NoError(t, a.Set(FieldOtherCareerPath, "Game design"))

	require.NoError(t, a.Set(FieldCareerPath, "ui-ux"))
	assert.Empty(t, a.Get(FieldOtherCareerPath))

	require.NoError(t, a.SetSkillLevel(4))
	require.NoError(t, a.Set(FieldCareerPath, CareerPathExplore))
	assert.Equal(t, 1, a.SkillLevel())
	assert.ErrorIs(t, a.SetSkillLevel(5), ErrFieldLocked)
	assert.Equal(t, 1, a.SkillLevel())

	require.NoError(t, a.Set(FieldCareerPath, "hr"))
	require.NoError(t, a.SetSkillLevel(5))
	assert.Equal(t, 5, a.SkillLevel())
}

func TestSet_PreviousCoursesNoClearsCertifications(t *testing.T) {
	a := NewAnswers()
	require.NoError(t, a.Set(FieldPreviousCourses, "building"))
	require.NoError(t, a.Set(FieldCertifications, "CS50, Coursera"))

	require.NoError(t, a.Set(FieldPreviousCourses, "incomplete"))
	assert.Equal(t, "CS50, Coursera", a.Get(FieldCertifications))

	require.NoError(t, a.Set(FieldPreviousCourses, PreviousCoursesNo))
	assert.Empty(t, a.Get(FieldCertifications))
}

func TestNewAttachment(t *testing.T) {
	cv, err := NewAttachment("/home/ada/Docs/CV.PDF", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "CV.PDF", cv.Name)

	_, err = NewAttachment("cv.png", nil)
	assert.Error(t, err)
}

func TestSkillLevelLabel(t *testing.T) {
	assert.Equal(t, "No formal experience", SkillLevelLabel(1))
	assert.Equal(t, "Advanced, professional-ready", SkillLevelLabel(5))
	assert.Empty(t, SkillLevelLabel(0))
}

func TestVisibleRules(t *testing.T) {
	a := NewAnswers()
	fields := func(rs []Rule) []Field {
		var out []Field
		for _, r := range rs {
			out = append(out, r.Field)
		}
		return out
	}

	assert.Equal(t, []Field{FieldTargetTimeframe, FieldLearningStyle, FieldCareerPath, FieldPreviousCourses},
		fields(VisibleRules(StepSkills, a)))

	require.NoError(t, a.Set(FieldCareerPath, CareerPathOther))
	require.NoError(t, a.Set(FieldPreviousCourses, "no-work"))
	assert.Equal(t, []Field{
		FieldTargetTimeframe, FieldLearningStyle, FieldCareerPath, FieldOtherCareerPath,
		FieldSkillLevel, FieldPreviousCourses, FieldCertifications,
	}, fields(VisibleRules(StepSkills, a)))
}

func TestSetAll_AppliesDriversFirst(t *testing.T) {
	a := NewAnswers()
	require.NoError(t, a.SetAll(map[Field]string{
		FieldOtherCareerPath: "Robotics",
		FieldCareerPath:      CareerPathOther,
		FieldCertifications:  "CS50",
		FieldPreviousCourses: "building",
		FieldSkillLevel:      "",
	}))
	assert.Equal(t, "Robotics", a.Get(FieldOtherCareerPath))
	assert.Equal(t, "CS50", a.Get(FieldCertifications))
	assert.Equal(t, DefaultSkillLevel, a.SkillLevel())

	b := NewAnswers()
	require.NoError(t, b.SetAll(map[Field]string{FieldCareerPath: CareerPathExplore, FieldSkillLevel: "4"}))
	assert.Equal(t, ExploreSkillLevel, b.SkillLevel())

	assert.ErrorIs(t, NewAnswers().SetAll(map[Field]string{FieldAge: "12"}), ErrInvalidOption)
}
