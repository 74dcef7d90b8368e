// Package onboarding holds the onboarding questionnaire: the answer store, the
// declarative field rules, step validation, the step controller and the
// multipart submission to the API.
package onboarding

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Field names a single onboarding question. The string value is the form key
// sent to the API.
type Field string

const (
	// Step 1 - Foundation
	FieldMainGoal         Field = "mainGoal"
	FieldAge              Field = "age"
	FieldCurrentSituation Field = "currentSituation"
	FieldBiggestChallenge Field = "biggestChallenge"
	FieldLearningPace     Field = "learningPace"
	FieldCVFile           Field = "cvFile"

	// Step 2 - Skills & Path
	FieldCareerPath      Field = "careerPath"
	FieldOtherCareerPath Field = "otherCareerPath"
	FieldTargetTimeframe Field = "targetTimeframe"
	FieldLearningStyle   Field = "learningStyle"
	FieldSkillLevel      Field = "skillLevel"
	FieldPreviousCourses Field = "previousCourses"
	FieldCertifications  Field = "certifications"

	// Step 3 - The Proof
	FieldUnderstanding Field = "understanding"
	FieldMotivation    Field = "motivation"
	FieldHearAbout     Field = "hearAbout"
)

// Sentinel option values that drive conditional fields.
const (
	CareerPathOther   = "other-input"
	CareerPathExplore = "explore"
	PreviousCoursesNo = "no"
)

const (
	// DefaultSkillLevel is the slider position when the form opens.
	DefaultSkillLevel = 3
	// ExploreSkillLevel is forced while careerPath is "explore".
	ExploreSkillLevel = 1
	MinSkillLevel     = 1
	MaxSkillLevel     = 5
)

var (
	// ErrUnknownField is returned when setting a field that is not part of the form.
	ErrUnknownField = errors.New("unknown onboarding field")
	// ErrInvalidOption is returned when an enum field is set outside its option set.
	ErrInvalidOption = errors.New("value is not a valid option")
	// ErrFieldLocked is returned when editing skillLevel while careerPath is "explore".
	ErrFieldLocked = errors.New("field is fixed for the current selection")
)

// Attachment is the optional CV upload.
type Attachment struct {
	Name string
	Data []byte
}

// AllowedCVExtensions lists the file types the CV picker accepts.
var AllowedCVExtensions = []string{".pdf", ".doc", ".docx"}

// NewAttachment validates the file extension and wraps the content.
func NewAttachment(name string, data []byte) (*Attachment, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedCVExtensions {
		if ext == allowed {
			return &Attachment{Name: filepath.Base(name), Data: data}, nil
		}
	}
	return nil, fmt.Errorf("cv file %q: unsupported type (want %s)", name, strings.Join(AllowedCVExtensions, ", "))
}

// Answers is the in-memory field store. It is created empty when the form
// opens and mutated one field at a time through Set.
type Answers struct {
	values map[Field]string
	cv     *Attachment
}

// NewAnswers returns an empty store with the skill slider at its default.
func NewAnswers() *Answers {
	return &Answers{
		values: map[Field]string{
			FieldSkillLevel: strconv.Itoa(DefaultSkillLevel),
		},
	}
}

// Get returns the raw text value of a field ("" when unset).
func (a *Answers) Get(f Field) string {
	return a.values[f]
}

// SkillLevel returns the numeric skill level, or 0 when unset.
func (a *Answers) SkillLevel() int {
	n, err := strconv.Atoi(a.values[FieldSkillLevel])
	if err != nil {
		return 0
	}
	return n
}

// CV returns the attached CV, if any.
func (a *Answers) CV() *Attachment {
	return a.cv
}

// SetCV attaches (or with nil, removes) the CV file.
func (a *Answers) SetCV(cv *Attachment) {
	a.cv = cv
}

// Set updates a field and applies the dependent-field side effects.
func (a *Answers) Set(f Field, value string) error {
	r, ok := ruleFor(f)
	if !ok || f == FieldCVFile {
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}

	switch {
	case f == FieldSkillLevel:
		if a.values[FieldCareerPath] == CareerPathExplore {
			return fmt.Errorf("%s: %w", f, ErrFieldLocked)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < MinSkillLevel || n > MaxSkillLevel {
			return fmt.Errorf("%s=%q: must be %d-%d: %w", f, value, MinSkillLevel, MaxSkillLevel, ErrInvalidOption)
		}
		value = strconv.Itoa(n)
	case len(r.Options) > 0 && value != "":
		if !r.HasOption(value) {
			return fmt.Errorf("%s=%q: %w", f, value, ErrInvalidOption)
		}
	}

	a.values[f] = value

	switch f {
	case FieldCareerPath:
		if value != CareerPathOther {
			a.values[FieldOtherCareerPath] = ""
		}
		if value == CareerPathExplore {
			a.values[FieldSkillLevel] = strconv.Itoa(ExploreSkillLevel)
		}
	case FieldPreviousCourses:
		if value == PreviousCoursesNo {
			a.values[FieldCertifications] = ""
		}
	}
	return nil
}

// SetSkillLevel is Set for the numeric slider.
func (a *Answers) SetSkillLevel(n int) error {
	return a.Set(FieldSkillLevel, strconv.Itoa(n))
}

// SetAll applies a batch of answers. careerPath and previousCourses go first
// so their side effects do not wipe the dependent answers that follow, and
// skillLevel is skipped while careerPath is explore. Empty skillLevel values
// are ignored.
func (a *Answers) SetAll(values map[Field]string) error {
	order := []Field{FieldCareerPath, FieldPreviousCourses}
	for _, r := range Rules {
		if r.Field != FieldCareerPath && r.Field != FieldPreviousCourses && r.Field != FieldCVFile {
			order = append(order, r.Field)
		}
	}

	for _, f := range order {
		v, ok := values[f]
		if !ok {
			continue
		}
		if f == FieldSkillLevel && (v == "" || a.values[FieldCareerPath] == CareerPathExplore) {
			continue
		}
		if err := a.Set(f, v); err != nil {
			return err
		}
	}
	return nil
}

// SkillLevelLabel describes a slider position.
func SkillLevelLabel(n int) string {
	switch n {
	case 1:
		return "No formal experience"
	case 2:
		return "Explored basics/theory"
	case 3:
		return "Completed a few projects/tasks"
	case 4:
		return "Intermediate, reliable skills"
	case 5:
		return "Advanced, professional-ready"
	}
	return ""
}
