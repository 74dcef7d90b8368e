package onboarding

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors maps a field to the message shown next to it.
type ValidationErrors map[Field]string

// Error lists the failing fields in a stable order.
func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return fmt.Sprintf("onboarding: %d field(s) need attention: %s", len(e), strings.Join(fields, ", "))
}

// Validate checks the required fields of one step. The result is empty when
// the step is complete. It has no side effects.
func Validate(step Step, a *Answers) ValidationErrors {
	errs := ValidationErrors{}
	for _, r := range StepRules(step) {
		if !r.Required(a) {
			continue
		}
		if isEmpty(r.Field, a) {
			errs[r.Field] = r.Message
		}
	}
	return errs
}

func isEmpty(f Field, a *Answers) bool {
	switch f {
	case FieldCVFile:
		return a.CV() == nil
	case FieldSkillLevel:
		return a.SkillLevel() == 0
	}
	return strings.TrimSpace(a.Get(f)) == ""
}
