package onboarding

// Option is one selectable value of an enum field.
type Option struct {
	Value string
	Label string
}

// Predicate is evaluated over the current answers.
type Predicate func(a *Answers) bool

// Rule declares how a field is shown and when it must be filled in.
type Rule struct {
	Field    Field
	Step     Step
	Label    string
	Options  []Option
	Optional bool
	Message  string

	// VisibleWhen is nil for always-visible fields.
	VisibleWhen Predicate
	// RequiredWhen is nil for fields that are required whenever they are not Optional.
	RequiredWhen Predicate
}

// Visible reports whether the field is shown for the given answers.
func (r Rule) Visible(a *Answers) bool {
	return r.VisibleWhen == nil || r.VisibleWhen(a)
}

// Required reports whether the field must be non-empty for the given answers.
func (r Rule) Required(a *Answers) bool {
	if r.Optional {
		return false
	}
	if r.RequiredWhen == nil {
		return true
	}
	return r.RequiredWhen(a)
}

// HasOption reports whether v is one of the rule's option values.
func (r Rule) HasOption(v string) bool {
	for _, o := range r.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// FreeText reports whether the field takes typed input rather than a choice.
func (r Rule) FreeText() bool {
	return len(r.Options) == 0 && r.Field != FieldSkillLevel && r.Field != FieldCVFile
}

func careerPathIsOther(a *Answers) bool {
	return a.Get(FieldCareerPath) == CareerPathOther
}

func careerPathNeedsSkill(a *Answers) bool {
	cp := a.Get(FieldCareerPath)
	return cp != "" && cp != CareerPathExplore
}

// certificationCourses are the previousCourses answers that ask for a course list.
var certificationCourses = map[string]bool{
	"incomplete": true,
	"no-work":    true,
	"building":   true,
}

func coursesNeedCertifications(a *Answers) bool {
	return certificationCourses[a.Get(FieldPreviousCourses)]
}

// Rules is the form definition in display order.
var Rules = []Rule{
	{
		Field: FieldMainGoal, Step: StepFoundation,
		Label:   "What's your main goal with FutureProof?",
		Message: "Please select your main goal",
		Options: []Option{
			{"first-job", "Land my first full-time job"},
			{"switch-career", "Switch to a new professional field"},
			{"build-skills", "Build high-value skills while in school"},
			{"freelance", "Start freelancing/consulting"},
			{"explore", "Explore professional paths"},
		},
	},
	{
		Field: FieldAge, Step: StepFoundation,
		Label:   "How old are you?",
		Message: "Please select your age range",
		Options: []Option{
			{"15-17", "15-17"}, {"18-22", "18-22"}, {"23-26", "23-26"}, {"27-30", "27-30"}, {"31+", "31+"},
		},
	},
	{
		Field: FieldCurrentSituation, Step: StepFoundation,
		Label:   "What best describes your current situation?",
		Message: "Please select your current situation",
		Options: []Option{
			{"secondary", "Secondary school student"},
			{"university", "University/College student"},
			{"graduate", "Recent graduate (0-2 years)"},
			{"working-non-related", "Working (in a different field)"},
			{"unemployed", "Unemployed/Job seeking"},
			{"self-employed", "Self-employed/Business owner"},
		},
	},
	{
		Field: FieldLearningPace, Step: StepFoundation,
		Label:   "How much time can you commit to learning/skill-building each week?",
		Message: "Please select your weekly commitment",
		Options: []Option{
			{"2-4", "2-4 hours (Side hustle pace)"},
			{"5-10", "5-10 hours (Part-time commitment)"},
			{"11-20", "11-20 hours (Serious learner)"},
			{"20+", "20+ hours (Full-time dedication)"},
		},
	},
	{
		Field: FieldBiggestChallenge, Step: StepFoundation,
		Label:   "What's your biggest challenge in starting or advancing your career?",
		Message: "Please select your biggest challenge",
		Options: []Option{
			{"no-experience", `No verifiable experience (the "Experience Trap")`},
			{"dont-know", "Don't know which direction to go"},
			{"limited-time", "Limited time to learn/upskill"},
			{"cant-afford", "Can't afford expensive training/degrees"},
			{"no-guidance", "No one to guide me"},
			{"infrastructure", "Unstable power/internet infrastructure"},
		},
	},
	{
		Field: FieldCVFile, Step: StepFoundation,
		Label:    "Upload your CV/Resume (optional, PDF/DOCX path)",
		Optional: true,
	},
	{
		Field: FieldTargetTimeframe, Step: StepSkills,
		Label:   "What is your target timeline for achieving your goal?",
		Message: "Please select your target timeframe",
		Options: []Option{
			{"3-months", "3 months (Aggressive learning)"},
			{"6-months", "6 months (Standard pace)"},
			{"12-months", "12 months (Flexible, deep dive)"},
			{"explore", "Just exploring the options"},
		},
	},
	{
		Field: FieldLearningStyle, Step: StepSkills,
		Label:   "How do you learn best?",
		Message: "Please select your preferred learning style",
		Options: []Option{
			{"visual", "Visual (Videos, diagrams, demos)"},
			{"kinesthetic", "Kinesthetic (Hands-on projects, doing, practice)"},
			{"reading", "Reading/Writing (Textbooks, manuals, documentation)"},
			{"social", "Social (Group discussions, mentorship, live sessions)"},
		},
	},
	{
		Field: FieldCareerPath, Step: StepSkills,
		Label:   "Which professional path interests you most?",
		Message: "Please select a professional path",
		Options: []Option{
			{"web-dev", "Web Development (Frontend/Backend)"},
			{"data-analysis", "Data Analysis/Science"},
			{"ui-ux", "UI/UX Design"},
			{"cybersecurity", "Cybersecurity/IT Support"},
			{"digital-marketing", "Digital Marketing/SEO"},
			{"content-writing", "Content Creation/Professional Writing"},
			{"project-mgmt", "Project Coordination/Management"},
			{"biz-analysis", "Business Analysis/Operations"},
			{"sales-success", "Sales/Customer Success"},
			{"hr", "Human Resources/Recruitment"},
			{CareerPathExplore, "Not sure yet - help me explore"},
			{CareerPathOther, "Other (type below)"},
		},
	},
	{
		Field: FieldOtherCareerPath, Step: StepSkills,
		Label:        "Please specify your career path",
		Message:      "Please specify your career path",
		VisibleWhen:  careerPathIsOther,
		RequiredWhen: careerPathIsOther,
	},
	{
		Field: FieldSkillLevel, Step: StepSkills,
		Label:        "Rate your current skill level in this path (1-5)",
		Message:      "Please rate your current skill level",
		VisibleWhen:  careerPathNeedsSkill,
		RequiredWhen: careerPathNeedsSkill,
	},
	{
		Field: FieldPreviousCourses, Step: StepSkills,
		Label:   "Have you taken online courses or certifications before?",
		Message: "Please select an option",
		Options: []Option{
			{PreviousCoursesNo, "No, this is my first time"},
			{"incomplete", "Yes, but I didn't finish"},
			{"no-work", "Yes, but I couldn't find work after"},
			{"building", "Yes, and I'm actively building on it"},
		},
	},
	{
		Field: FieldCertifications, Step: StepSkills,
		Label:        "Which courses or certifications have you taken?",
		Message:      "Please list the courses or certifications you have taken.",
		VisibleWhen:  coursesNeedCertifications,
		RequiredWhen: coursesNeedCertifications,
	},
	{
		Field: FieldUnderstanding, Step: StepProof,
		Label:   "We focus on proof of skill, not certificates. Does that make sense?",
		Message: "Please confirm your understanding",
		Options: []Option{
			{"yes", "Yes, I get it - show proof, not paper"},
			{"maybe", "I think so, but tell me more later"},
			{"curious", "Not really, but I'm curious"},
		},
	},
	{
		Field: FieldMotivation, Step: StepProof,
		Label:    "What motivates you? (optional)",
		Optional: true,
	},
	{
		Field: FieldHearAbout, Step: StepProof,
		Label:   "How did you hear about us?",
		Message: "Please tell us how you heard about us",
		Options: []Option{
			{"social", "Social media (Instagram/Twitter/LinkedIn)"},
			{"friend", "Friend or family recommendation"},
			{"youtube", "YouTube/Blog article"},
			{"google", "Google search"},
			{"community", "Professional community/WhatsApp group"},
			{"other", "Other"},
		},
	},
}

func ruleFor(f Field) (Rule, bool) {
	for _, r := range Rules {
		if r.Field == f {
			return r, true
		}
	}
	return Rule{}, false
}

// RuleFor looks up the rule of a field.
func RuleFor(f Field) (Rule, bool) {
	return ruleFor(f)
}

// StepRules returns the rules of one step in display order.
func StepRules(s Step) []Rule {
	var out []Rule
	for _, r := range Rules {
		if r.Step == s {
			out = append(out, r)
		}
	}
	return out
}

// VisibleRules returns the step's rules that are currently shown.
func VisibleRules(s Step, a *Answers) []Rule {
	var out []Rule
	for _, r := range StepRules(s) {
		if r.Visible(a) {
			out = append(out, r)
		}
	}
	return out
}
