package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"futureproof/internal/auth"
	"futureproof/internal/nav"
	"futureproof/internal/onboarding"
	"futureproof/internal/session"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

var stepIntros = map[onboarding.Step]string{
	onboarding.StepFoundation: "## Foundation\nTell us where you are today and how much time you can give each week.",
	onboarding.StepSkills:     "## Skills & Path\nPick the path you want to prove yourself in and how you like to learn.",
	onboarding.StepProof:      "## The Proof\nFutureProof is about **proof of skill, not paper**. A last few questions.",
}

type submitDoneMsg struct {
	outcome nav.Outcome
	err     error
}

// SessionEndedMsg reports that the stored session went away while the wizard
// was open.
type SessionEndedMsg struct{}

type cvLoadedMsg struct {
	path string
	cv   *onboarding.Attachment
	err  error
}

// WizardModel is the three-step onboarding questionnaire.
type WizardModel struct {
	ctx       context.Context
	ctrl      *onboarding.Controller
	submitter onboarding.Submitter
	styles    Styles
	md        *Markdown

	viewport viewport.Model
	progress progress.Model
	spinner  spinner.Model
	input    textinput.Model

	focus    onboarding.Field
	fieldErr map[onboarding.Field]string
	width    int
	height   int

	busy    bool
	status  string
	failure string

	// Route is set once the submission succeeded and the delay ran out.
	Route nav.Route
}

// NewWizard opens the questionnaire on the controller's current step.
func NewWizard(ctx context.Context, ctrl *onboarding.Controller, s onboarding.Submitter, styles Styles, md *Markdown) *WizardModel {
	m := &WizardModel{
		ctx:       ctx,
		ctrl:      ctrl,
		submitter: s,
		styles:    styles,
		md:        md,
		viewport:  viewport.New(80, 20),
		progress:  progress.New(progress.WithDefaultGradient()),
		fieldErr:  map[onboarding.Field]string{},
		width:     80,
		height:    24,
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	m.spinner = sp

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	m.input = ti

	ctrl.OnEnterStep = m.onEnterStep
	m.onEnterStep(ctrl.Step())
	return m
}

// Focused returns the field that currently has focus.
func (m *WizardModel) Focused() onboarding.Field { return m.focus }

// Status returns the success and failure lines currently shown.
func (m *WizardModel) Status() (status, failure string) { return m.status, m.failure }

func (m *WizardModel) onEnterStep(onboarding.Step) {
	m.fieldErr = map[onboarding.Field]string{}
	m.failure = ""
	if rules := m.visible(); len(rules) > 0 {
		m.setFocus(rules[0].Field)
	}
	m.viewport.GotoTop()
}

func (m *WizardModel) visible() []onboarding.Rule {
	return onboarding.VisibleRules(m.ctrl.Step(), m.ctrl.Answers())
}

// focusIndex is the position of the focused field among the visible ones,
// or 0 when it has been hidden.
func (m *WizardModel) focusIndex(rules []onboarding.Rule) int {
	for i, r := range rules {
		if r.Field == m.focus {
			return i
		}
	}
	return 0
}

func (m *WizardModel) setFocus(f onboarding.Field) tea.Cmd {
	m.focus = f
	r, _ := onboarding.RuleFor(f)
	switch {
	case r.FreeText():
		m.input.Placeholder = ""
		m.input.SetValue(m.ctrl.Answers().Get(f))
		return m.input.Focus()
	case f == onboarding.FieldCVFile:
		m.input.Placeholder = "path/to/cv.pdf, enter to attach"
		m.input.SetValue("")
		if cv := m.ctrl.Answers().CV(); cv != nil {
			m.input.SetValue(cv.Name)
		}
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *WizardModel) moveFocus(delta int) tea.Cmd {
	rules := m.visible()
	if len(rules) == 0 {
		return nil
	}
	i := (m.focusIndex(rules) + delta + len(rules)) % len(rules)
	return m.setFocus(rules[i].Field)
}

// cycle moves an enum field or the skill slider by delta.
func (m *WizardModel) cycle(delta int) {
	r, ok := onboarding.RuleFor(m.focus)
	if !ok {
		return
	}
	a := m.ctrl.Answers()

	if r.Field == onboarding.FieldSkillLevel {
		n := a.SkillLevel() + delta
		if n < onboarding.MinSkillLevel || n > onboarding.MaxSkillLevel {
			return
		}
		if err := m.ctrl.Set(r.Field, strconv.Itoa(n)); err != nil {
			m.fieldErr[r.Field] = err.Error()
		}
		return
	}
	if len(r.Options) == 0 {
		return
	}

	idx := -1
	for i, o := range r.Options {
		if o.Value == a.Get(r.Field) {
			idx = i
		}
	}
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(r.Options) - 1
	default:
		idx = (idx + delta + len(r.Options)) % len(r.Options)
	}
	if err := m.ctrl.Set(r.Field, r.Options[idx].Value); err != nil {
		m.fieldErr[r.Field] = err.Error()
	}
}

// Init starts the cursor blinking.
func (m *WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(msg.Width-8, 10)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 5)
		m.md = NewMarkdown(m.styles.Theme, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.busy || m.status != "" {
			return m, nil
		}
		return m.handleKey(msg)

	case cvLoadedMsg:
		if msg.err != nil {
			m.fieldErr[onboarding.FieldCVFile] = msg.err.Error()
			return m, nil
		}
		delete(m.fieldErr, onboarding.FieldCVFile)
		m.ctrl.SetCV(msg.cv)
		if msg.cv != nil {
			m.input.SetValue(msg.cv.Name)
		}
		return m, nil

	case submitDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.failure = submitFailure(msg.err)
			return m, nil
		}
		m.status = msg.outcome.Message
		return m, navigateAfter(msg.outcome)

	case NavigateMsg:
		m.Route = msg.Route
		return m, tea.Quit

	case SessionEndedMsg:
		m.Route = nav.RouteAuth
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *WizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		m.failure = ""
		m.ctrl.Next()
		return m, nil
	case "ctrl+b":
		m.failure = ""
		m.ctrl.Back()
		m.fieldErr = map[onboarding.Field]string{}
		return m, nil
	case "ctrl+s":
		return m, m.submit()
	case "down", "tab":
		return m, m.moveFocus(1)
	case "up", "shift+tab":
		return m, m.moveFocus(-1)
	case "left":
		if !m.input.Focused() {
			m.cycle(-1)
			return m, nil
		}
	case "right":
		if !m.input.Focused() {
			m.cycle(1)
			return m, nil
		}
	case "enter":
		if m.focus == onboarding.FieldCVFile {
			return m, loadCVCmd(m.input.Value())
		}
		return m, m.moveFocus(1)
	}

	if !m.input.Focused() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if r, _ := onboarding.RuleFor(m.focus); r.FreeText() {
		if err := m.ctrl.Set(m.focus, m.input.Value()); err != nil {
			m.fieldErr[m.focus] = err.Error()
		}
	}
	return m, cmd
}

// submit validates the final step here and only sends complete answers. The
// request runs without touching the controller so View never races it.
func (m *WizardModel) submit() tea.Cmd {
	if m.ctrl.Step() != onboarding.StepProof {
		return nil
	}
	m.failure = ""
	if len(m.ctrl.Check()) > 0 {
		return nil
	}
	m.busy = true
	return tea.Batch(m.spinner.Tick, m.submitCmd())
}

func (m *WizardModel) submitCmd() tea.Cmd {
	ctx, s, a := m.ctx, m.submitter, m.ctrl.Answers()
	return func() tea.Msg {
		out, err := s.Submit(ctx, a)
		return submitDoneMsg{outcome: out, err: err}
	}
}

func loadCVCmd(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	return func() tea.Msg {
		if path == "" {
			return cvLoadedMsg{}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return cvLoadedMsg{path: path, err: fmt.Errorf("cannot read %s", path)}
		}
		cv, err := onboarding.NewAttachment(path, data)
		return cvLoadedMsg{path: path, cv: cv, err: err}
	}
}

func submitFailure(err error) string {
	var se *onboarding.SubmitError
	var ve onboarding.ValidationErrors
	switch {
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &ve):
		return "Please fix the highlighted fields."
	case errors.Is(err, session.ErrNoSession):
		return auth.UserMessage(err)
	case errors.Is(err, context.Canceled):
		return "Submission cancelled."
	}
	return err.Error()
}

// View renders the wizard.
func (m *WizardModel) View() string {
	s := m.styles
	step := m.ctrl.Step()

	var header strings.Builder
	header.WriteString(Logo(s))
	header.WriteString("\n")
	header.WriteString(m.progress.ViewAs(float64(step) / float64(len(onboarding.Steps))))
	header.WriteString("\n")
	header.WriteString(s.Muted.Render(fmt.Sprintf("Step %d of %d: %s", step, len(onboarding.Steps), step)))

	content, focusLine := m.renderFields()
	m.viewport.SetContent(content)
	if focusLine < m.viewport.YOffset || focusLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(focusLine)
	}

	var status string
	switch {
	case m.busy:
		status = m.spinner.View() + " " + s.Muted.Render("Submitting...")
	case m.failure != "":
		status = s.Error.Render(m.failure)
	case m.status != "":
		status = s.Success.Render(m.status)
	}

	keys := "↑/↓ field • ←/→ choose • ctrl+n next • ctrl+b back • esc quit"
	if step == onboarding.StepProof {
		keys = "↑/↓ field • ←/→ choose • ctrl+s submit • ctrl+b back • esc quit"
	}

	return strings.Join([]string{
		header.String(),
		m.viewport.View(),
		status,
		s.Footer.Render(keys),
	}, "\n")
}

// renderFields draws the step body and reports the line of the focused field.
func (m *WizardModel) renderFields() (string, int) {
	s := m.styles
	a := m.ctrl.Answers()
	stored := m.ctrl.Errors()

	var lines []string
	lines = append(lines, strings.Split(m.md.Render(stepIntros[m.ctrl.Step()]), "\n")...)
	lines = append(lines, "")

	focusLine := 0
	for _, r := range m.visible() {
		focused := r.Field == m.focus
		label := s.Label
		if focused {
			focusLine = len(lines)
			label = s.FocusedLabel
		}
		title := r.Label
		if r.Required(a) {
			title += " *"
		}
		lines = append(lines, label.Render(title))
		lines = append(lines, m.renderValue(r, focused))

		if msg := m.fieldErr[r.Field]; msg != "" {
			lines = append(lines, s.FieldError.Render(msg))
		} else if msg := stored[r.Field]; msg != "" {
			lines = append(lines, s.FieldError.Render(msg))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), focusLine
}

func (m *WizardModel) renderValue(r onboarding.Rule, focused bool) string {
	s := m.styles
	a := m.ctrl.Answers()

	switch {
	case r.Field == onboarding.FieldSkillLevel:
		n := a.SkillLevel()
		text := fmt.Sprintf("%d/%d %s", n, onboarding.MaxSkillLevel, onboarding.SkillLevelLabel(n))
		if focused {
			return "  " + s.SelectedOption.Render("◀ "+text+" ▶")
		}
		return "  " + s.Body.Render(text)

	case r.Field == onboarding.FieldCVFile:
		if focused {
			return m.input.View()
		}
		if cv := a.CV(); cv != nil {
			return "  " + s.Body.Render(cv.Name)
		}
		return "  " + s.Muted.Render("No file attached")

	case r.FreeText():
		if focused {
			return m.input.View()
		}
		if v := a.Get(r.Field); v != "" {
			return "  " + s.Body.Render(v)
		}
		return "  " + s.Muted.Render("(empty)")
	}

	value := a.Get(r.Field)
	idx, label := 0, ""
	for i, o := range r.Options {
		if o.Value == value {
			idx, label = i+1, o.Label
		}
	}
	if label == "" {
		label = "Select an option"
	}
	if focused {
		return "  " + s.SelectedOption.Render("◀ "+label+" ▶") + " " + s.Muted.Render(fmt.Sprintf("%d/%d", idx, len(r.Options)))
	}
	if value == "" {
		return "  " + s.Option.Render(label)
	}
	return "  " + s.Body.Render(label)
}
