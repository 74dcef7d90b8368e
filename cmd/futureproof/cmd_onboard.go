package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"futureproof/internal/auth"
	"futureproof/internal/logging"
	"futureproof/internal/nav"
	"futureproof/internal/onboarding"
	"futureproof/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var answersFile string

// onboardCmd runs the onboarding questionnaire
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete the onboarding questionnaire",
	Long: `Walk through the three onboarding steps and submit them.

Without --answers the interactive wizard opens. With --answers the steps are
filled from a YAML file and submitted without the UI:

  futureproof onboard --answers answers.yaml

Run 'futureproof onboard schema' to see the accepted keys and values.`,
	Annotations: map[string]string{annotationTUI: "answers"},
	RunE:        runOnboard,
}

var onboardSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of an answers file",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(onboarding.Schema())
	},
}

func init() {
	onboardCmd.Flags().StringVar(&answersFile, "answers", "", "YAML answers file (skips the wizard)")
	onboardCmd.AddCommand(onboardSchemaCmd)
}

func runOnboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	authn, client, err := newAuthenticator()
	if err != nil {
		return err
	}
	s, err := authn.Current()
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}

	if usesTUI(cmd) {
		return runScreens(ctx, cmd.OutOrStdout(), authn, client, nav.RouteOnboarding)
	}

	answers, err := onboarding.LoadAnswers(answersFile)
	if err != nil {
		return err
	}

	onbLog := logging.Get(logging.CategoryOnboarding)
	ctrl := onboarding.NewController(answers, onbLog)
	for ctrl.Step() != onboarding.StepProof {
		if !ctrl.Next() {
			return stepError(ctrl.Step(), ctrl.Errors())
		}
	}

	submitter := onboarding.NewHTTPSubmitter(client, s, cfg.GetSubmitRedirect(), onbLog)
	outcome, err := ctrl.Submit(ctx, submitter)
	if err != nil {
		var ve onboarding.ValidationErrors
		var se *onboarding.SubmitError
		switch {
		case errors.As(err, &ve):
			return stepError(onboarding.StepProof, ve)
		case errors.As(err, &se):
			return errors.New(se.Error())
		case errors.Is(err, session.ErrNoSession):
			return errors.New(auth.UserMessage(err))
		}
		return err
	}
	onbLog.Info("answers file submitted", zap.String("file", answersFile))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, outcome.Message)
	return nav.Follow(ctx, outcome, printNavigator(out))
}

// stepError lists a step's missing answers in display order.
func stepError(step onboarding.Step, errs onboarding.ValidationErrors) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "step %d (%s) is incomplete:", step, step)
	writeFieldErrors(&sb, step, errs)
	return errors.New(sb.String())
}

func writeFieldErrors(w io.Writer, step onboarding.Step, errs onboarding.ValidationErrors) {
	for _, r := range onboarding.StepRules(step) {
		if msg, ok := errs[r.Field]; ok {
			fmt.Fprintf(w, "\n  - %s: %s", r.Field, msg)
		}
	}
}
