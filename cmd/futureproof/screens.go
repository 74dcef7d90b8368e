package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"futureproof/cmd/futureproof/ui"
	"futureproof/internal/api"
	"futureproof/internal/auth"
	"futureproof/internal/logging"
	"futureproof/internal/nav"
	"futureproof/internal/onboarding"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runHome opens the screen the stored session calls for.
func runHome(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	authn, client, err := newAuthenticator()
	if err != nil {
		return err
	}

	route := nav.RouteAuth
	if _, err := authn.Current(); err == nil {
		if r, err := authn.Landing(ctx); err == nil {
			route = r
		} else {
			logger.Debug("stored session not usable", zap.Error(err))
		}
	}
	return runScreens(ctx, cmd.OutOrStdout(), authn, client, route)
}

// runScreens shows one screen after the other until one ends without a
// next route.
func runScreens(ctx context.Context, out io.Writer, authn *auth.Authenticator, client *api.Client, route nav.Route) error {
	uiLog := logging.Get(logging.CategoryUI)
	styles := ui.NewStyles(theme())

	for route != "" {
		uiLog.Debug("opening screen", zap.String("route", string(route)))

		switch route {
		case nav.RouteAuth:
			form := ui.NewAuthForm(ctx, authn, styles, ui.ModeLogin)
			if err := runProgram(ctx, form); err != nil {
				return err
			}
			route = form.Route

		case nav.RouteOnboarding:
			s, err := authn.Current()
			if err != nil {
				route = nav.RouteAuth
				continue
			}
			onbLog := logging.Get(logging.CategoryOnboarding)
			ctrl := onboarding.NewController(nil, onbLog)
			submitter := onboarding.NewHTTPSubmitter(client, s, cfg.GetSubmitRedirect(), onbLog)
			wizard := ui.NewWizard(ctx, ctrl, submitter, styles, ui.NewMarkdown(styles.Theme, 76))
			if err := runWizard(ctx, authn, wizard); err != nil {
				return err
			}
			route = wizard.Route

		case nav.RouteDashboard:
			return showDashboard(ctx, out, authn)

		default:
			return fmt.Errorf("unknown route %q", route)
		}
	}
	return nil
}

func runProgram(ctx context.Context, m tea.Model) error {
	return run(tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)))
}

func run(p *tea.Program) error {
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// runWizard shows the questionnaire and sends the user back to sign-in if
// the session is removed meanwhile.
func runWizard(ctx context.Context, authn *auth.Authenticator, wizard *ui.WizardModel) error {
	p := tea.NewProgram(wizard, tea.WithAltScreen(), tea.WithContext(ctx))

	w, err := authn.WatchSession(ctx)
	if err != nil {
		logger.Debug("session watch unavailable", zap.Error(err))
		return run(p)
	}
	defer w.Stop()

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-w.Ended():
			p.Send(ui.SessionEndedMsg{})
		case <-closed:
		case <-ctx.Done():
		}
	}()
	return run(p)
}

// showDashboard prints the signed-in user's profile.
func showDashboard(ctx context.Context, out io.Writer, authn *auth.Authenticator) error {
	u, err := authn.Whoami(ctx)
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}
	styles := ui.NewStyles(theme())
	fmt.Fprintln(out, ui.RenderProfile(u, styles, ui.NewMarkdown(styles.Theme, 76)))
	return nil
}

// printNavigator tells a non-interactive user which command opens the next screen.
func printNavigator(out io.Writer) nav.Navigator {
	return nav.NavigatorFunc(func(r nav.Route) {
		switch r {
		case nav.RouteOnboarding:
			fmt.Fprintln(out, "Next: run `futureproof onboard` to complete your profile.")
		case nav.RouteDashboard:
			fmt.Fprintln(out, "Next: run `futureproof dashboard` to see your profile.")
		case nav.RouteAuth:
			fmt.Fprintln(out, "Next: run `futureproof auth login` to sign in.")
		}
	})
}
