package main

import (
	"errors"
	"fmt"
	"os"

	"futureproof/cmd/futureproof/ui"
	"futureproof/internal/auth"
	"futureproof/internal/nav"
	"futureproof/internal/session"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authName     string
	authRole     string
)

// authCmd manages the signed-in session
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign up and sign out",
	Long: `Manage your FutureProof session.

Available subcommands:
  login    - Sign in with email and password
  register - Create an account and sign in
  status   - Show who is signed in
  logout   - Forget the stored session`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long: `Sign in to FutureProof.

Without --email the interactive form opens. With --email and --password the
sign-in runs without the UI and prints where to go next.`,
	Annotations: map[string]string{annotationTUI: "email"},
	RunE:        runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:         "register",
	Short:       "Create an account",
	Long:        `Create a FutureProof account. A new account always continues to onboarding.`,
	Annotations: map[string]string{annotationTUI: "email"},
	RunE:        runAuthRegister,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in user",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE:  runAuthLogout,
}

func init() {
	for _, c := range []*cobra.Command{authLoginCmd, authRegisterCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email (skips the interactive form)")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (or set FUTUREPROOF_PASSWORD)")
	}
	authRegisterCmd.Flags().StringVar(&authName, "name", "", "Full name")
	authRegisterCmd.Flags().StringVar(&authRole, "role", auth.DefaultRole, "Account role")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func password() string {
	if authPassword != "" {
		return authPassword
	}
	return os.Getenv("FUTUREPROOF_PASSWORD")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	return runAuth(cmd, ui.ModeLogin)
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	return runAuth(cmd, ui.ModeRegister)
}

func runAuth(cmd *cobra.Command, mode ui.AuthMode) error {
	ctx, cancel := signalContext()
	defer cancel()

	authn, client, err := newAuthenticator()
	if err != nil {
		return err
	}

	if usesTUI(cmd) {
		form := ui.NewAuthForm(ctx, authn, ui.NewStyles(theme()), mode)
		if err := runProgram(ctx, form); err != nil {
			return err
		}
		return runScreens(ctx, cmd.OutOrStdout(), authn, client, form.Route)
	}

	var res *auth.Result
	if mode == ui.ModeRegister {
		res, err = authn.Register(ctx, authName, authEmail, password(), authRole)
	} else {
		res, err = authn.Login(ctx, authEmail, password())
	}
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Message)
	return nav.Follow(ctx, res.Outcome, printNavigator(out))
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	authn, _, err := newAuthenticator()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	u, err := authn.Whoami(ctx)
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}

	fmt.Fprintf(out, "Signed in as %s <%s> (%s)\n", u.FullName, u.Email, u.Role)
	if u.HasTakenOnboarding {
		fmt.Fprintln(out, "Onboarding: complete")
	} else {
		fmt.Fprintln(out, "Onboarding: pending")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	authn, _, err := newAuthenticator()
	if err != nil {
		return err
	}
	if err := authn.Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}
