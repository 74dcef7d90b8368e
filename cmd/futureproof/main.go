package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futureproof/cmd/futureproof/ui"
	"futureproof/internal/api"
	"futureproof/internal/auth"
	"futureproof/internal/config"
	"futureproof/internal/logging"
	"futureproof/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	cfgPath string
	apiURL  string
	timeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// annotationTUI marks commands that open the terminal UI. The value names the
// flag that switches the command to plain output instead ("" for none).
const annotationTUI = "tui"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "futureproof",
	Short: "FutureProof - proof of skill, not paper",
	Long: `FutureProof signs you in, walks you through the onboarding questionnaire
and shows your dashboard.

Run without arguments to open the interactive client: it picks up a stored
session and opens the screen you need next.`,
	SilenceUsage: true,
	Annotations:  map[string]string{annotationTUI: ""},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
		logging.CloseAll()
	},
	RunE: runHome,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: .futureproof/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (or set FUTUREPROOF_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(mockAPICmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, applies the global flags and starts logging.
func setup(cmd *cobra.Command) error {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if apiURL != "" {
		c.API.BaseURL = apiURL
	}
	if cmd.Flags().Changed("timeout") {
		c.API.Timeout = timeout.String()
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	// The TUI owns the terminal; it only logs to files.
	if err := logging.Initialize(cfg.Logging, !usesTUI(cmd)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logging.Get(logging.CategoryBoot)
	logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("api", cfg.API.BaseURL),
		zap.String("command", cmd.CommandPath()))
	return nil
}

// usesTUI reports whether cmd will draw the terminal UI with the given flags.
func usesTUI(cmd *cobra.Command) bool {
	flag, ok := cmd.Annotations[annotationTUI]
	if !ok {
		return false
	}
	return flag == "" || !cmd.Flags().Changed(flag)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newClient() (*api.Client, error) {
	return api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.GetAPITimeout(),
		Endpoints: cfg.API.Endpoints,
		Logger:    logging.Get(logging.CategoryAPI),
	})
}

func newStore() (*session.Store, error) {
	path := cfg.Session.File
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, fmt.Errorf("cannot locate session file: %w", err)
		}
	}
	return session.NewStore(path, logging.Get(logging.CategorySession)), nil
}

func newAuthenticator() (*auth.Authenticator, *api.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	store, err := newStore()
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAuthenticator(client, store, cfg.GetAuthRedirect(), logging.Get(logging.CategoryAuth)), client, nil
}

func theme() ui.Theme {
	return ui.ThemeFor(cfg.DarkMode(ui.TerminalIsDark()))
}
