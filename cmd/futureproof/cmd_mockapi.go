package main

import (
	"fmt"

	"futureproof/internal/logging"
	"futureproof/internal/mockapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mockAddr string
	mockDB   string
)

// mockAPICmd serves a local backend for development
var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Run a local FutureProof API for development",
	Long: `Serve the signup, login, profile and onboarding endpoints locally.

Accounts live only as long as the process unless --db names a SQLite file
to keep them in. Point the client at it with --api-url http://localhost:5000
(or FUTUREPROOF_API_URL).`,
	RunE: runMockAPI,
}

func init() {
	mockAPICmd.Flags().StringVar(&mockAddr, "addr", "", "Listen address (default from config, :5000)")
	mockAPICmd.Flags().StringVar(&mockDB, "db", "", "SQLite file to keep accounts in (default: memory)")
}

func runMockAPI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	addr := mockAddr
	if addr == "" {
		addr = cfg.MockAPI.Addr
	}
	log := logging.Get(logging.CategoryMockAPI)
	if cfg.MockAPI.JWTSecret == "" {
		log.Warn("no JWT secret configured; tokens will not survive a restart")
	}

	opts := mockapi.Options{
		JWTSecret: cfg.MockAPI.JWTSecret,
		TokenTTL:  cfg.GetTokenTTL(),
		Endpoints: cfg.API.Endpoints,
		Logger:    log,
	}
	dbPath := mockDB
	if dbPath == "" {
		dbPath = cfg.MockAPI.DB
	}
	if dbPath != "" {
		store, err := mockapi.NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("mock api: %w", err)
		}
		opts.Store = store
		log.Info("accounts stored in sqlite", zap.String("path", dbPath))
	}

	srv := mockapi.New(opts)
	defer srv.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Mock API listening on %s (ctrl+c to stop)\n", addr)
	logger.Info("mock api starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("mock api: %w", err)
	}
	return nil
}
