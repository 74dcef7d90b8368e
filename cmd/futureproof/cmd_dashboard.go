package main

import (
	"github.com/spf13/cobra"
)

// dashboardCmd prints the signed-in user's profile
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"whoami"},
	Short:   "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		authn, _, err := newAuthenticator()
		if err != nil {
			return err
		}
		return showDashboard(ctx, cmd.OutOrStdout(), authn)
	},
}
