package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Session().Initialize(cmd.Context())
			client.Session().Logout(cmd.Context())
			fmt.Println("Logged out.")
			return nil
		},
	}
}
