package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Session().Initialize(cmd.Context())

			state := client.Session().Snapshot()
			if !state.IsAuthenticated {
				fmt.Println("Not logged in.")
				return nil
			}

			user := state.User
			fmt.Printf("User:   %s (#%d)\n", user.DisplayName, user.ID)
			fmt.Printf("Roles:  %s\n", strings.Join(user.Roles, ", "))
			fmt.Printf("Region: %s\n", client.Region().Name)
			return nil
		},
	}
}
