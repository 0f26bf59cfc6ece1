package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	storefront "github.com/bunhouse/storefront-go"
)

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order history",
	}
	cmd.AddCommand(newOrdersListCmd())
	return cmd
}

func newOrdersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Session().Initialize(cmd.Context())
			if !client.Session().IsAuthenticated() {
				return fmt.Errorf("not logged in; run 'storefront login' first")
			}

			orders, err := client.Orders().ListOrders(cmd.Context())
			if errors.Is(err, storefront.ErrSessionExpired) {
				return fmt.Errorf("session expired; run 'storefront login' again")
			}
			if err != nil {
				return err
			}

			if len(orders) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}
			for _, order := range orders {
				kind := "retail"
				if order.Wholesale {
					kind = "wholesale"
				}
				fmt.Printf("#%d  %-10s %-9s %8.2f %s  %s\n",
					order.ID, order.Status, kind, order.Total, order.Currency,
					order.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}
