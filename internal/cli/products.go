package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bunhouse/storefront-go/shop"
)

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Product catalog",
	}
	cmd.AddCommand(newProductsListCmd())
	return cmd
}

func newProductsListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := client.Catalog().ListProducts(cmd.Context(), shop.ListProductsParams{
				Search: search,
			})
			if err != nil {
				return err
			}

			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			for _, p := range products {
				stock := "in stock"
				if !p.InStock {
					stock = "out of stock"
				}
				fmt.Printf("#%d  %-30s %8.2f %s  (%s)\n", p.ID, p.NameEn, p.Price, p.Currency, stock)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name")
	return cmd
}
