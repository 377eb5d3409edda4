package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func productsCmd() *cobra.Command {
	var (
		provider string
		tenant   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List a provider's product catalog",
		Example: `  storectl products --provider etsy --tenant acme
  storectl products --provider cj --limit 100`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			products, err := c.ListProducts(context.Background(), provider, tenant, limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(products)
			}
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			return printProductsTable(products)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "provider to query (shopify, etsy, cj)")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant whose store to query")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of products to return")
	cobra.CheckErr(cmd.MarkFlagRequired("provider"))

	return cmd
}
