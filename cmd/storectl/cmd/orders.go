package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func ordersCmd() *cobra.Command {
	var (
		provider string
		tenant   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List recent orders from a provider",
		Example: `  storectl orders --provider shopify --tenant acme
  storectl orders --provider cj --limit 20 --output json`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			orders, err := c.ListOrders(context.Background(), provider, tenant, limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(orders)
			}
			if len(orders) == 0 {
				fmt.Println("No orders found.")
				return nil
			}
			return printOrdersTable(orders)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "provider to query (shopify, etsy, cj)")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant whose store to query")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of orders to return")
	cobra.CheckErr(cmd.MarkFlagRequired("provider"))

	return cmd
}
