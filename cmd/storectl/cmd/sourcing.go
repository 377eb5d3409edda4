package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func sourcingCmd() *cobra.Command {
	sourcingRoot := &cobra.Command{
		Use:   "sourcing",
		Short: "Search supplier catalogs for products to source",
	}

	sourcingRoot.AddCommand(sourcingSearchCmd())

	return sourcingRoot
}

func sourcingSearchCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the eBay catalog",
		Example: `  storectl sourcing search ceramic mug
  storectl sourcing search "desk lamp" --limit 25 --offset 25`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			res, err := c.SearchSourcing(context.Background(), strings.Join(args, " "), limit, offset)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			if len(res.Items) == 0 {
				fmt.Println("No results.")
				return nil
			}
			return printSourcingTable(res)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of results to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "result offset for pagination")

	return cmd
}
