// Package cmd implements the storeflow server commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storeflow",
	Short: "Provider gateway for a multi-channel storefront",
	Long: "Storeflow fronts one Shopify storefront with products sourced from\n" +
		"Etsy, CJ Dropshipping, and eBay. It manages provider credentials,\n" +
		"paces and retries outbound API calls, and verifies inbound webhooks.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
