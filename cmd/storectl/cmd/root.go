// Package cmd implements the storectl CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/storeflow/gateway/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "storectl",
		Short: "CLI client for the storeflow gateway",
		Long: "storectl is a command-line client for the storeflow gateway API.\n" +
			"It lets you manage tenant provider settings, inspect credential\n" +
			"status, and pull orders, products, and sourcing candidates from\n" +
			"the terminal.",
	}
)

// Root returns the root command, for documentation generators.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.storectl.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(credentialsCmd())
	rootCmd.AddCommand(ordersCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(sourcingCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".storectl")
	}

	viper.SetEnvPrefix("STORECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
