package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/storeflow/gateway/internal/api/client"
)

func settingsCmd() *cobra.Command {
	settingsRoot := &cobra.Command{
		Use:   "settings",
		Short: "Manage tenant provider settings",
		Long: "Manage per-tenant provider settings: store URLs, Admin API\n" +
			"versions, and webhook secrets.",
	}

	settingsRoot.AddCommand(
		settingsListCmd(),
		settingsGetCmd(),
		settingsSetCmd(),
		settingsDeleteCmd(),
	)

	return settingsRoot
}

func settingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <tenant>",
		Short: "List a tenant's provider settings",
		Example: `  storectl settings list acme
  storectl settings list acme --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			settings, err := c.ListSettings(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(settings)
			}
			if len(settings) == 0 {
				fmt.Println("No settings found.")
				return nil
			}
			return printSettingsTable(settings)
		},
	}
}

func settingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <tenant> <provider>",
		Short: "Show one provider's settings",
		Example: `  storectl settings get acme shopify
  storectl settings get acme etsy --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			s, err := c.GetSettings(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(s)
			}
			return printSettingsDetail(s)
		},
	}
}

func settingsSetCmd() *cobra.Command {
	var (
		storeURL      string
		apiVersion    string
		webhookSecret string
		disabled      bool
	)

	cmd := &cobra.Command{
		Use:   "set <tenant> <provider>",
		Short: "Create or replace provider settings",
		Example: `  storectl settings set acme shopify --store-url https://acme.myshopify.com --webhook-secret whsec_abc
  storectl settings set acme etsy --store-url 8123456`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			s, err := c.PutSettings(context.Background(), args[0], args[1], apiclient.SettingsRequest{
				StoreURL:      storeURL,
				APIVersion:    apiVersion,
				WebhookSecret: webhookSecret,
				Enabled:       !disabled,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(s)
			}
			return printSettingsDetail(s)
		},
	}

	cmd.Flags().StringVar(&storeURL, "store-url", "", "store base URL, or the numeric shop ID for Etsy")
	cmd.Flags().StringVar(&apiVersion, "api-version", "", "Admin API version (Shopify only)")
	cmd.Flags().StringVar(&webhookSecret, "webhook-secret", "", "shared secret for webhook verification")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the settings in a disabled state")
	cobra.CheckErr(cmd.MarkFlagRequired("store-url"))

	return cmd
}

func settingsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <tenant> <provider>",
		Short:   "Delete provider settings",
		Example: `  storectl settings delete acme shopify`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeleteSettings(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Settings for %s/%s deleted.\n", args[0], args[1])
			return nil
		},
	}
}
