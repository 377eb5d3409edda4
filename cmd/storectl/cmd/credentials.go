package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func credentialsCmd() *cobra.Command {
	credsRoot := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Inspect and revoke provider credentials",
	}

	credsRoot.AddCommand(
		credentialsListCmd(),
		credentialsConnectCmd(),
		credentialsDisconnectCmd(),
	)

	return credsRoot
}

func credentialsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored credentials and their freshness",
		Example: `  storectl credentials list
  storectl credentials list --output json`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			creds, err := c.ListCredentials(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(creds)
			}
			if len(creds) == 0 {
				fmt.Println("No credentials stored.")
				return nil
			}
			return printCredentialsTable(creds)
		},
	}
}

func credentialsConnectCmd() *cobra.Command {
	var (
		tenant string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "connect <provider>",
		Short: "Store a static access token for a provider",
		Long: "Store a static access token for a provider. Only providers that\n" +
			"issue long-lived tokens from their admin console (shopify) accept\n" +
			"this; OAuth providers connect through the browser flow instead.",
		Example: `  storectl credentials connect shopify --tenant acme --token shpat_abc123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			status, err := c.SetCredential(context.Background(), tenant, args[0], token)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(status)
			}
			fmt.Printf("Credential for %s/%s stored.\n", tenant, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant the token belongs to")
	cmd.Flags().StringVar(&token, "token", "", "access token from the provider's admin console")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func credentialsDisconnectCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "disconnect <provider>",
		Short: "Delete a provider's stored credential",
		Long: "Delete a provider's stored credential. Account-level providers\n" +
			"(cj, ebay) have no tenant; omit --tenant for those.",
		Example: `  storectl credentials disconnect etsy --tenant acme
  storectl credentials disconnect cj`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeleteCredential(context.Background(), tenant, args[0]); err != nil {
				return err
			}
			if tenant == "" {
				fmt.Printf("Credential for %s deleted.\n", args[0])
			} else {
				fmt.Printf("Credential for %s/%s deleted.\n", tenant, args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant the credential belongs to")

	return cmd
}
