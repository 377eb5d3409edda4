package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	apiclient "github.com/storeflow/gateway/internal/api/client"
	domain "github.com/storeflow/gateway/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printSettingsTable(settings []apiclient.Settings) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TENANT\tPROVIDER\tSTORE URL\tVERSION\tSECRET\tENABLED\n")
	for i := range settings {
		s := &settings[i]
		secret := "-"
		if s.HasWebhookSecret {
			secret = "set"
		}
		version := s.APIVersion
		if version == "" {
			version = "-"
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%v\n",
			s.TenantID,
			s.Provider,
			truncate(s.StoreURL, 40),
			version,
			secret,
			s.Enabled,
		)
	}
	return tw.finish()
}

func printSettingsDetail(s *apiclient.Settings) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Tenant:\t%s\n", s.TenantID)
	tw.writef("Provider:\t%s\n", s.Provider)
	tw.writef("Store URL:\t%s\n", s.StoreURL)
	if s.APIVersion != "" {
		tw.writef("API Version:\t%s\n", s.APIVersion)
	}
	tw.writef("Webhook Secret:\t%v\n", s.HasWebhookSecret)
	tw.writef("Enabled:\t%v\n", s.Enabled)
	tw.writef("Created:\t%s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	tw.writef("Updated:\t%s\n", s.UpdatedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printCredentialsTable(creds []apiclient.CredentialStatus) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("PROVIDER\tTENANT\tKIND\tFRESH\tRENEWABLE\tEXPIRES\n")
	for i := range creds {
		c := &creds[i]
		tenant := c.TenantID
		if tenant == "" {
			tenant = "-"
		}
		expires := "never"
		if c.ExpiresAt != nil {
			expires = c.ExpiresAt.Format("2006-01-02 15:04:05")
		}
		tw.writef("%s\t%s\t%s\t%v\t%v\t%s\n",
			c.Provider,
			tenant,
			c.Kind,
			c.Fresh,
			c.RefreshUsable,
			expires,
		)
	}
	return tw.finish()
}

func printOrdersTable(orders []domain.Order) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tPROVIDER\tSTATUS\tTOTAL\tITEMS\tCREATED\tTRACKING\n")
	for i := range orders {
		o := &orders[i]
		tracking := "-"
		if o.TrackingNumber != nil {
			tracking = *o.TrackingNumber
		}
		tw.writef("%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			o.ID,
			o.Provider,
			o.Status,
			o.Total,
			len(o.Items),
			o.CreatedAt.Format("2006-01-02 15:04:05"),
			tracking,
		)
	}
	return tw.finish()
}

func printProductsTable(products []domain.Product) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tPRICE\tSKU\tSTOCK\n")
	for i := range products {
		p := &products[i]
		sku := p.SKU
		if sku == "" {
			sku = "-"
		}
		stock := "-"
		if p.Quantity >= 0 {
			stock = fmt.Sprintf("%d", p.Quantity)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			truncate(p.Title, 40),
			p.Price,
			sku,
			stock,
		)
	}
	return tw.finish()
}

func printSourcingTable(res *apiclient.SourcingResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTITLE\tPRICE\tSTOCK\n")
	for i := range res.Items {
		p := &res.Items[i]
		stock := "-"
		if p.Quantity >= 0 {
			stock = fmt.Sprintf("%d", p.Quantity)
		}
		tw.writef("%s\t%s\t%s\t%s\n",
			p.ID,
			truncate(p.Title, 48),
			p.Price,
			stock,
		)
	}
	if err := tw.finish(); err != nil {
		return err
	}
	fmt.Printf("\nShowing %d of %d results", len(res.Items), res.Total)
	if res.HasMore {
		fmt.Printf(" (more available, use --offset %d)", res.Offset+res.Limit)
	}
	fmt.Println()
	return nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
