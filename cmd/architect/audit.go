package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/observability"
	"github.com/jonathan/architect/internal/types"
)

var auditURL string

var auditCmd = &cobra.Command{
	Use:   "audit <project>",
	Short: "Check a project's live storefront for launch readiness",
	Long: "Fetch the project's Shopify storefront and check its title, description, mobile viewport, " +
		"share image, product links and cart. Use --url to record the store address first.",
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditURL, "url", "", "Storefront URL to save on the project before auditing")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := resolveProject(a.store.Projects(), args[0], a.cfg.MatchThreshold)
	if err != nil {
		return err
	}
	if auditURL != "" {
		if _, err := a.store.Modify(ctx, p.ID, func(p *types.Project) error {
			p.ShopifyURL = auditURL
			return nil
		}); err != nil {
			return err
		}
	}

	report, err := a.panels.AuditStorefront(ctx, p.ID)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintStorefront(report)
	return nil
}
