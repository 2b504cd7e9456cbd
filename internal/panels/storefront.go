package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/architect/internal/storefront"
)

// AuditStorefront checks the project's live store at its Shopify URL.
func (s *Service) AuditStorefront(ctx context.Context, id string) (*storefront.Report, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.ShopifyURL) == "" {
		return nil, &InputError{Field: "shopifyUrl", Reason: "set the store URL before running an audit"}
	}

	report, err := s.storefront.Audit(ctx, p.ShopifyURL)
	if err != nil {
		s.notes.Error("Could not reach " + p.ShopifyURL)
		return nil, err
	}
	if failed := len(report.Failed()); failed > 0 {
		s.notes.Info(fmt.Sprintf("Storefront scored %d%%: %d checks need attention", report.Score, failed))
	} else {
		s.notes.Success("Storefront is launch ready")
	}
	return report, nil
}
