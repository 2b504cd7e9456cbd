package panels

import (
	"context"
	"net/url"
	"strings"

	"github.com/jonathan/architect/internal/types"
)

// placeholderShop is used in the webhook URL until the project has a store URL.
const placeholderShop = "your-store.myshopify.com"

// payments returns p's payment config, materializing the default first.
func payments(p *types.Project) *types.PaymentConfig {
	if p.Payments == nil {
		p.Payments = types.DefaultPaymentConfig()
	}
	return p.Payments
}

// Payments returns the project's payment configuration, or the default when unset.
func (s *Service) Payments(id string) (*types.PaymentConfig, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	return payments(p), nil
}

// UpdatePayments applies fn to the payment configuration and persists it.
func (s *Service) UpdatePayments(ctx context.Context, id string, fn func(c *types.PaymentConfig) error) (*types.PaymentConfig, error) {
	p, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		return fn(payments(p))
	})
	if err != nil {
		return nil, err
	}
	return p.Payments, nil
}

// SetCurrencies replaces the supported currencies. Each must be offered and the list non-empty.
func (s *Service) SetCurrencies(ctx context.Context, id string, currencies []string) (*types.PaymentConfig, error) {
	seen := make(map[string]bool)
	var clean []string
	for _, c := range currencies {
		c = strings.ToUpper(strings.TrimSpace(c))
		if !isStripeCurrency(c) {
			return nil, &InputError{Field: "currency", Reason: c + " is not supported"}
		}
		if !seen[c] {
			seen[c] = true
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return nil, &InputError{Field: "currency", Reason: "at least one currency is required"}
	}
	return s.UpdatePayments(ctx, id, func(c *types.PaymentConfig) error {
		c.SupportedCurrencies = clean
		return nil
	})
}

// SetTaxProvider selects who computes sales tax.
func (s *Service) SetTaxProvider(ctx context.Context, id string, provider types.TaxProvider) (*types.PaymentConfig, error) {
	switch provider {
	case types.TaxNative, types.TaxAvalara, types.TaxTaxJar:
	default:
		return nil, &InputError{Field: "taxProvider", Reason: string(provider) + " is not supported"}
	}
	return s.UpdatePayments(ctx, id, func(c *types.PaymentConfig) error {
		c.TaxProvider = provider
		return nil
	})
}

// AddTaxRate appends a regional tax rate.
func (s *Service) AddTaxRate(ctx context.Context, id, region string, rate float64) (*types.PaymentConfig, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, &InputError{Field: "region", Reason: "must not be empty"}
	}
	if rate < 0 {
		return nil, &InputError{Field: "rate", Reason: "must not be negative"}
	}
	return s.UpdatePayments(ctx, id, func(c *types.PaymentConfig) error {
		c.TaxRates = append(c.TaxRates, types.TaxRate{Region: region, Rate: rate})
		return nil
	})
}

// RemoveTaxRate removes the tax rate at index.
func (s *Service) RemoveTaxRate(ctx context.Context, id string, index int) (*types.PaymentConfig, error) {
	return s.UpdatePayments(ctx, id, func(c *types.PaymentConfig) error {
		if index < 0 || index >= len(c.TaxRates) {
			return &InputError{Field: "index", Reason: "out of range"}
		}
		c.TaxRates = append(c.TaxRates[:index], c.TaxRates[index+1:]...)
		return nil
	})
}

// WebhookURL is the Stripe webhook endpoint for the project's store.
func WebhookURL(p *types.Project) string {
	host := placeholderShop
	if raw := strings.TrimSpace(p.ShopifyURL); raw != "" {
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			host = u.Host
		}
	}
	return "https://" + host + "/api/webhooks/stripe"
}

func isStripeCurrency(c string) bool {
	for _, s := range types.StripeCurrencies {
		if s == c {
			return true
		}
	}
	return false
}
