package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/architect/internal/integrations"
	"github.com/jonathan/architect/internal/types"
)

// Pricing returns the pricing configuration, or the default when unset.
func (s *Service) Pricing(id string) (*types.PricingConfig, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Pricing == nil {
		return types.DefaultPricingConfig(), nil
	}
	return p.Pricing, nil
}

// UpdatePricing replaces the pricing configuration. The margin goal must be within 0..100.
func (s *Service) UpdatePricing(ctx context.Context, id string, cfg types.PricingConfig) (*types.PricingConfig, error) {
	if cfg.MarginGoal < 0 || cfg.MarginGoal > 100 {
		return nil, &InputError{Field: "marginGoal", Reason: "must be between 0 and 100"}
	}
	p, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		c := cfg
		p.Pricing = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Pricing, nil
}

// RecommendPrice asks the gateway for a price recommendation.
func (s *Service) RecommendPrice(ctx context.Context, productName string, cogs float64, category string) (*types.PricingRecommendation, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, &InputError{Field: "productName", Reason: "must not be empty"}
	}
	if cogs <= 0 {
		return nil, &InputError{Field: "cogs", Reason: "must be positive"}
	}
	rec, err := s.ai.GetPricingRecommendation(ctx, productName, cogs, category)
	if err != nil {
		s.notes.Error("Pricing analysis failed")
		return nil, err
	}
	return rec, nil
}

// LogisticsAdvice asks the gateway for a carrier recommendation.
func (s *Service) LogisticsAdvice(ctx context.Context, destination string, weightOz float64, international bool) (*types.LogisticsAdvice, error) {
	if strings.TrimSpace(destination) == "" {
		return nil, &InputError{Field: "destination", Reason: "must not be empty"}
	}
	if weightOz <= 0 {
		return nil, &InputError{Field: "weightOz", Reason: "must be positive"}
	}
	advice, err := s.ai.GetLogisticsAdvice(ctx, destination, weightOz, international)
	if err != nil {
		s.notes.Error("Logistics analysis failed")
		return nil, err
	}
	return advice, nil
}

// TestIntegration checks cfg for kind, stores it, and reports the outcome.
// A rejected configuration is still stored, inactive, so the user can fix it.
func (s *Service) TestIntegration(ctx context.Context, id string, kind integrations.Kind, cfg types.IntegrationConfig) (*types.IntegrationConfig, error) {
	tested, testErr := s.integrations.Test(ctx, kind, cfg)
	if testErr != nil {
		tested.IsActive = false
	}
	_, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		if p.Integrations == nil {
			p.Integrations = types.DefaultIntegrationSettings()
		}
		integrations.Set(p.Integrations, kind, tested)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if testErr != nil {
		s.notes.Error(fmt.Sprintf("%s connection failed: %v", kind, testErr))
		return &tested, testErr
	}
	s.notes.Success(fmt.Sprintf("%s connected", kind))
	return &tested, nil
}

// ToggleWholesale connects a sourcing provider, or disconnects it if already connected.
func (s *Service) ToggleWholesale(ctx context.Context, id string, provider types.WholesaleProvider) ([]types.WholesaleConfig, error) {
	switch provider {
	case types.ProviderAlibaba, types.ProviderFaire, types.ProviderModalyst, types.ProviderPrintful, types.ProviderSpocket:
	default:
		return nil, &InputError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", provider)}
	}

	connected := false
	p, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		for i := range p.Wholesale {
			if p.Wholesale[i].Provider == provider {
				p.Wholesale = append(p.Wholesale[:i], p.Wholesale[i+1:]...)
				return nil
			}
		}
		p.Wholesale = append(p.Wholesale, types.WholesaleConfig{
			Provider: provider,
			IsActive: true,
			LastSync: s.clock().UnixMilli(),
		})
		connected = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if connected {
		s.notes.Success(fmt.Sprintf("%s connected", provider))
	} else {
		s.notes.Info(fmt.Sprintf("%s disconnected", provider))
	}
	return p.Wholesale, nil
}

// SuggestBundle proposes a bundle for the project.
func (s *Service) SuggestBundle(ctx context.Context, id string) (*types.BundleSuggestion, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	b, err := s.ai.SuggestBundle(ctx, p)
	if err != nil {
		s.notes.Error("Bundle suggestion failed")
		return nil, err
	}
	return b, nil
}

// MarketInsights researches the project's market with web search.
func (s *Service) MarketInsights(ctx context.Context, id string) (*types.GroundedInfo, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	info, err := s.ai.MarketInsights(ctx, p)
	if err != nil {
		s.notes.Error("Market research failed")
		return nil, err
	}
	return info, nil
}
