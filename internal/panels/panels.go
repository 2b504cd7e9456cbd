// Package panels implements the per-project feature panels: payments, tax, marketing,
// shipping, pricing, integrations, wholesale, automation, bundling, market insights,
// storefront audit and step advice. Every change goes through the project store and is persisted immediately.
package panels

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/integrations"
	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/storefront"
	"github.com/jonathan/architect/internal/types"
	"github.com/jonathan/architect/internal/wizard"
)

// Projects is the subset of the project store panels need.
type Projects interface {
	Get(id string) (*types.Project, error)
	Modify(ctx context.Context, id string, fn func(p *types.Project) error) (*types.Project, error)
}

// Advisor is the subset of the AI gateway panels need.
type Advisor interface {
	GetStepAdvice(ctx context.Context, stepTitle, projectContext, language string) (*types.StepAdvice, error)
	GetPricingRecommendation(ctx context.Context, productName string, cogs float64, category string) (*types.PricingRecommendation, error)
	GetLogisticsAdvice(ctx context.Context, destination string, weightOz float64, international bool) (*types.LogisticsAdvice, error)
	SuggestBundle(ctx context.Context, p *types.Project) (*types.BundleSuggestion, error)
	MarketInsights(ctx context.Context, p *types.Project) (*types.GroundedInfo, error)
	ZoneFeasibility(ctx context.Context, zone types.ShippingZone) (*types.GroundedInfo, error)
}

// InputError reports a rejected panel input. Nothing is changed when it is returned.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service implements every panel over one project store.
type Service struct {
	projects     Projects
	ai           Advisor
	integrations *integrations.Client
	storefront   *storefront.Auditor
	notes        *notify.Center
	advice       *AdviceCache
	clock        func() time.Time
	logger       zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIntegrations sets the connection tester and webhook client.
func WithIntegrations(c *integrations.Client) Option {
	return func(s *Service) { s.integrations = c }
}

// WithStorefront sets the storefront auditor.
func WithStorefront(a *storefront.Auditor) Option {
	return func(s *Service) { s.storefront = a }
}

// WithNotifications sets where user-visible outcomes are reported.
func WithNotifications(n *notify.Center) Option {
	return func(s *Service) { s.notes = n }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service.
func New(projects Projects, ai Advisor, opts ...Option) *Service {
	s := &Service{
		projects: projects,
		ai:       ai,
		advice:   NewAdviceCache(),
		clock:    time.Now,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.integrations == nil {
		s.integrations = integrations.NewClient(integrations.WithClock(s.clock), integrations.WithLogger(s.logger))
	}
	if s.storefront == nil {
		s.storefront = storefront.NewAuditor(storefront.WithLogger(s.logger))
	}
	if s.notes == nil {
		s.notes = notify.NewCenter(notify.WithClock(s.clock), notify.WithLogger(s.logger))
	}
	s.logger = s.logger.With().Str("component", "panels").Logger()
	return s
}

// Notifications returns the notification center outcomes are reported to.
func (s *Service) Notifications() *notify.Center {
	return s.notes
}

// WizardHooks returns the completion hook factory for wizard.NewManager.
// Completing a wizard materializes its configuration and reports success.
func (s *Service) WizardHooks() wizard.CompleteFactory {
	return func(projectID string, kind wizard.Kind) wizard.CompleteFunc {
		return func(ctx context.Context) error {
			_, err := s.projects.Modify(ctx, projectID, func(p *types.Project) error {
				payments(p)
				return nil
			})
			if err != nil {
				s.notes.Error(fmt.Sprintf("Could not save %s settings", kind))
				return err
			}
			switch kind {
			case wizard.KindPayment:
				s.notes.Success("Payment configuration saved")
			case wizard.KindTax:
				s.notes.Success("Tax configuration saved")
			}
			return nil
		}
	}
}
