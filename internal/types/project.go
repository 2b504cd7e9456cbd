// Package types provides type definitions for structured data used throughout the architect system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// VentureType is the coarse category of business a project was created for.
type VentureType string

// Venture types, inferred once from the creating prompt.
const (
	VentureGaming       VentureType = "gaming"
	VentureCommerce     VentureType = "commerce"
	VentureDropshipping VentureType = "dropshipping"
	VentureInventory    VentureType = "inventory"
)

// StepCategory classifies a plan step.
type StepCategory string

// Known step categories. Values outside this set are preserved as-is when the
// model returns them, but only these are offered in the plan schema.
const (
	CategorySetup        StepCategory = "setup"
	CategoryDesign       StepCategory = "design"
	CategoryMarketing    StepCategory = "marketing"
	CategoryProducts     StepCategory = "products"
	CategorySettings     StepCategory = "settings"
	CategoryResearch     StepCategory = "research"
	CategorySourcing     StepCategory = "sourcing"
	CategoryBranding     StepCategory = "branding"
	CategoryPayments     StepCategory = "payments"
	CategoryAnalytics    StepCategory = "analytics"
	CategoryAutomation   StepCategory = "automation"
	CategorySEO          StepCategory = "seo"
	CategorySocial       StepCategory = "social"
	CategoryTesting      StepCategory = "testing"
	CategoryLoyalty      StepCategory = "loyalty"
	CategoryInventory    StepCategory = "inventory"
	CategoryIntegrations StepCategory = "integrations"
	CategoryLogistics    StepCategory = "logistics"
	CategoryWholesale    StepCategory = "wholesale"
	CategoryGaming       StepCategory = "gaming"
	CategoryWorkflow     StepCategory = "workflow"
)

// StepCategories lists every known category in declaration order.
func StepCategories() []StepCategory {
	return []StepCategory{
		CategorySetup, CategoryDesign, CategoryMarketing, CategoryProducts, CategorySettings,
		CategoryResearch, CategorySourcing, CategoryBranding, CategoryPayments, CategoryAnalytics,
		CategoryAutomation, CategorySEO, CategorySocial, CategoryTesting, CategoryLoyalty,
		CategoryInventory, CategoryIntegrations, CategoryLogistics, CategoryWholesale,
		CategoryGaming, CategoryWorkflow,
	}
}

// Step is one actionable item within a Project. Only IsCompleted changes after creation.
type Step struct {
	ID            string       `json:"id" validate:"required"`
	Title         string       `json:"title" validate:"required"`
	Description   string       `json:"description"`
	IsCompleted   bool         `json:"isCompleted"`
	EstimatedTime string       `json:"estimatedTime,omitempty"`
	Category      StepCategory `json:"category"`
	DeepLink      string       `json:"deepLink,omitempty"`
	ExternalLink  string       `json:"externalLink,omitempty"`
}

// Project is a user's business venture plan.
type Project struct {
	ID               string      `json:"id" validate:"required"`
	Name             string      `json:"name" validate:"required"`
	Description      string      `json:"description"`
	VentureType      VentureType `json:"ventureType" validate:"required,oneof=gaming commerce dropshipping inventory"`
	CreatedAt        int64       `json:"createdAt" validate:"gt=0"` // unix millis
	Steps            []Step      `json:"steps" validate:"dive"`
	Progress         int         `json:"progress" validate:"gte=0,lte=100"`
	FeasibilityScore *float64    `json:"feasibilityScore,omitempty"`
	Language         string      `json:"language,omitempty"`
	ShopifyURL       string      `json:"shopifyUrl,omitempty"`

	Payments      *PaymentConfig       `json:"payments,omitempty"`
	Marketing     *MarketingConfig     `json:"marketing,omitempty"`
	ShippingZones []ShippingZone       `json:"shippingZones,omitempty" validate:"omitempty,dive"`
	Integrations  *IntegrationSettings `json:"integrations,omitempty"`
	Wholesale     []WholesaleConfig    `json:"wholesale,omitempty" validate:"omitempty,dive"`
	Pricing       *PricingConfig       `json:"pricing,omitempty"`
	Automations   []AutomationFlow     `json:"automations,omitempty" validate:"omitempty,dive"`
	GamingConfig  *GamingMerchConfig   `json:"gamingConfig,omitempty"`
	GithubConfig  *GithubConfig        `json:"githubConfig,omitempty"`
	Privacy       *PrivacySettings     `json:"privacy,omitempty"`
}

// Created returns the creation timestamp as a time.Time.
func (p *Project) Created() time.Time {
	return time.UnixMilli(p.CreatedAt)
}

// CompletedSteps counts steps marked complete.
func (p *Project) CompletedSteps() int {
	n := 0
	for _, s := range p.Steps {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

// StepIndex returns the position of the step with the given id, or -1.
func (p *Project) StepIndex(stepID string) int {
	for i := range p.Steps {
		if p.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// StepsInCategory returns the steps matching category (case-insensitive).
// An empty category returns every step.
func (p *Project) StepsInCategory(category string) []Step {
	if category == "" {
		return p.Steps
	}
	var out []Step
	for _, s := range p.Steps {
		if strings.EqualFold(string(s.Category), category) {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate without touching the store's record.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Steps = append([]Step(nil), p.Steps...)
	if p.FeasibilityScore != nil {
		v := *p.FeasibilityScore
		c.FeasibilityScore = &v
	}
	if p.Payments != nil {
		c.Payments = p.Payments.clone()
	}
	if p.Marketing != nil {
		m := *p.Marketing
		c.Marketing = &m
	}
	if p.ShippingZones != nil {
		c.ShippingZones = make([]ShippingZone, len(p.ShippingZones))
		for i, z := range p.ShippingZones {
			z.Countries = append([]string(nil), z.Countries...)
			z.Rates = append([]ShippingRate(nil), z.Rates...)
			c.ShippingZones[i] = z
		}
	}
	if p.Integrations != nil {
		in := *p.Integrations
		c.Integrations = &in
	}
	if p.Wholesale != nil {
		c.Wholesale = append([]WholesaleConfig(nil), p.Wholesale...)
	}
	if p.Pricing != nil {
		pr := *p.Pricing
		c.Pricing = &pr
	}
	if p.Automations != nil {
		c.Automations = append([]AutomationFlow(nil), p.Automations...)
	}
	if p.GamingConfig != nil {
		g := *p.GamingConfig
		g.DiscordWebhooks = append([]string(nil), p.GamingConfig.DiscordWebhooks...)
		c.GamingConfig = &g
	}
	if p.GithubConfig != nil {
		gh := *p.GithubConfig
		c.GithubConfig = &gh
	}
	if p.Privacy != nil {
		pv := *p.Privacy
		c.Privacy = &pv
	}
	return &c
}
