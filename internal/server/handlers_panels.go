package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/architect/internal/integrations"
	"github.com/jonathan/architect/internal/panels"
	"github.com/jonathan/architect/internal/types"
	"github.com/jonathan/architect/internal/wizard"
)

// PaymentsResponse is the payments panel: its configuration and the derived webhook endpoint.
type PaymentsResponse struct {
	Config     *types.PaymentConfig `json:"config"`
	WebhookURL string               `json:"webhookUrl"`
}

// PaymentSettingsRequest updates the payment flags, keys and checkout options.
// Currencies and tax have their own endpoints.
type PaymentSettingsRequest struct {
	StripeActive        bool                 `json:"stripeActive"`
	PaypalActive        bool                 `json:"paypalActive"`
	TestMode            bool                 `json:"testMode"`
	PublishableKey      string               `json:"publishableKey"`
	SecretKey           string               `json:"secretKey"`
	WebhookSecret       string               `json:"webhookSecret"`
	FraudProtection     bool                 `json:"fraudProtection"`
	FraudRules          types.FraudRules     `json:"fraudRules"`
	PaymentMethods      types.PaymentMethods `json:"paymentMethods"`
	SubscriptionEnabled bool                 `json:"subscriptionEnabled"`
}

// CurrenciesRequest is the body of PUT /projects/{id}/payments/currencies.
type CurrenciesRequest struct {
	Currencies []string `json:"currencies" validate:"required,min=1"`
}

// TaxProviderRequest is the body of PUT /projects/{id}/payments/tax-provider.
type TaxProviderRequest struct {
	Provider types.TaxProvider `json:"provider" validate:"required"`
}

// TaxRateRequest is the body of POST /projects/{id}/payments/tax-rates.
type TaxRateRequest struct {
	Region string  `json:"region" validate:"required"`
	Rate   float64 `json:"rate" validate:"gte=0"`
}

// ZoneRequest is the body of POST /projects/{id}/shipping/zones.
type ZoneRequest struct {
	Name      string  `json:"name"`
	Countries string  `json:"countries"` // comma separated
	FlatRate  float64 `json:"flatRate" validate:"gte=0"`
}

// RateRequest is the body of POST /projects/{id}/shipping/zones/{zone_id}/rates.
type RateRequest struct {
	Name  string         `json:"name"`
	Price float64        `json:"price" validate:"gte=0"`
	Type  types.RateType `json:"type" validate:"omitempty,oneof=flat free weight price"`
}

func (s *Server) handleWizardState(w http.ResponseWriter, r *http.Request) {
	wz, err := s.wizard(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, wz.State())
}

// handleWizardAction moves a wizard: advance, back, or open (restart at step 1).
func (s *Server) handleWizardAction(w http.ResponseWriter, r *http.Request) {
	wz, err := s.wizard(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	var state wizard.State
	switch r.PathValue("action") {
	case "advance":
		state, err = wz.Advance(r.Context())
	case "back":
		state = wz.Back()
	case "open":
		state = wz.Open()
	default:
		s.errorResponse(w, http.StatusNotFound, "unknown wizard action: "+r.PathValue("action"))
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) wizard(r *http.Request) (*wizard.Wizard, error) {
	id := r.PathValue("id")
	if _, err := s.deps.Store.Get(id); err != nil {
		return nil, err
	}
	return s.deps.Wizards.Get(id, wizard.Kind(r.PathValue("kind")))
}

// handleTestIntegration checks and stores an integration's settings.
func (s *Server) handleTestIntegration(w http.ResponseWriter, r *http.Request) {
	kind, err := integrations.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.fail(w, err)
		return
	}
	var cfg types.IntegrationConfig
	if err := s.decodeJSON(r, &cfg); err != nil {
		s.fail(w, err)
		return
	}
	tested, err := s.deps.Panels.TestIntegration(r.Context(), r.PathValue("id"), kind, cfg)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, tested)
}

func (s *Server) handleGetPayments(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	cfg, err := s.deps.Panels.Payments(p.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, PaymentsResponse{Config: cfg, WebhookURL: panels.WebhookURL(p)})
}

func (s *Server) handlePutPayments(w http.ResponseWriter, r *http.Request) {
	var req PaymentSettingsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	cfg, err := s.deps.Panels.UpdatePayments(r.Context(), r.PathValue("id"), func(c *types.PaymentConfig) error {
		c.StripeActive = req.StripeActive
		c.PaypalActive = req.PaypalActive
		c.TestMode = req.TestMode
		c.PublishableKey = req.PublishableKey
		c.SecretKey = req.SecretKey
		c.WebhookSecret = req.WebhookSecret
		c.FraudProtection = req.FraudProtection
		c.FraudRules = req.FraudRules
		c.PaymentMethods = req.PaymentMethods
		c.SubscriptionEnabled = req.SubscriptionEnabled
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleSetCurrencies(w http.ResponseWriter, r *http.Request) {
	var req CurrenciesRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	cfg, err := s.deps.Panels.SetCurrencies(r.Context(), r.PathValue("id"), req.Currencies)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleSetTaxProvider(w http.ResponseWriter, r *http.Request) {
	var req TaxProviderRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	cfg, err := s.deps.Panels.SetTaxProvider(r.Context(), r.PathValue("id"), req.Provider)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleAddTaxRate(w http.ResponseWriter, r *http.Request) {
	var req TaxRateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	cfg, err := s.deps.Panels.AddTaxRate(r.Context(), r.PathValue("id"), req.Region, req.Rate)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, cfg)
}

func (s *Server) handleRemoveTaxRate(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.fail(w, &ErrValidation{Field: "index", Message: "must be an integer"})
		return
	}
	cfg, err := s.deps.Panels.RemoveTaxRate(r.Context(), r.PathValue("id"), index)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleGetMarketing(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.deps.Panels.Marketing(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleToggleMarketing(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.deps.Panels.ToggleMarketing(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleAddZone(w http.ResponseWriter, r *http.Request) {
	var req ZoneRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	zone, err := s.deps.Panels.AddZone(r.Context(), r.PathValue("id"), req.Name, req.Countries, req.FlatRate)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, zone)
}

func (s *Server) handleRemoveZone(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Panels.RemoveZone(r.Context(), r.PathValue("id"), r.PathValue("zone_id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	rate, err := s.deps.Panels.AddRate(r.Context(), r.PathValue("id"), r.PathValue("zone_id"), req.Name, req.Price, req.Type)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, rate)
}

func (s *Server) handleRemoveRate(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Panels.RemoveRate(r.Context(), r.PathValue("id"), r.PathValue("zone_id"), r.PathValue("rate_id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerifyZone(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Panels.VerifyZone(r.Context(), r.PathValue("id"), r.PathValue("zone_id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleGetPricing(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.deps.Panels.Pricing(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handlePutPricing(w http.ResponseWriter, r *http.Request) {
	var req types.PricingConfig
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	cfg, err := s.deps.Panels.UpdatePricing(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleToggleWholesale(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Panels.ToggleWholesale(r.Context(), r.PathValue("id"), types.WholesaleProvider(r.PathValue("provider")))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleListAutomations(w http.ResponseWriter, r *http.Request) {
	flows, err := s.deps.Panels.Automations(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, flows)
}

func (s *Server) handleToggleAutomation(w http.ResponseWriter, r *http.Request) {
	flow, err := s.deps.Panels.ToggleAutomation(r.Context(), r.PathValue("id"), r.PathValue("flow_id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, flow)
}

// handleRunAutomation fires an automation; the optional body is merged into the webhook payload.
func (s *Server) handleRunAutomation(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if r.ContentLength != 0 {
		if err := s.readJSON(r, &data); err != nil {
			s.fail(w, err)
			return
		}
	}
	if err := s.deps.Panels.RunAutomation(r.Context(), r.PathValue("id"), r.PathValue("flow_id"), data); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSuggestBundle(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Panels.SuggestBundle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, b)
}

func (s *Server) handleMarketInsights(w http.ResponseWriter, r *http.Request) {
	info, err := s.deps.Panels.MarketInsights(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, info)
}

func (s *Server) handleStorefrontAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Panels.AuditStorefront(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}
