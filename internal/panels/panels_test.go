package panels

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/integrations"
	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/project"
	"github.com/jonathan/architect/internal/storage"
	"github.com/jonathan/architect/internal/types"
	"github.com/jonathan/architect/internal/wizard"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fakeAdvisor struct {
	adviceCalls atomic.Int32
	err         error
	language    string
}

func (f *fakeAdvisor) GetStepAdvice(_ context.Context, title, _, language string) (*types.StepAdvice, error) {
	f.adviceCalls.Add(1)
	f.language = language
	if f.err != nil {
		return nil, f.err
	}
	return &types.StepAdvice{DetailedInstructions: "Do " + title, WhyItMatters: "w", CommonPitfalls: []string{}}, nil
}

func (f *fakeAdvisor) GetPricingRecommendation(context.Context, string, float64, string) (*types.PricingRecommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.PricingRecommendation{SuggestedPrice: 20}, nil
}

func (f *fakeAdvisor) GetLogisticsAdvice(context.Context, string, float64, bool) (*types.LogisticsAdvice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.LogisticsAdvice{OptimalCarrier: types.CarrierUPS}, nil
}

func (f *fakeAdvisor) SuggestBundle(_ context.Context, p *types.Project) (*types.BundleSuggestion, error) {
	return &types.BundleSuggestion{Title: p.Name + " Bundle"}, f.err
}

func (f *fakeAdvisor) MarketInsights(context.Context, *types.Project) (*types.GroundedInfo, error) {
	return &types.GroundedInfo{Text: "insights"}, f.err
}

func (f *fakeAdvisor) ZoneFeasibility(_ context.Context, z types.ShippingZone) (*types.GroundedInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.GroundedInfo{Text: "coverage for " + z.Name}, nil
}

type fixture struct {
	svc     *Service
	store   *project.Store
	ai      *fakeAdvisor
	notes   *notify.Center
	project types.Project
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := project.NewStore(ctx, storage.New(storage.NewMemoryBackend()), project.WithClock(clock))
	p := store.Create(ctx, &types.GeneratedPlan{
		ProjectName:        "Aether Moor Shop",
		ProjectDescription: "Maps",
		Steps: []types.PlanStep{
			{Title: "Design logo", Category: "design"},
			{Title: "Set up payments", Category: "payments"},
		},
	}, "open a store")

	ai := &fakeAdvisor{}
	notes := notify.NewCenter(notify.WithClock(clock))
	opts = append([]Option{WithClock(clock), WithNotifications(notes)}, opts...)
	return &fixture{svc: New(store, ai, opts...), store: store, ai: ai, notes: notes, project: p}
}

func (f *fixture) lastNote(t *testing.T) notify.Notification {
	t.Helper()
	list := f.notes.List()
	require.NotEmpty(t, list)
	return list[len(list)-1]
}

func TestPayments_DefaultsAndUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.svc.Payments(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPaymentConfig(), cfg)

	cfg, err = f.svc.SetCurrencies(ctx, f.project.ID, []string{"usd", "EUR", "USD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"USD", "EUR"}, cfg.SupportedCurrencies)

	_, err = f.svc.SetCurrencies(ctx, f.project.ID, []string{"XYZ"})
	var inputErr *InputError
	assert.True(t, errors.As(err, &inputErr))
	_, err = f.svc.SetCurrencies(ctx, f.project.ID, nil)
	assert.Error(t, err)

	cfg, err = f.svc.SetTaxProvider(ctx, f.project.ID, types.TaxAvalara)
	require.NoError(t, err)
	assert.Equal(t, types.TaxAvalara, cfg.TaxProvider)
	_, err = f.svc.SetTaxProvider(ctx, f.project.ID, "irs")
	assert.Error(t, err)

	cfg, err = f.svc.AddTaxRate(ctx, f.project.ID, "California", 7.25)
	require.NoError(t, err)
	require.Len(t, cfg.TaxRates, 2)
	cfg, err = f.svc.RemoveTaxRate(ctx, f.project.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []types.TaxRate{{Region: "California", Rate: 7.25}}, cfg.TaxRates)
	_, err = f.svc.RemoveTaxRate(ctx, f.project.ID, 5)
	assert.Error(t, err)

	stored, err := f.store.Get(f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"USD", "EUR"}, stored.Payments.SupportedCurrencies)
}

func TestWebhookURL(t *testing.T) {
	tests := []struct {
		shop string
		want string
	}{
		{"", "https://your-store.myshopify.com/api/webhooks/stripe"},
		{"aether.myshopify.com", "https://aether.myshopify.com/api/webhooks/stripe"},
		{"https://aether.myshopify.com/admin", "https://aether.myshopify.com/api/webhooks/stripe"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WebhookURL(&types.Project{ShopifyURL: tt.shop}))
	}
}

func TestWizardHooks(t *testing.T) {
	f := newFixture(t)
	m := wizard.NewManager(f.svc.WizardHooks(), wizard.WithClock(clock))
	w, err := m.Get(f.project.ID, wizard.KindPayment)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := w.Advance(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, w.State().Step)
	stored, err := f.store.Get(f.project.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.Payments)
	assert.Equal(t, "Payment configuration saved", f.lastNote(t).Message)
}

func TestToggleMarketing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.svc.ToggleMarketing(ctx, f.project.ID, ChannelKlaviyo)
	require.NoError(t, err)
	assert.True(t, cfg.KlaviyoActive)
	cfg, err = f.svc.ToggleMarketing(ctx, f.project.ID, FlowWinBack)
	require.NoError(t, err)
	assert.True(t, cfg.AutomationFlows.WinBack)
	cfg, err = f.svc.ToggleMarketing(ctx, f.project.ID, ChannelKlaviyo)
	require.NoError(t, err)
	assert.False(t, cfg.KlaviyoActive)

	_, err = f.svc.ToggleMarketing(ctx, f.project.ID, "fax")
	assert.Error(t, err)
}

func TestShippingZones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddZone(ctx, f.project.ID, "", "DE", 5)
	assert.Error(t, err)
	_, err = f.svc.AddZone(ctx, f.project.ID, "EU", " , ", 5)
	assert.Error(t, err)

	zone, err := f.svc.AddZone(ctx, f.project.ID, "EU", "DE, FR ,IT", 9.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"DE", "FR", "IT"}, zone.Countries)
	require.Len(t, zone.Rates, 1)
	assert.Equal(t, types.RateFlat, zone.Rates[0].Type)

	_, err = f.svc.AddRate(ctx, f.project.ID, zone.ID, "  ", 3, "")
	assert.Error(t, err)
	rate, err := f.svc.AddRate(ctx, f.project.ID, zone.ID, "Express", 20, types.RateWeight)
	require.NoError(t, err)

	stored, err := f.store.Get(f.project.ID)
	require.NoError(t, err)
	require.Len(t, stored.ShippingZones, 1)
	assert.Len(t, stored.ShippingZones[0].Rates, 2)

	require.NoError(t, f.svc.RemoveRate(ctx, f.project.ID, zone.ID, rate.ID))
	assert.Error(t, f.svc.RemoveRate(ctx, f.project.ID, zone.ID, rate.ID))
	require.NoError(t, f.svc.RemoveZone(ctx, f.project.ID, zone.ID))
	assert.Error(t, f.svc.RemoveZone(ctx, f.project.ID, zone.ID))

	stored, err = f.store.Get(f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ShippingZones)
}

func TestVerifyZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zone, err := f.svc.AddZone(ctx, f.project.ID, "EU", "DE", 5)
	require.NoError(t, err)

	report, err := f.svc.VerifyZone(ctx, f.project.ID, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, "coverage for EU", report.Feasibility.Text)
	assert.Equal(t, types.CarrierUPS, report.Carrier.OptimalCarrier)
	assert.Equal(t, notify.TypeSuccess, f.lastNote(t).Type)

	f.ai.err = errors.New("generation failed")
	_, err = f.svc.VerifyZone(ctx, f.project.ID, zone.ID)
	assert.Error(t, err)
	assert.Equal(t, notify.TypeError, f.lastNote(t).Type)
}

func TestPricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.svc.Pricing(f.project.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40, cfg.MarginGoal, 0.001)

	cfg, err = f.svc.UpdatePricing(ctx, f.project.ID, types.PricingConfig{MarginGoal: 55, CompetitorTracking: true})
	require.NoError(t, err)
	assert.True(t, cfg.CompetitorTracking)
	_, err = f.svc.UpdatePricing(ctx, f.project.ID, types.PricingConfig{MarginGoal: 150})
	assert.Error(t, err)

	rec, err := f.svc.RecommendPrice(ctx, "Map", 10, "Art")
	require.NoError(t, err)
	assert.InDelta(t, 20, rec.SuggestedPrice, 0.001)
	_, err = f.svc.RecommendPrice(ctx, "Map", 0, "Art")
	assert.Error(t, err)
	_, err = f.svc.LogisticsAdvice(ctx, "", 10, false)
	assert.Error(t, err)
}

func TestTestIntegration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.svc.TestIntegration(ctx, f.project.ID, integrations.KindNotion, types.IntegrationConfig{APIKey: "secret_1", DatabaseID: "db"})
	require.NoError(t, err)
	assert.True(t, cfg.IsActive)
	assert.Equal(t, now.UnixMilli(), cfg.LastSync)
	assert.Equal(t, notify.TypeSuccess, f.lastNote(t).Type)

	_, err = f.svc.TestIntegration(ctx, f.project.ID, integrations.KindZapier, types.IntegrationConfig{Endpoint: "https://example.com"})
	require.Error(t, err)
	assert.Equal(t, notify.TypeError, f.lastNote(t).Type)

	stored, err := f.store.Get(f.project.ID)
	require.NoError(t, err)
	assert.True(t, stored.Integrations.Notion.IsActive)
	assert.False(t, stored.Integrations.Zapier.IsActive)
	assert.Equal(t, "https://example.com", stored.Integrations.Zapier.Endpoint)
}

func TestToggleWholesale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.svc.ToggleWholesale(ctx, f.project.ID, types.ProviderFaire)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsActive)
	assert.Equal(t, now.UnixMilli(), list[0].LastSync)

	list, err = f.svc.ToggleWholesale(ctx, f.project.ID, types.ProviderFaire)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.ToggleWholesale(ctx, f.project.ID, "ebay")
	assert.Error(t, err)
}

func TestAutomations(t *testing.T) {
	var received integrations.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()

	f := newFixture(t)
	ctx := context.Background()

	flows, err := f.svc.Automations(ctx, f.project.ID)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "Low Stock Trigger", flows[0].Name)
	assert.Equal(t, "VIP Tagging", flows[1].Name)

	again, err := f.svc.Automations(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, flows, again)

	assert.ErrorIs(t, f.svc.RunAutomation(ctx, f.project.ID, flows[0].ID, nil), ErrNoWebhook)

	_, err = f.store.Modify(ctx, f.project.ID, func(p *types.Project) error {
		p.Integrations = &types.IntegrationSettings{Zapier: types.IntegrationConfig{IsActive: true, Endpoint: srv.URL}}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.RunAutomation(ctx, f.project.ID, flows[0].ID, map[string]any{"sku": "MAP-1"}))
	assert.Equal(t, "inventory_below_threshold", received.Event)
	assert.Equal(t, "MAP-1", received.Data["sku"])

	err = f.svc.RunAutomation(ctx, f.project.ID, flows[0].ID, map[string]any{"password": "hunter2"})
	assert.ErrorIs(t, err, integrations.ErrSensitiveData)

	assert.Error(t, f.svc.RunAutomation(ctx, f.project.ID, flows[1].ID, nil))
	toggled, err := f.svc.ToggleAutomation(ctx, f.project.ID, flows[1].ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	_, err = f.svc.ToggleAutomation(ctx, f.project.ID, "missing")
	assert.Error(t, err)
}

func TestStepAdvice_CachedPerStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stepID := f.project.Steps[0].ID

	a, err := f.svc.StepAdvice(ctx, f.project.ID, stepID)
	require.NoError(t, err)
	assert.Equal(t, "Do Design logo", a.DetailedInstructions)
	assert.Equal(t, types.DefaultLanguage, f.ai.language)

	b, err := f.svc.StepAdvice(ctx, f.project.ID, stepID)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.EqualValues(t, 1, f.ai.adviceCalls.Load())

	_, err = f.svc.StepAdvice(ctx, f.project.ID, "missing")
	assert.Error(t, err)
}

func TestStepAdvice_FailureNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stepID := f.project.Steps[1].ID

	f.ai.err = errors.New("generation failed")
	_, err := f.svc.StepAdvice(ctx, f.project.ID, stepID)
	require.Error(t, err)

	f.ai.err = nil
	_, err = f.svc.StepAdvice(ctx, f.project.ID, stepID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.ai.adviceCalls.Load())
}

func TestAdviceCache_WriteOnce(t *testing.T) {
	c := NewAdviceCache()
	first := &types.StepAdvice{WhyItMatters: "first"}
	assert.Same(t, first, c.Put("s1", first))
	assert.Same(t, first, c.Put("s1", &types.StepAdvice{WhyItMatters: "second"}))
	assert.Equal(t, 1, c.Len())
}

func TestBundleAndInsights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.SuggestBundle(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aether Moor Shop Bundle", b.Title)

	info, err := f.svc.MarketInsights(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "insights", info.Text)

	_, err = f.svc.SuggestBundle(ctx, "missing")
	assert.ErrorIs(t, err, project.ErrNotFound)
}
