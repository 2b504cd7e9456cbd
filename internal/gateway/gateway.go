// Package gateway exposes the typed AI operations the rest of the application uses.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/llm"
	"github.com/jonathan/architect/internal/metrics"
	"github.com/jonathan/architect/internal/prompts"
	"github.com/jonathan/architect/internal/schemas"
	"github.com/jonathan/architect/internal/types"
)

// Operation names used in errors, logs and metrics.
const (
	OpGeneratePlan    = "generate_plan"
	OpStepAdvice      = "step_advice"
	OpPricing         = "pricing_recommendation"
	OpLogistics       = "logistics_advice"
	OpGroundedInfo    = "grounded_info"
	OpMarketInsights  = "market_insights"
	OpZoneFeasibility = "zone_feasibility"
	OpSuggestBundle   = "suggest_bundle"
	OpChat            = "chat"
	OpSpeech          = "speech"
)

// Gateway is stateless apart from the speech player. Every operation is one round trip with no retry.
type Gateway struct {
	client  llm.Client
	metrics *metrics.Metrics
	logger  zerolog.Logger
	player  Player
	speaker *Speaker
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithMetrics records call counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithLogger sets the gateway logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithPlayer sets the audio output used by Speak.
func WithPlayer(p Player) Option {
	return func(g *Gateway) { g.player = p }
}

// New creates a Gateway over client.
func New(client llm.Client, opts ...Option) *Gateway {
	g := &Gateway{
		client: client,
		logger: log.Logger,
		player: DiscardPlayer{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "gateway").Logger()
	g.speaker = NewSpeaker(g.SynthesizeSpeech, g.player, g.logger)
	return g
}

// Close stops playback and releases the underlying client.
func (g *Gateway) Close() error {
	g.speaker.Stop()
	return g.client.Close()
}

// GeneratePlan turns a business goal into a plan. A plan without steps is a failure.
func (g *Gateway) GeneratePlan(ctx context.Context, goal, language string) (*types.GeneratedPlan, error) {
	prompt, err := prompts.Render(prompts.PlanUser, map[string]string{
		"Language": languageOrDefault(language),
		"Goal":     goal,
	})
	if err != nil {
		return nil, classify(OpGeneratePlan, err)
	}
	system, err := prompts.Get(prompts.File, prompts.PlanSystem)
	if err != nil {
		return nil, classify(OpGeneratePlan, err)
	}

	plan, err := generate[types.GeneratedPlan](ctx, g, OpGeneratePlan, schemas.Plan, llm.JSONRequest{
		Prompt: prompt,
		System: system,
		Tier:   llm.TierStandard,
	}, func(p *types.GeneratedPlan) error {
		if len(p.Steps) == 0 {
			return errNoSteps
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetStepAdvice explains how to carry out one step. Callers cache the result per step id.
func (g *Gateway) GetStepAdvice(ctx context.Context, stepTitle, projectContext, language string) (*types.StepAdvice, error) {
	prompt, err := prompts.Render(prompts.StepAdvice, map[string]string{
		"Language":  languageOrDefault(language),
		"StepTitle": stepTitle,
		"Context":   projectContext,
	})
	if err != nil {
		return nil, classify(OpStepAdvice, err)
	}
	return generate[types.StepAdvice](ctx, g, OpStepAdvice, schemas.StepAdvice, llm.JSONRequest{
		Prompt: prompt,
		Tier:   llm.TierStandard,
	}, nil)
}

// GetPricingRecommendation suggests a price for a product given its cost of goods.
func (g *Gateway) GetPricingRecommendation(ctx context.Context, productName string, cogs float64, category string) (*types.PricingRecommendation, error) {
	prompt, err := prompts.Render(prompts.Pricing, map[string]string{
		"ProductName": productName,
		"Category":    category,
		"COGS":        strconv.FormatFloat(cogs, 'f', 2, 64),
	})
	if err != nil {
		return nil, classify(OpPricing, err)
	}
	return generate[types.PricingRecommendation](ctx, g, OpPricing, schemas.Pricing, llm.JSONRequest{
		Prompt: prompt,
		Tier:   llm.TierStandard,
	}, nil)
}

// GetLogisticsAdvice picks a carrier for a shipment.
func (g *Gateway) GetLogisticsAdvice(ctx context.Context, destination string, weightOz float64, international bool) (*types.LogisticsAdvice, error) {
	prompt, err := prompts.Render(prompts.Logistics, map[string]string{
		"Destination":   destination,
		"WeightOz":      strconv.FormatFloat(weightOz, 'f', -1, 64),
		"International": strconv.FormatBool(international),
	})
	if err != nil {
		return nil, classify(OpLogistics, err)
	}
	return generate[types.LogisticsAdvice](ctx, g, OpLogistics, schemas.Logistics, llm.JSONRequest{
		Prompt: prompt,
		Tier:   llm.TierStandard,
	}, nil)
}

// SuggestBundle proposes a co-purchase bundle for a project.
func (g *Gateway) SuggestBundle(ctx context.Context, p *types.Project) (*types.BundleSuggestion, error) {
	prompt, err := prompts.Render(prompts.Bundle, map[string]string{
		"ProjectName":        p.Name,
		"ProjectDescription": p.Description,
	})
	if err != nil {
		return nil, classify(OpSuggestBundle, err)
	}
	return generate[types.BundleSuggestion](ctx, g, OpSuggestBundle, schemas.Bundle, llm.JSONRequest{
		Prompt: prompt,
		Tier:   llm.TierStandard,
	}, nil)
}

// GetGroundedInfo answers query from live search or maps data and returns the cited sources.
// Including GroundMaps switches to the maps-capable model with both tools enabled.
func (g *Gateway) GetGroundedInfo(ctx context.Context, query string, sources []types.GroundingSource) (*types.GroundedInfo, error) {
	return g.grounded(ctx, OpGroundedInfo, query, sources)
}

// MarketInsights researches the market for a project using web search.
func (g *Gateway) MarketInsights(ctx context.Context, p *types.Project) (*types.GroundedInfo, error) {
	prompt, err := prompts.Render(prompts.MarketInsights, map[string]string{
		"ProjectName":        p.Name,
		"ProjectDescription": p.Description,
	})
	if err != nil {
		return nil, classify(OpMarketInsights, err)
	}
	return g.grounded(ctx, OpMarketInsights, prompt, []types.GroundingSource{types.GroundWeb})
}

// ZoneFeasibility checks shipping coverage for a zone using maps grounding.
func (g *Gateway) ZoneFeasibility(ctx context.Context, zone types.ShippingZone) (*types.GroundedInfo, error) {
	prompt, err := prompts.Render(prompts.ZoneFeasibility, map[string]string{
		"ZoneName":  zone.Name,
		"Countries": strings.Join(zone.Countries, ", "),
	})
	if err != nil {
		return nil, classify(OpZoneFeasibility, err)
	}
	return g.grounded(ctx, OpZoneFeasibility, prompt, []types.GroundingSource{types.GroundMaps})
}

func (g *Gateway) grounded(ctx context.Context, op, prompt string, sources []types.GroundingSource) (info *types.GroundedInfo, err error) {
	start := time.Now()
	defer func() { g.record(op, start, err) }()

	tools := []llm.GroundingTool{llm.GoogleSearch}
	tier := llm.TierStandard
	for _, s := range sources {
		if s == types.GroundMaps {
			tools = []llm.GroundingTool{llm.GoogleMaps, llm.GoogleSearch}
			tier = llm.TierLite
			break
		}
	}

	resp, err := g.client.GenerateGrounded(ctx, prompt, tools, tier)
	if err != nil {
		return nil, classify(op, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, classify(op, llm.ErrEmptyResponse)
	}

	info = &types.GroundedInfo{Text: resp.Text, Sources: make([]types.Citation, 0, len(resp.Sources))}
	for _, s := range resp.Sources {
		info.Sources = append(info.Sources, types.Citation{
			Kind:  types.SourceKind(s.Kind),
			Title: s.Title,
			URI:   s.URI,
		})
	}
	return info, nil
}

// SynthesizeSpeech converts text to audio without playing it.
func (g *Gateway) SynthesizeSpeech(ctx context.Context, text string) (audio *llm.Audio, err error) {
	start := time.Now()
	defer func() { g.record(OpSpeech, start, err) }()

	prompt, err := prompts.Render(prompts.Speech, map[string]string{"Text": text})
	if err != nil {
		return nil, classify(OpSpeech, err)
	}
	audio, err = g.client.GenerateSpeech(ctx, prompt)
	if err != nil {
		return nil, classify(OpSpeech, err)
	}
	if audio == nil || len(audio.PCM) == 0 {
		return nil, classify(OpSpeech, llm.ErrEmptyResponse)
	}
	return audio, nil
}

// Speak synthesizes text and plays it, stopping any playback already running.
func (g *Gateway) Speak(ctx context.Context, text string) error {
	return g.speaker.Speak(ctx, text)
}

// StopSpeech stops the active playback, if any.
func (g *Gateway) StopSpeech() {
	g.speaker.Stop()
}

// Speaker exposes the playback controller.
func (g *Gateway) Speaker() *Speaker {
	return g.speaker
}

// generate runs one structured call: request, schema check, decode, post-check.
func generate[T any](ctx context.Context, g *Gateway, op, schema string, req llm.JSONRequest, check func(*T) error) (out *T, err error) {
	start := time.Now()
	defer func() { g.record(op, start, err) }()

	req.Schema = schemas.MustGet(schema)
	raw, err := g.client.GenerateJSON(ctx, req)
	if err != nil {
		return nil, classify(op, err)
	}
	if !json.Valid([]byte(raw)) {
		return nil, classify(op, &schemas.ValidationError{
			Schema: schema,
			Errors: []schemas.FieldError{{Field: "(root)", Message: "response is not valid JSON"}},
		})
	}
	if err := schemas.Validate(schema, raw); err != nil {
		return nil, classify(op, err)
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, classify(op, fmt.Errorf("decode %s: %w", schema, err))
	}
	if check != nil {
		if err := check(&v); err != nil {
			return nil, classify(op, err)
		}
	}
	return &v, nil
}

func (g *Gateway) record(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if ge, ok := err.(*GenerationError); ok {
			status = string(ge.Kind)
		}
		g.logger.Warn().Err(err).Str("op", op).Dur("duration", time.Since(start)).Msg("gateway call failed")
	} else {
		g.logger.Debug().Str("op", op).Dur("duration", time.Since(start)).Msg("gateway call complete")
	}
	g.metrics.RecordGatewayCall(op, status, time.Since(start))
}

func languageOrDefault(language string) string {
	if strings.TrimSpace(language) == "" {
		return types.DefaultLanguage
	}
	return language
}
