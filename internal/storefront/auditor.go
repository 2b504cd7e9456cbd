package storefront

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Auditor fetches and checks storefronts.
type Auditor struct {
	http     *http.Client
	renderer Renderer
	logger   zerolog.Logger
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithHTTPClient sets the client used to fetch pages.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Auditor) { a.http = c }
}

// WithRenderer enables browser rendering for pages whose fetched HTML carries little text.
func WithRenderer(r Renderer) Option {
	return func(a *Auditor) { a.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Auditor) { a.logger = logger }
}

// NewAuditor creates an Auditor. Without WithRenderer pages are only fetched over HTTP.
func NewAuditor(opts ...Option) *Auditor {
	a := &Auditor{
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With().Str("component", "storefront").Logger()
	return a
}

// Audit checks the storefront at shopURL.
func (a *Auditor) Audit(ctx context.Context, shopURL string) (*Report, error) {
	pageURL, err := NormalizeURL(shopURL)
	if err != nil {
		return nil, err
	}

	page, err := Fetch(ctx, a.http, pageURL)
	if err != nil {
		a.logger.Warn().Err(err).Str("url", pageURL).Msg("storefront fetch failed")
		return nil, err
	}

	report, err := Analyze(page.URL, page.HTML)
	if err != nil {
		return nil, err
	}
	if a.renderer == nil || !NeedsRendering(report.text) {
		a.logReport(report)
		return report, nil
	}

	a.logger.Debug().Str("url", page.URL).Int("text_len", len(report.text)).Msg("rendering storefront in browser")
	html, err := a.renderer.Render(ctx, page.URL)
	if err != nil {
		a.logger.Warn().Err(err).Str("url", page.URL).Msg("browser rendering failed, using fetched HTML")
		a.logReport(report)
		return report, nil
	}
	rendered, err := Analyze(page.URL, html)
	if err != nil {
		return nil, err
	}
	rendered.Rendered = true
	a.logReport(rendered)
	return rendered, nil
}

func (a *Auditor) logReport(r *Report) {
	a.logger.Info().
		Str("url", r.URL).
		Int("score", r.Score).
		Int("products", r.ProductLinks).
		Bool("rendered", r.Rendered).
		Msg("storefront audited")
}
