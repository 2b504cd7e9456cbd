package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/gateway"
	"github.com/jonathan/architect/internal/metrics"
	"github.com/jonathan/architect/internal/navigation"
	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/panels"
	"github.com/jonathan/architect/internal/project"
	"github.com/jonathan/architect/internal/server/middleware"
	"github.com/jonathan/architect/internal/server/ratelimit"
	"github.com/jonathan/architect/internal/wizard"
)

// Deps are the application services the API exposes.
type Deps struct {
	Store      *project.Store
	Gateway    *gateway.Gateway
	Dispatcher *navigation.Dispatcher
	Panels     *panels.Service
	Wizards    *wizard.Manager
	Notes      *notify.Center
	Metrics    *metrics.Metrics
}

// Config holds server configuration
type Config struct {
	Port int
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	deps        Deps
	rateLimiter *ratelimit.Limiter
	logger      zerolog.Logger
	validate    *validator.Validate

	chatMu sync.Mutex
	chat   *gateway.ChatSession
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRateLimiter replaces the limiter built from RATE_LIMIT_* variables.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.rateLimiter = l }
}

// New creates a new server instance
func New(cfg Config, deps Deps, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		logger:   log.Logger.With().Str("component", "server").Logger(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // chat streams and plan generation run long
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)

	var rec middleware.Recorder
	if s.deps.Metrics != nil {
		rec = s.deps.Metrics
	}
	return middleware.Chain(mux,
		middleware.Recover(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		s.withCORS,
		s.withRateLimit,
		middleware.Metrics(rec),
	)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	// Projects
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("GET /projects/{id}", s.handleGetProject)
	mux.HandleFunc("PUT /projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("POST /projects/{id}/select", s.handleSelectProject)
	mux.HandleFunc("GET /projects/{id}/steps", s.handleListSteps)
	mux.HandleFunc("POST /projects/{id}/steps/{step_id}/toggle", s.handleToggleStep)
	mux.HandleFunc("GET /projects/{id}/steps/{step_id}/advice", s.handleStepAdvice)

	// Preferences and notifications
	mux.HandleFunc("GET /prefs", s.handleGetPrefs)
	mux.HandleFunc("PUT /prefs", s.handlePutPrefs)
	mux.HandleFunc("GET /notifications", s.handleListNotifications)
	mux.HandleFunc("POST /notifications/{id}/undo", s.handleUndoNotification)
	mux.HandleFunc("DELETE /notifications/{id}", s.handleDismissNotification)

	// Navigation and chat
	mux.HandleFunc("POST /navigate", s.handleNavigate)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("DELETE /chat", s.handleResetChat)

	// Stateless AI tools
	mux.HandleFunc("POST /pricing/recommendation", s.handlePricingRecommendation)
	mux.HandleFunc("POST /logistics/advice", s.handleLogisticsAdvice)
	mux.HandleFunc("POST /research", s.handleResearch)
	mux.HandleFunc("POST /speech", s.handleSpeech)
	mux.HandleFunc("POST /speech/play", s.handleSpeechPlay)
	mux.HandleFunc("DELETE /speech/play", s.handleSpeechStop)

	// Wizards and integrations
	mux.HandleFunc("GET /projects/{id}/wizards/{kind}", s.handleWizardState)
	mux.HandleFunc("POST /projects/{id}/wizards/{kind}/{action}", s.handleWizardAction)
	mux.HandleFunc("POST /projects/{id}/integrations/{kind}/test", s.handleTestIntegration)

	// Feature panels
	mux.HandleFunc("GET /projects/{id}/payments", s.handleGetPayments)
	mux.HandleFunc("PUT /projects/{id}/payments", s.handlePutPayments)
	mux.HandleFunc("PUT /projects/{id}/payments/currencies", s.handleSetCurrencies)
	mux.HandleFunc("PUT /projects/{id}/payments/tax-provider", s.handleSetTaxProvider)
	mux.HandleFunc("POST /projects/{id}/payments/tax-rates", s.handleAddTaxRate)
	mux.HandleFunc("DELETE /projects/{id}/payments/tax-rates/{index}", s.handleRemoveTaxRate)
	mux.HandleFunc("GET /projects/{id}/marketing", s.handleGetMarketing)
	mux.HandleFunc("POST /projects/{id}/marketing/{name}/toggle", s.handleToggleMarketing)
	mux.HandleFunc("POST /projects/{id}/shipping/zones", s.handleAddZone)
	mux.HandleFunc("DELETE /projects/{id}/shipping/zones/{zone_id}", s.handleRemoveZone)
	mux.HandleFunc("POST /projects/{id}/shipping/zones/{zone_id}/rates", s.handleAddRate)
	mux.HandleFunc("DELETE /projects/{id}/shipping/zones/{zone_id}/rates/{rate_id}", s.handleRemoveRate)
	mux.HandleFunc("POST /projects/{id}/shipping/zones/{zone_id}/verify", s.handleVerifyZone)
	mux.HandleFunc("GET /projects/{id}/pricing", s.handleGetPricing)
	mux.HandleFunc("PUT /projects/{id}/pricing", s.handlePutPricing)
	mux.HandleFunc("POST /projects/{id}/wholesale/{provider}/toggle", s.handleToggleWholesale)
	mux.HandleFunc("GET /projects/{id}/automations", s.handleListAutomations)
	mux.HandleFunc("POST /projects/{id}/automations/{flow_id}/toggle", s.handleToggleAutomation)
	mux.HandleFunc("POST /projects/{id}/automations/{flow_id}/run", s.handleRunAutomation)
	mux.HandleFunc("POST /projects/{id}/bundle", s.handleSuggestBundle)
	mux.HandleFunc("POST /projects/{id}/insights", s.handleMarketInsights)
	mux.HandleFunc("GET /projects/{id}/storefront", s.handleStorefrontAudit)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	s.logger.Info().Msg("server stopped")
	return nil
}

// Close releases the rate limiter and stops speech playback.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.deps.Gateway != nil {
		s.deps.Gateway.StopSpeech()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status and writes it.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		s.logger.Error().Err(err).Msg("request failed")
	}
	s.jsonResponse(w, status, map[string]string{"error": err.Error(), "code": errorCode(err)})
}

// decodeJSON reads the request body into v and runs its validate tags.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := s.readJSON(r, v); err != nil {
		return err
	}
	return s.check(v)
}

// readJSON reads the request body into v.
func (s *Server) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// check runs the validate tags of the struct v points to.
func (s *Server) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ErrValidation{Field: verrs[0].Field(), Message: "failed '" + verrs[0].Tag() + "' check"}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// newValidator reports JSON field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// extractClientID extracts the client identifier (IP address) from the request.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn().
		Int("limit", info.Limit).
		Int("remaining", info.Remaining).
		Time("reset", info.ResetTime).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
