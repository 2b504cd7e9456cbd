// Package integrations checks third-party connection settings and delivers automation webhooks.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/architect/internal/types"
)

// Kind names an integration.
type Kind string

// Supported integrations.
const (
	KindProton Kind = "proton"
	KindZapier Kind = "zapier"
	KindNotion Kind = "notion"
)

// Source identifies this application in webhook payloads.
const Source = "architect"

// sensitiveKeys may never leave the process in a webhook payload.
var sensitiveKeys = []string{"ssn", "credit_card", "password"}

// ErrSensitiveData is returned when a webhook payload carries a forbidden key.
var ErrSensitiveData = errors.New("payload contains sensitive data")

// ConfigError describes why an integration's settings were rejected.
type ConfigError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// WebhookError is returned when a webhook endpoint answers with a non-2xx status.
type WebhookError struct {
	StatusCode int
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// ParseKind validates an integration name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindProton, KindZapier, KindNotion:
		return k, nil
	}
	return "", &ConfigError{Kind: Kind(s), Reason: "unknown integration"}
}

// Validate checks the settings for kind.
func Validate(kind Kind, cfg types.IntegrationConfig) error {
	switch kind {
	case KindProton:
		if !strings.HasPrefix(cfg.APIKey, "pm_") {
			return &ConfigError{Kind: kind, Reason: "bridge key must start with pm_"}
		}
		if !strings.Contains(cfg.Endpoint, "localhost") && !strings.Contains(cfg.Endpoint, "proton.me") {
			return &ConfigError{Kind: kind, Reason: "endpoint must be a local bridge or proton.me host"}
		}
	case KindZapier:
		if !strings.Contains(cfg.Endpoint, "zapier.com/hooks/catch") {
			return &ConfigError{Kind: kind, Reason: "endpoint must be a zapier.com/hooks/catch webhook URL"}
		}
	case KindNotion:
		if !strings.HasPrefix(cfg.APIKey, "secret_") {
			return &ConfigError{Kind: kind, Reason: "integration token must start with secret_"}
		}
		if strings.TrimSpace(cfg.DatabaseID) == "" {
			return &ConfigError{Kind: kind, Reason: "database id is required"}
		}
	default:
		return fmt.Errorf("unknown integration: %s", kind)
	}
	return nil
}

// Get returns the settings for kind.
func Get(s *types.IntegrationSettings, kind Kind) types.IntegrationConfig {
	switch kind {
	case KindProton:
		return s.Proton
	case KindZapier:
		return s.Zapier
	case KindNotion:
		return s.Notion
	}
	return types.IntegrationConfig{}
}

// Set replaces the settings for kind.
func Set(s *types.IntegrationSettings, kind Kind, cfg types.IntegrationConfig) {
	switch kind {
	case KindProton:
		s.Proton = cfg
	case KindZapier:
		s.Zapier = cfg
	case KindNotion:
		s.Notion = cfg
	}
}

// Client tests connections and posts webhooks.
type Client struct {
	http   *http.Client
	clock  func() time.Time
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for webhooks.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(cl *Client) { cl.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: 10 * time.Second},
		clock:  time.Now,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "integrations").Logger()
	return c
}

// Test checks cfg and, if it is acceptable, returns it marked active with LastSync stamped.
// A rejected configuration is returned unchanged.
func (c *Client) Test(_ context.Context, kind Kind, cfg types.IntegrationConfig) (types.IntegrationConfig, error) {
	if err := Validate(kind, cfg); err != nil {
		c.logger.Info().Str("integration", string(kind)).Err(err).Msg("connection test rejected")
		return cfg, err
	}
	cfg.IsActive = true
	cfg.LastSync = c.clock().UnixMilli()
	c.logger.Info().Str("integration", string(kind)).Msg("connection test passed")
	return cfg, nil
}

// WebhookPayload is the body posted to automation webhooks.
type WebhookPayload struct {
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
}

// TriggerWebhook posts event and data to endpoint. Payloads carrying sensitive keys are refused.
func (c *Client) TriggerWebhook(ctx context.Context, endpoint, event string, data map[string]any) error {
	if key, ok := findSensitive(data); ok {
		c.logger.Warn().Str("event", event).Str("key", key).Msg("blocked webhook with sensitive data")
		return fmt.Errorf("%w: %s", ErrSensitiveData, key)
	}

	body, err := json.Marshal(WebhookPayload{
		Source:    Source,
		Timestamp: c.clock().UTC().Format(time.RFC3339),
		Event:     event,
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &WebhookError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	c.logger.Info().Str("event", event).Msg("webhook delivered")
	return nil
}

// findSensitive searches data, including nested maps, for a forbidden key.
func findSensitive(data map[string]any) (string, bool) {
	for k, v := range data {
		lower := strings.ToLower(k)
		for _, s := range sensitiveKeys {
			if strings.Contains(lower, s) {
				return k, true
			}
		}
		if nested, ok := v.(map[string]any); ok {
			if key, found := findSensitive(nested); found {
				return key, true
			}
		}
	}
	return "", false
}
