package ratelimit

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// envSettings mirrors the RATE_LIMIT_* environment variables.
type envSettings struct {
	Enabled         bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	DefaultLimit    int           `envconfig:"RATE_LIMIT_DEFAULT_LIMIT" default:"1000"`
	DefaultWindow   time.Duration `envconfig:"RATE_LIMIT_DEFAULT_WINDOW" default:"1m"`
	CleanupInterval time.Duration `envconfig:"RATE_LIMIT_CLEANUP_INTERVAL" default:"5m"`
	Whitelist       string        `envconfig:"RATE_LIMIT_WHITELIST"`
	Blacklist       string        `envconfig:"RATE_LIMIT_BLACKLIST"`
}

// LoadConfig loads rate limiting configuration from environment variables.
// Malformed values fall back to the defaults.
func LoadConfig() *Config {
	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		env = envSettings{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	if !env.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.DefaultLimit,
		DefaultWindow:   env.DefaultWindow,
		CleanupInterval: env.CleanupInterval,
		Whitelist:       parseIPList(env.Whitelist),
		Blacklist:       parseIPList(env.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: plan generation and chat (strictest limits)
		{Path: "/projects", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/chat", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},

		// Tier 2: other AI calls
		{Path: "/pricing/recommendation", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/logistics/advice", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/research", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/speech", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 3: writes
		{Path: "/projects/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/projects/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/projects/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/prefs", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},

		// Reads use the default limit; health is unlimited (see matcher)
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
