package ratelimit

import "strings"

// exemptRoutes are never limited: liveness checks and metric scrapes.
var exemptRoutes = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

// unlimited is returned for exempt routes.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration governing method and path, or nil when none does.
// An exact path wins; otherwise the longest configured prefix ending in "/" applies,
// so "/projects/" covers "/projects/{id}/steps/{step_id}/toggle".
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if exemptRoutes[method+" "+path] {
		cfg := unlimited
		return &cfg
	}

	var prefix *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) &&
			(prefix == nil || len(cfg.Path) > len(prefix.Path)) {
			prefix = cfg
		}
	}
	return prefix
}
