package project

import (
	"context"
	"net/http"
	"time"
)

// Connectivity reports whether the network is reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// AlwaysOnline assumes the network is reachable.
type AlwaysOnline struct{}

// Online always returns true.
func (AlwaysOnline) Online(context.Context) bool { return true }

// HTTPProbe checks connectivity with a HEAD request. Any response counts as online.
type HTTPProbe struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPProbe creates a probe for url with a short timeout.
func NewHTTPProbe(url string) *HTTPProbe {
	return &HTTPProbe{URL: url, Client: http.DefaultClient, Timeout: 3 * time.Second}
}

// Online sends the probe request.
func (p *HTTPProbe) Online(ctx context.Context) bool {
	if p.URL == "" {
		return true
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
