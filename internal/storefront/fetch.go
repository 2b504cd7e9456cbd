// Package storefront audits a project's live Shopify storefront: it fetches the home page,
// optionally renders it in a headless browser, and checks it for launch readiness.
package storefront

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for storefront requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ArchitectAudit/1.0)"

// maxPageBytes caps how much of a page is read.
const maxPageBytes = 4 << 20

// Page holds a fetched storefront page.
type Page struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents a failure fetching or rendering a storefront page.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storefront error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("storefront error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NormalizeURL turns a shop address such as "my-shop.myshopify.com" into an absolute https URL.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &Error{URL: raw, Message: "no storefront URL"}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &Error{URL: raw, Message: "invalid URL", Cause: err}
	}
	u.Fragment = ""
	return u.String(), nil
}

// Fetch retrieves the HTML of pageURL.
// A non-200 response returns the page together with an error.
func Fetch(ctx context.Context, client *http.Client, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to read response body", Cause: err}
	}

	page := &Page{
		URL:         resp.Request.URL.String(),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: pageURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return page, nil
}
