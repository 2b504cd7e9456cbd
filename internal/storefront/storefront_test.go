package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readyShop = `<html>
<head>
  <title>Aether Moor Maps</title>
  <meta name="description" content="Hand drawn fantasy maps.">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta property="og:image" content="https://cdn.example.com/og.png">
</head>
<body>
  <a href="/collections/all">All</a>
  <a href="/products/moor-map">Moor map</a>
  <a href="/products/moor-map/">Moor map again</a>
  <a href="/products/coast-map#reviews">Coast map</a>
  <a href="https://other.example.com/products/x">Elsewhere</a>
  <a href="/cart">Cart</a>
  <p>` + "Welcome to the shop. " + `</p>
</body>
</html>`

const bareShop = `<html><head></head><body><div id="app"></div><script>render()</script></body></html>`

func TestAnalyze_ReadyStorefront(t *testing.T) {
	r, err := Analyze("https://aether.example.com/", readyShop)
	require.NoError(t, err)

	assert.Equal(t, "Aether Moor Maps", r.Title)
	assert.Equal(t, "Hand drawn fantasy maps.", r.Description)
	assert.Equal(t, 2, r.ProductLinks)
	assert.Equal(t, 1, r.CollectionLinks)
	assert.Empty(t, r.Failed())
	assert.Equal(t, 100, r.Score)
}

func TestAnalyze_BareStorefront(t *testing.T) {
	r, err := Analyze("https://bare.example.com", bareShop)
	require.NoError(t, err)

	failed := map[string]bool{}
	for _, c := range r.Failed() {
		failed[c.Name] = true
	}
	assert.Equal(t, map[string]bool{
		CheckTitle: true, CheckDescription: true, CheckViewport: true,
		CheckShareImage: true, CheckProducts: true, CheckCart: true,
	}, failed)
	assert.Equal(t, 0, r.Score)
	assert.True(t, NeedsRendering(r.text))
	assert.NotContains(t, r.text, "render()")
}

func TestAnalyze_CartForm(t *testing.T) {
	r, err := Analyze("https://shop.example.com", `<body><form action="/cart/add"></form></body>`)
	require.NoError(t, err)

	for _, c := range r.Checks {
		if c.Name == CheckCart {
			assert.True(t, c.Passed)
		}
	}
	// 1 of 6 rounds half up to 17
	assert.Equal(t, 17, r.Score)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "my-shop.myshopify.com", want: "https://my-shop.myshopify.com"},
		{in: "  http://shop.example.com/#top ", want: "http://shop.example.com/"},
		{in: "", wantErr: true},
		{in: "ftp://shop.example.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				var sErr *Error
				assert.ErrorAs(t, err, &sErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	page, err := Fetch(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	require.NotNil(t, page)
	assert.Equal(t, http.StatusServiceUnavailable, page.StatusCode)
	assert.Contains(t, err.Error(), "503")
}

type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (f *fakeRenderer) Render(context.Context, string) (string, error) {
	f.calls++
	return f.html, f.err
}

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuditor_NoRenderer(t *testing.T) {
	srv := serve(t, bareShop)
	a := NewAuditor(WithHTTPClient(srv.Client()), WithLogger(zerolog.Nop()))

	r, err := a.Audit(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, r.Rendered)
	assert.Equal(t, 0, r.Score)
}

func TestAuditor_RendersThinPages(t *testing.T) {
	srv := serve(t, bareShop)
	rendered := strings.Replace(readyShop, "Welcome to the shop. ", strings.Repeat("Welcome to the shop. ", 20), 1)
	fr := &fakeRenderer{html: rendered}
	a := NewAuditor(WithHTTPClient(srv.Client()), WithRenderer(fr), WithLogger(zerolog.Nop()))

	r, err := a.Audit(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, fr.calls)
	assert.True(t, r.Rendered)
	assert.Equal(t, 100, r.Score)
}

func TestAuditor_SkipsRenderingForContentPages(t *testing.T) {
	full := strings.Replace(readyShop, "Welcome to the shop. ", strings.Repeat("Welcome to the shop. ", 20), 1)
	srv := serve(t, full)
	fr := &fakeRenderer{}
	a := NewAuditor(WithHTTPClient(srv.Client()), WithRenderer(fr), WithLogger(zerolog.Nop()))

	r, err := a.Audit(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Zero(t, fr.calls)
	assert.False(t, r.Rendered)
}

func TestAuditor_RenderFailureFallsBack(t *testing.T) {
	srv := serve(t, bareShop)
	fr := &fakeRenderer{err: errors.New("chrome not found")}
	a := NewAuditor(WithHTTPClient(srv.Client()), WithRenderer(fr), WithLogger(zerolog.Nop()))

	r, err := a.Audit(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, r.Rendered)
}
