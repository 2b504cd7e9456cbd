package panels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/storefront"
	"github.com/jonathan/architect/internal/types"
)

func TestAuditStorefront(t *testing.T) {
	shop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Aether</title></head><body><a href="/products/map">Map</a></body></html>`))
	}))
	defer shop.Close()

	f := newFixture(t, WithStorefront(storefront.NewAuditor(storefront.WithHTTPClient(shop.Client()))))
	ctx := context.Background()

	_, err := f.svc.AuditStorefront(ctx, f.project.ID)
	var inErr *InputError
	require.ErrorAs(t, err, &inErr)
	assert.Equal(t, "shopifyUrl", inErr.Field)

	_, err = f.store.Modify(ctx, f.project.ID, func(p *types.Project) error {
		p.ShopifyURL = shop.URL
		return nil
	})
	require.NoError(t, err)

	report, err := f.svc.AuditStorefront(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aether", report.Title)
	assert.Equal(t, 1, report.ProductLinks)
	assert.Len(t, report.Failed(), 4)
	assert.Equal(t, notify.TypeInfo, f.lastNote(t).Type)
	assert.Contains(t, f.lastNote(t).Message, "4 checks need attention")
}

func TestAuditStorefront_Unreachable(t *testing.T) {
	shop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer shop.Close()

	f := newFixture(t, WithStorefront(storefront.NewAuditor(storefront.WithHTTPClient(shop.Client()))))
	ctx := context.Background()
	_, err := f.store.Modify(ctx, f.project.ID, func(p *types.Project) error {
		p.ShopifyURL = shop.URL
		return nil
	})
	require.NoError(t, err)

	_, err = f.svc.AuditStorefront(ctx, f.project.ID)
	var sErr *storefront.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, notify.TypeError, f.lastNote(t).Type)
}
