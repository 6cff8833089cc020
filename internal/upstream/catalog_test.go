package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/httpclient"
)

func newTestCatalogClient(t *testing.T, handler http.Handler) *CatalogClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	client := httpclient.NewBreakerClient(httpclient.New(cfg), httpclient.DefaultBreakerConfig("catalog-test"), logger)
	return NewCatalogClient(srv.URL, client)
}

func TestCatalogClient_Product(t *testing.T) {
	c := newTestCatalogClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/p1", r.URL.Path)

		_, _ = w.Write([]byte(`{
			"_id": "p1", "title": "Gold Ring", "price": 249.99, "discount": 10,
			"images": ["ring.jpg"], "category": {"name": "Rings"}
		}`))
	}))

	product, err := c.Product(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, "Gold Ring", product.Title)
	assert.Equal(t, 249.99, product.Price)
	assert.Equal(t, "Rings", product.Category)
}

func TestCatalogClient_ProductCategoryAsString(t *testing.T) {
	c := newTestCatalogClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_id": "p2", "title": "Silver Chain", "price": 89, "category": "Chains"}`))
	}))

	product, err := c.Product(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Chains", product.Category)
}

func TestCatalogClient_ProductDeleted(t *testing.T) {
	c := newTestCatalogClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "product not found"}`))
	}))

	_, err := c.Product(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogClient_ProductIDIsPathEscaped(t *testing.T) {
	c := newTestCatalogClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"_id": "a/b", "title": "Odd", "price": 1}`))
	}))

	product, err := c.Product(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", product.ID)
}
