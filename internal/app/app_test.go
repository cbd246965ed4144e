package app_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/niksmo/sneakers/config"
	"github.com/niksmo/sneakers/internal/adapter/httphandler"
	"github.com/niksmo/sneakers/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Read(
		[]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")},
	)
	require.NoError(t, err)
	cfg.Cart.Storage.Dir = t.TempDir()
	cfg.Checkout.Delay = 0
	return cfg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cartOf(t *testing.T, rec *httptest.ResponseRecorder) httphandler.Cart {
	t.Helper()
	var c httphandler.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	return c
}

func TestAppCartSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)

	first := app.New(t.Context(), cfg)
	rec := do(t, first.Handler(), http.MethodPost, "/v1/cart/items",
		`{"product_id":"velocity-runner","color":"Black","size":9.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	first.Close(t.Context())

	second := app.New(t.Context(), cfg)
	defer second.Close(t.Context())

	rec = do(t, second.Handler(), http.MethodGet, "/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	c := cartOf(t, rec)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "velocity-runner", c.Items[0].Product.ID)
	assert.Equal(t, "Black", c.Items[0].Color.Name)
	assert.Equal(t, 9.5, c.Items[0].Size)
	assert.Equal(t, "129.99", c.Totals.Subtotal)
}

func TestAppCheckout(t *testing.T) {
	a := app.New(t.Context(), testConfig(t))
	defer a.Close(t.Context())
	h := a.Handler()

	do(t, h, http.MethodPost, "/v1/cart/items",
		`{"product_id":"street-slip","color":"Black","size":9}`)

	rec := do(t, h, http.MethodPost, "/v1/checkout", `{
		"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com",
		"phone":"+44 20 0000 0000","address":"12 St James's Square",
		"city":"London","zip_code":"SW1Y 4JH","country":"UK",
		"payment_method":"card"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/cart", "")
	assert.Empty(t, cartOf(t, rec).Items)
}

func TestAppMetrics(t *testing.T) {
	t.Run("Enabled", func(t *testing.T) {
		a := app.New(t.Context(), testConfig(t))
		defer a.Close(t.Context())

		do(t, a.Handler(), http.MethodPost, "/v1/cart/items",
			`{"product_id":"velocity-runner","color":"Red","size":10}`)

		rec := do(t, a.Handler(), http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `storefront_cart_mutations_total{op="add"} 1`)
		assert.Contains(t, rec.Body.String(), "storefront_cart_items 1")
	})

	t.Run("Disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Metrics.Enabled = false
		a := app.New(t.Context(), cfg)
		defer a.Close(t.Context())

		rec := do(t, a.Handler(), http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAppUnknownDriverPanics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cart.Storage.Driver = "etcd"

	assert.Panics(t, func() { app.New(t.Context(), cfg) })
}
