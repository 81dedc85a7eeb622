package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/richxcame/invoice-insights/internal/analytics"
	"github.com/richxcame/invoice-insights/internal/currency"
	"github.com/richxcame/invoice-insights/internal/invoices"
	"github.com/richxcame/invoice-insights/pkg/config"
)

type stubInvoiceRepo struct{}

func (stubInvoiceRepo) UpsertSupplier(ctx context.Context, s *invoices.Supplier) error { return nil }
func (stubInvoiceRepo) UpsertInvoice(ctx context.Context, i *invoices.Invoice) error   { return nil }

type stubAggregateRepo struct{}

func (stubAggregateRepo) SumByDimensions(ctx context.Context, dims []analytics.Dimension, f *analytics.Filter) ([]analytics.GroupSum, error) {
	return []analytics.GroupSum{}, nil
}

type stubRates struct{}

func (stubRates) Snapshot(ctx context.Context) (*currency.Snapshot, error) {
	return currency.NewSnapshot("USD", "", map[string]string{"EUR": "0.9"}, time.Now()), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{ServiceName: serviceName, CORSOrigins: "http://localhost:3000"},
		Import: config.ImportConfig{Timeout: time.Minute, MaxUploadSize: 1024},
	}
}

func setupTestRouter(checks map[string]func() error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	return setupRouter(routerDeps{
		cfg:       cfg,
		invoices:  invoices.NewHandler(invoices.NewService(stubInvoiceRepo{}, nil), cfg.Import.Timeout),
		analytics: analytics.NewHandler(analytics.NewService(stubAggregateRepo{}, stubRates{}, analytics.PolicyFallback)),
		currency:  currency.NewHandler(stubRates{}),
		checks:    checks,
	})
}

func TestRouter_Health(t *testing.T) {
	router := setupTestRouter(map[string]func() error{"database": func() error { return nil }})

	for _, path := range []string{"/healthz", "/health/live", "/health/ready", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_ReadinessFailure(t *testing.T) {
	router := setupTestRouter(map[string]func() error{"database": func() error { return errors.New("connection refused") }})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestRouter_CorrelationIDHeader(t *testing.T) {
	router := setupTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/by-status", nil)
	req.Header.Set("X-Request-ID", "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRouter_UploadTooLarge(t *testing.T) {
	router := setupTestRouter(nil)

	w := httptest.NewRecorder()
	body := bytes.Repeat([]byte("a"), 2048)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/upload-csv", bytes.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_CurrencyRates(t *testing.T) {
	router := setupTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/currency/rates/eur", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rate":"0.9"`)
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig("http://a.test, http://b.test,")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
	assert.False(t, cfg.AllowAllOrigins)

	all := corsConfig("*")
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)

	assert.True(t, strings.Contains(strings.Join(cfg.ExposeHeaders, ","), "X-Request-ID"))
}
