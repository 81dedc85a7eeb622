package currency

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRateReader struct {
	mock.Mock
}

func (m *MockRateReader) Snapshot(ctx context.Context) (*Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func setupRouter(reader RateReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(reader).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestHandler_GetRates(t *testing.T) {
	reader := new(MockRateReader)
	reader.On("Snapshot", mock.Anything).Return(
		NewSnapshot("USD", "2024-05-01", map[string]string{"EUR": "0.5"}, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)), nil)

	w := httptest.NewRecorder()
	setupRouter(reader).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/currency/rates", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "USD", data["base"])
	assert.Equal(t, "0.5", data["rates"].(map[string]interface{})["EUR"])
	assert.Equal(t, "1", data["rates"].(map[string]interface{})["USD"])
}

func TestHandler_GetRate(t *testing.T) {
	snapshot := NewSnapshot("USD", "", map[string]string{"EUR": "0.5"}, time.Now())

	tests := []struct {
		name       string
		path       string
		reader     func() *MockRateReader
		wantStatus int
		wantRate   string
	}{
		{
			name: "found",
			path: "/api/v1/currency/rates/eur",
			reader: func() *MockRateReader {
				m := new(MockRateReader)
				m.On("Snapshot", mock.Anything).Return(snapshot, nil)
				return m
			},
			wantStatus: http.StatusOK,
			wantRate:   "0.5",
		},
		{
			name: "unknown",
			path: "/api/v1/currency/rates/XYZ",
			reader: func() *MockRateReader {
				m := new(MockRateReader)
				m.On("Snapshot", mock.Anything).Return(snapshot, nil)
				return m
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad code",
			path:       "/api/v1/currency/rates/EURO",
			reader:     func() *MockRateReader { return new(MockRateReader) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "provider down",
			path: "/api/v1/currency/rates/EUR",
			reader: func() *MockRateReader {
				m := new(MockRateReader)
				m.On("Snapshot", mock.Anything).Return(nil, &RateProviderUnavailableError{Err: errors.New("timeout")})
				return m
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "unexpected failure",
			path: "/api/v1/currency/rates/EUR",
			reader: func() *MockRateReader {
				m := new(MockRateReader)
				m.On("Snapshot", mock.Anything).Return(nil, errors.New("snapshot corrupted"))
				return m
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			setupRouter(tt.reader()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantRate != "" {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, tt.wantRate, response["data"].(map[string]interface{})["rate"])
			}
		})
	}
}
