package invoices

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUploadRouter(repo RepositoryInterface, wrap ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestService(repo, nil), time.Minute).RegisterRoutes(router.Group("/api/v1"), wrap...)
	return router
}

func multipartRequest(t *testing.T, path, field, filename string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("note", "no file"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandler_UploadCSV_Success(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpsertSupplier", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpsertInvoice", mock.Anything, mock.Anything).Return(nil)

	data := csvFile(
		csvLine("INV-1", "100", "USD", "PAID", "SUP-1"),
		csvLine("INV-2", "abc", "USD", "PAID", "SUP-1"),
	)

	for _, path := range []string{"/api/v1/invoices/upload-csv", "/api/v1/invoices/upload-svc"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			setupUploadRouter(repo).ServeHTTP(w, multipartRequest(t, path, "file", "invoices.csv", data))

			assert.Equal(t, http.StatusOK, w.Code)
			response := decode(t, w)
			assert.True(t, response["success"].(bool))
			payload := response["data"].(map[string]interface{})
			assert.Equal(t, float64(1), payload["invoicesUpserted"])
			assert.Equal(t, []interface{}{`Row INV-2: invalid invoice_cost "abc": not a decimal number`}, payload["errors"])
		})
	}
}

func TestHandler_UploadCSV_EmptyErrorsIsArray(t *testing.T) {
	repo := new(MockRepository)

	w := httptest.NewRecorder()
	setupUploadRouter(repo).ServeHTTP(w, multipartRequest(t, "/api/v1/invoices/upload-csv", "file", "a.csv", csvFile()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"errors":[]`)
}

func TestHandler_UploadCSV_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		request  func(t *testing.T) *http.Request
		wantCode int
		wantMsg  string
	}{
		{
			name: "no file field",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/invoices/upload-csv", "file", "", nil)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "no file uploaded",
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/invoices/upload-csv", strings.NewReader("{}"))
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "no file uploaded",
		},
		{
			name: "wrong extension",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/invoices/upload-csv", "file", "file.txt", []byte("hello"))
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  `file must be a CSV, got "file.txt"`,
		},
		{
			name: "malformed csv",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/invoices/upload-csv", "file", "a.csv", []byte("a,b\n\"1,2\n"))
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "error processing CSV: malformed csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			w := httptest.NewRecorder()
			setupUploadRouter(repo).ServeHTTP(w, tt.request(t))

			assert.Equal(t, tt.wantCode, w.Code)
			response := decode(t, w)
			assert.False(t, response["success"].(bool))
			assert.Contains(t, response["error"].(map[string]interface{})["message"], tt.wantMsg)
			repo.AssertNotCalled(t, "UpsertSupplier", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_UploadCSV_TooLarge(t *testing.T) {
	limit := func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 256)
		c.Next()
	}

	repo := new(MockRepository)
	data := csvFile(csvLine("INV-1", "100", "USD", "PAID", "SUP-1"))

	w := httptest.NewRecorder()
	setupUploadRouter(repo, limit).ServeHTTP(w, multipartRequest(t, "/api/v1/invoices/upload-csv", "file", "a.csv", data))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	repo.AssertNotCalled(t, "UpsertSupplier", mock.Anything, mock.Anything)
}
