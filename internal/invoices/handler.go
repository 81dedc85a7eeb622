package invoices

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/pkg/common"
	"github.com/richxcame/invoice-insights/pkg/logger"
)

// Handler handles HTTP requests for invoice uploads
type Handler struct {
	service       *Service
	importTimeout time.Duration
}

// NewHandler creates a new invoices handler. importTimeout bounds one import.
func NewHandler(service *Service, importTimeout time.Duration) *Handler {
	return &Handler{service: service, importTimeout: importTimeout}
}

// UploadCSV imports the multipart field "file"
// POST /api/v1/invoices/upload-csv
func (h *Handler) UploadCSV(c *gin.Context) {
	upload, err := readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	ctx := c.Request.Context()
	if h.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.importTimeout)
		defer cancel()
	}

	result, err := h.service.Import(ctx, upload)
	if err != nil {
		var invalid *InvalidUploadError
		var malformed *MalformedInputError
		switch {
		case errors.As(err, &invalid):
			common.AppErrorResponse(c, common.NewBadRequestError(invalid.Error(), err))
		case errors.As(err, &malformed):
			common.AppErrorResponse(c, common.NewBadRequestError("error processing CSV: "+malformed.Error(), err))
		default:
			logger.WithContext(ctx).Error("invoice import failed", zap.Error(err))
			common.ErrorResponse(c, http.StatusInternalServerError, "failed to import invoices")
		}
		return
	}

	common.SuccessResponse(c, UploadResponse{
		InvoicesUpserted: result.Upserted,
		Errors:           result.ErrorMessages(),
	})
}

// readUpload returns nil, nil when the form has no file.
func readUpload(c *gin.Context) (*Upload, error) {
	file, header, err := c.Request.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &Upload{FileName: header.Filename, Data: data}, nil
}

// RegisterRoutes registers invoice upload routes. wrap, when given, is
// applied in front of the upload handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, wrap ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, wrap...), h.UploadCSV)

	inv := rg.Group("/invoices")
	{
		inv.POST("/upload-csv", handlers...)
		inv.POST("/upload-svc", handlers...)
	}
}
