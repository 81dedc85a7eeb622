package currency

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/pkg/common"
	"github.com/richxcame/invoice-insights/pkg/logger"
)

// RateReader is what the handler needs from the rate cache.
type RateReader interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Handler handles HTTP requests for currency
type Handler struct {
	rates RateReader
}

// NewHandler creates a new currency handler
func NewHandler(rates RateReader) *Handler {
	return &Handler{rates: rates}
}

// GetRates returns the current snapshot
func (h *Handler) GetRates(c *gin.Context) {
	snapshot, err := h.rates.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.SuccessResponse(c, RatesResponse{
		Base:      snapshot.Base,
		Date:      snapshot.Date,
		FetchedAt: snapshot.FetchedAt,
		Rates:     snapshot.Rates(),
	})
}

// GetRate returns the rate of one currency against the base currency
func (h *Handler) GetRate(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	if len(code) != 3 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid currency code")
		return
	}

	snapshot, err := h.rates.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	rate, ok := snapshot.Rate(code)
	if !ok {
		common.ErrorResponse(c, http.StatusNotFound, "exchange rate not found")
		return
	}

	common.SuccessResponse(c, RateResponse{Base: snapshot.Base, Code: code, Rate: rate.String()})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var unavailable *RateProviderUnavailableError
	if errors.As(err, &unavailable) {
		common.AppErrorResponse(c, common.NewServiceUnavailableError("exchange rates unavailable"))
		return
	}
	logger.WithContext(c.Request.Context()).Error("failed to read exchange rates", zap.Error(err))
	common.AppErrorResponse(c, common.NewInternalServerError("failed to get exchange rates"))
}

// RegisterRoutes registers currency routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	curr := rg.Group("/currency")
	{
		curr.GET("/rates", h.GetRates)
		curr.GET("/rates/:code", h.GetRate)
	}
}
