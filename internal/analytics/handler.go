package analytics

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/internal/currency"
	"github.com/richxcame/invoice-insights/pkg/common"
	"github.com/richxcame/invoice-insights/pkg/logger"
	"github.com/richxcame/invoice-insights/pkg/middleware"
)

// Handler handles HTTP requests for invoice aggregations
type Handler struct {
	service *Service
}

// NewHandler creates a new analytics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type aggregation func(ctx context.Context, filter *Filter) ([]GroupTotal, error)

// GetByStatus returns totals per invoice status
// GET /api/v1/invoices/by-status?from=2024-01-01&to=2024-12-31&status=paid&supplierId=SUP-1
func (h *Handler) GetByStatus(c *gin.Context) {
	h.respond(c, h.service.ByStatus)
}

// GetMonthlyTotals returns totals per due month, or per the groupBy dimensions
// GET /api/v1/invoices/monthly-totals?groupBy=status&groupBy=date
func (h *Handler) GetMonthlyTotals(c *gin.Context) {
	h.respond(c, h.service.MonthlyTotals)
}

// GetBySupplier returns totals per supplier
// GET /api/v1/invoices/by-supplier?supplierId=SUP-1,SUP-2
func (h *Handler) GetBySupplier(c *gin.Context) {
	h.respond(c, h.service.BySupplier)
}

// GetOverdueTrend returns overdue totals per due month
// GET /api/v1/invoices/overdue-trend-overtime?from=2024-01-01
func (h *Handler) GetOverdueTrend(c *gin.Context) {
	h.respond(c, h.service.OverdueTrend)
}

func (h *Handler) respond(c *gin.Context, run aggregation) {
	var query FilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.RespondWithValidationError(c, err)
		return
	}

	filter, err := query.Normalize()
	if err != nil {
		middleware.RespondWithValidationError(c, err)
		return
	}

	totals, err := run(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.SuccessResponse(c, totals)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var unavailable *currency.RateProviderUnavailableError
	var unresolvable *UnresolvableCurrencyError
	switch {
	case errors.As(err, &unavailable):
		common.AppErrorResponse(c, common.NewServiceUnavailableError("exchange rates unavailable"))
	case errors.As(err, &unresolvable):
		common.AppErrorResponse(c, common.NewUnprocessableEntityError(unresolvable.Error(), err))
	default:
		logger.WithContext(c.Request.Context()).Error("invoice aggregation failed", zap.Error(err))
		common.AppErrorResponse(c, common.NewInternalServerError("failed to aggregate invoices"))
	}
}

// RegisterRoutes registers invoice aggregation routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/invoices")
	{
		inv.GET("/by-status", h.GetByStatus)
		inv.GET("/monthly-totals", h.GetMonthlyTotals)
		inv.GET("/by-supplier", h.GetBySupplier)
		inv.GET("/overdue-trend-overtime", h.GetOverdueTrend)
	}
}
