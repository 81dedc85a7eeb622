package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/internal/currency"
	"github.com/richxcame/invoice-insights/pkg/logger"
)

// UnknownCurrencyPolicy decides what happens to a group whose currency has
// no rate.
type UnknownCurrencyPolicy string

const (
	// PolicyFallback converts with rate 1 and records the fallback.
	PolicyFallback UnknownCurrencyPolicy = "fallback"
	// PolicyReject fails the aggregation with UnresolvableCurrencyError.
	PolicyReject UnknownCurrencyPolicy = "reject"
)

const overdueStatus = "OVERDUE"

// Service aggregates invoice totals in the base currency
type Service struct {
	repo      RepositoryInterface
	rates     RateSource
	converter *currency.Converter
	policy    UnknownCurrencyPolicy
}

// NewService creates a new aggregation service
func NewService(repo RepositoryInterface, rates RateSource, policy UnknownCurrencyPolicy) *Service {
	if policy != PolicyReject {
		policy = PolicyFallback
	}
	return &Service{
		repo:      repo,
		rates:     rates,
		converter: currency.NewConverter(currency.RoundingModeStandard, 2),
		policy:    policy,
	}
}

// WithRounding sets how converted totals are rounded. The default is
// half away from zero.
func (s *Service) WithRounding(mode currency.RoundingMode) *Service {
	s.converter = currency.NewConverter(mode, 2)
	return s
}

// ByStatus totals invoices per status. Statuses are lower-cased; a missing
// status is reported as "unknown".
func (s *Service) ByStatus(ctx context.Context, filter *Filter) ([]GroupTotal, error) {
	return s.aggregate(ctx, []Dimension{DimensionStatus}, filter)
}

// MonthlyTotals totals invoices per due month, or per the dimensions in
// filter.GroupBy when set.
func (s *Service) MonthlyTotals(ctx context.Context, filter *Filter) ([]GroupTotal, error) {
	dims := []Dimension{DimensionYear, DimensionMonth}
	if filter != nil && len(filter.GroupBy) > 0 {
		dims = filter.GroupBy
	}
	return s.aggregate(ctx, dims, filter)
}

// BySupplier totals invoices per supplier.
func (s *Service) BySupplier(ctx context.Context, filter *Filter) ([]GroupTotal, error) {
	return s.aggregate(ctx, []Dimension{DimensionSupplier}, filter)
}

// OverdueTrend totals overdue invoices per due month. Any status in filter
// is replaced by OVERDUE.
func (s *Service) OverdueTrend(ctx context.Context, filter *Filter) ([]GroupTotal, error) {
	f := Filter{}
	if filter != nil {
		f = *filter
	}
	f.Status = overdueStatus
	return s.aggregate(ctx, []Dimension{DimensionYear, DimensionMonth}, &f)
}

func (s *Service) aggregate(ctx context.Context, dims []Dimension, filter *Filter) ([]GroupTotal, error) {
	sums, err := s.repo.SumByDimensions(ctx, dims, filter)
	if err != nil {
		return nil, err
	}
	if len(sums) == 0 {
		return []GroupTotal{}, nil
	}

	snapshot, err := s.rates.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Groups fold in first-seen order, which is the query order.
	var order []string
	totals := map[string]decimal.Decimal{}
	keys := map[string]GroupKey{}

	for _, gs := range sums {
		amount, err := s.toBase(ctx, snapshot, gs)
		if err != nil {
			return nil, err
		}

		key := gs.Key
		key.Status = statusLabel(key.Status)
		id := foldKey(dims, key)
		if _, ok := totals[id]; !ok {
			order = append(order, id)
			keys[id] = key
			totals[id] = decimal.Zero
		}
		totals[id] = totals[id].Add(amount)
	}

	out := make([]GroupTotal, 0, len(order))
	for _, id := range order {
		out = append(out, newGroupTotal(dims, keys[id], s.converter.Round(totals[id])))
	}
	return out, nil
}

func (s *Service) toBase(ctx context.Context, snapshot *currency.Snapshot, gs GroupSum) (decimal.Decimal, error) {
	rate, ok := snapshot.Rate(gs.Currency)
	if ok {
		return s.converter.ToBase(gs.Sum, rate), nil
	}

	if s.policy == PolicyReject {
		return decimal.Zero, &UnresolvableCurrencyError{Currency: gs.Currency}
	}

	recordFallback(gs.Currency)
	logger.WithContext(ctx).Warn("no exchange rate for currency, using rate 1",
		zap.String("currency", gs.Currency),
		zap.String("base", snapshot.Base),
		zap.String("sum", gs.Sum.String()),
	)
	return gs.Sum, nil
}

func statusLabel(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return "unknown"
	}
	return status
}

func foldKey(dims []Dimension, key GroupKey) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		switch d {
		case DimensionStatus:
			parts[i] = key.Status
		case DimensionSupplier:
			parts[i] = key.SupplierID
		case DimensionMonth:
			parts[i] = fmt.Sprint(key.Month)
		case DimensionYear:
			parts[i] = fmt.Sprint(key.Year)
		}
	}
	return strings.Join(parts, "\x00")
}

func newGroupTotal(dims []Dimension, key GroupKey, total decimal.Decimal) GroupTotal {
	gt := GroupTotal{TotalAmount: total.InexactFloat64()}
	for _, d := range dims {
		switch d {
		case DimensionStatus:
			status := key.Status
			gt.Status = &status
		case DimensionSupplier:
			supplierID := key.SupplierID
			gt.SupplierID = &supplierID
		case DimensionMonth, DimensionYear:
			month := fmt.Sprintf("%d/%d", key.Month, key.Year)
			gt.Month = &month
		}
	}
	return gt
}
