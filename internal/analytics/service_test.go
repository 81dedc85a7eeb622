package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/richxcame/invoice-insights/internal/currency"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SumByDimensions(ctx context.Context, dims []Dimension, filter *Filter) ([]GroupSum, error) {
	args := m.Called(ctx, dims, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GroupSum), args.Error(1)
}

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Snapshot(ctx context.Context) (*currency.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Snapshot), args.Error(1)
}

func usdSnapshot() *currency.Snapshot {
	return currency.NewSnapshot("USD", "2024-05-01", map[string]string{"USD": "1", "EUR": "0.5"}, time.Now())
}

func sum(key GroupKey, code, amount string) GroupSum {
	return GroupSum{Key: key, Currency: code, Sum: decimal.RequireFromString(amount)}
}

func str(s string) *string { return &s }

func TestService_ByStatus(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)
	repo.On("SumByDimensions", mock.Anything, []Dimension{DimensionStatus}, mock.Anything).Return([]GroupSum{
		sum(GroupKey{Status: "CANCELLED"}, "USD", "100"),
		sum(GroupKey{Status: "CANCELLED"}, "EUR", "200"),
		sum(GroupKey{Status: "CONFIRMED"}, "EUR", "300"),
	}, nil)
	rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

	totals, err := NewService(repo, rates, PolicyFallback).ByStatus(context.Background(), &Filter{})
	require.NoError(t, err)

	assert.Equal(t, []GroupTotal{
		{Status: str("cancelled"), TotalAmount: 500},
		{Status: str("confirmed"), TotalAmount: 600},
	}, totals)
}

func TestService_ByStatus_MissingStatus(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)
	repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return([]GroupSum{
		sum(GroupKey{Status: ""}, "USD", "10"),
		sum(GroupKey{Status: "PAID"}, "USD", "5"),
	}, nil)
	rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

	totals, err := NewService(repo, rates, PolicyFallback).ByStatus(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "unknown", *totals[0].Status)
	assert.Equal(t, "paid", *totals[1].Status)
}

func TestService_OverdueTrend(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)

	overdueOnly := mock.MatchedBy(func(f *Filter) bool { return f.Status == "OVERDUE" && f.From != nil })
	repo.On("SumByDimensions", mock.Anything, []Dimension{DimensionYear, DimensionMonth}, overdueOnly).Return([]GroupSum{
		sum(GroupKey{Month: 1, Year: 2024}, "USD", "200"),
		sum(GroupKey{Month: 1, Year: 2024}, "EUR", "100"),
		sum(GroupKey{Month: 2, Year: 2024}, "EUR", "200"),
		sum(GroupKey{Month: 1, Year: 2025}, "EUR", "300"),
	}, nil)
	rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := &Filter{From: &from, Status: "PAID"}
	totals, err := NewService(repo, rates, PolicyFallback).OverdueTrend(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, []GroupTotal{
		{Month: str("1/2024"), TotalAmount: 400},
		{Month: str("2/2024"), TotalAmount: 400},
		{Month: str("1/2025"), TotalAmount: 600},
	}, totals)
	assert.Equal(t, "PAID", filter.Status, "caller's filter is left untouched")
	repo.AssertExpectations(t)
}

func TestService_MonthlyTotals_GroupBy(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)
	dims := []Dimension{DimensionStatus, DimensionYear, DimensionMonth}
	repo.On("SumByDimensions", mock.Anything, dims, mock.Anything).Return([]GroupSum{
		sum(GroupKey{Status: "PAID", Month: 3, Year: 2024}, "USD", "10.005"),
		sum(GroupKey{Status: "PAID", Month: 3, Year: 2024}, "EUR", "1"),
		sum(GroupKey{Status: "PAID", Month: 4, Year: 2024}, "USD", "7"),
	}, nil)
	rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

	totals, err := NewService(repo, rates, PolicyFallback).MonthlyTotals(context.Background(), &Filter{GroupBy: dims})
	require.NoError(t, err)

	assert.Equal(t, []GroupTotal{
		{Status: str("paid"), Month: str("3/2024"), TotalAmount: 12.01},
		{Status: str("paid"), Month: str("4/2024"), TotalAmount: 7},
	}, totals)
}

func TestService_MonthlyTotals_DefaultsToMonth(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)
	repo.On("SumByDimensions", mock.Anything, []Dimension{DimensionYear, DimensionMonth}, mock.Anything).Return([]GroupSum{
		sum(GroupKey{Month: 12, Year: 2023}, "USD", "1.234"),
	}, nil)
	rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

	totals, err := NewService(repo, rates, PolicyFallback).MonthlyTotals(context.Background(), &Filter{})
	require.NoError(t, err)
	assert.Equal(t, []GroupTotal{{Month: str("12/2023"), TotalAmount: 1.23}}, totals)
}

func TestService_BySupplier(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)
	repo.On("SumByDimensions", mock.Anything, []Dimension{DimensionSupplier}, mock.Anything).Return([]GroupSum{
		sum(GroupKey{SupplierID: "SUP-1"}, "EUR", "1"),
		sum(GroupKey{SupplierID: "SUP-1"}, "USD", "0.5"),
		sum(GroupKey{SupplierID: "SUP-2"}, "USD", "3"),
	}, nil)
	rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

	totals, err := NewService(repo, rates, PolicyFallback).BySupplier(context.Background(), &Filter{})
	require.NoError(t, err)
	assert.Equal(t, []GroupTotal{
		{SupplierID: str("SUP-1"), TotalAmount: 2.5},
		{SupplierID: str("SUP-2"), TotalAmount: 3},
	}, totals)
}

func TestService_UnknownCurrency(t *testing.T) {
	sums := []GroupSum{
		sum(GroupKey{Status: "PAID"}, "USD", "10"),
		sum(GroupKey{Status: "PAID"}, "XYZ", "5"),
	}

	t.Run("fallback divides by one", func(t *testing.T) {
		repo := new(MockRepository)
		rates := new(MockRateSource)
		repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return(sums, nil)
		rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

		totals, err := NewService(repo, rates, "").ByStatus(context.Background(), &Filter{})
		require.NoError(t, err)
		assert.Equal(t, []GroupTotal{{Status: str("paid"), TotalAmount: 15}}, totals)
	})

	t.Run("reject", func(t *testing.T) {
		repo := new(MockRepository)
		rates := new(MockRateSource)
		repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return(sums, nil)
		rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

		_, err := NewService(repo, rates, PolicyReject).ByStatus(context.Background(), &Filter{})
		var unresolvable *UnresolvableCurrencyError
		require.ErrorAs(t, err, &unresolvable)
		assert.Equal(t, "XYZ", unresolvable.Currency)
	})
}

func TestService_Errors(t *testing.T) {
	t.Run("repository", func(t *testing.T) {
		repo := new(MockRepository)
		rates := new(MockRateSource)
		repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("failed to query invoice totals: timeout"))

		_, err := NewService(repo, rates, PolicyFallback).BySupplier(context.Background(), &Filter{})
		assert.EqualError(t, err, "failed to query invoice totals: timeout")
		rates.AssertNotCalled(t, "Snapshot", mock.Anything)
	})

	t.Run("rates unavailable", func(t *testing.T) {
		repo := new(MockRepository)
		rates := new(MockRateSource)
		repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return([]GroupSum{
			sum(GroupKey{SupplierID: "SUP-1"}, "EUR", "1"),
		}, nil)
		rates.On("Snapshot", mock.Anything).Return(nil, &currency.RateProviderUnavailableError{Err: errors.New("HTTP 503")})

		_, err := NewService(repo, rates, PolicyFallback).BySupplier(context.Background(), &Filter{})
		var unavailable *currency.RateProviderUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})
}

func TestService_NoRowsSkipsRates(t *testing.T) {
	repo := new(MockRepository)
	rates := new(MockRateSource)
	repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return([]GroupSum{}, nil)

	totals, err := NewService(repo, rates, PolicyFallback).ByStatus(context.Background(), &Filter{})
	require.NoError(t, err)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
	rates.AssertNotCalled(t, "Snapshot", mock.Anything)
}

func TestService_WithRounding(t *testing.T) {
	tests := []struct {
		name string
		mode currency.RoundingMode
		want float64
	}{
		{name: "standard", mode: currency.RoundingModeStandard, want: 100.01},
		{name: "floor", mode: currency.RoundingModeFloor, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			rates := new(MockRateSource)
			repo.On("SumByDimensions", mock.Anything, mock.Anything, mock.Anything).Return([]GroupSum{
				sum(GroupKey{Status: "PAID"}, "USD", "100.005"),
			}, nil)
			rates.On("Snapshot", mock.Anything).Return(usdSnapshot(), nil)

			totals, err := NewService(repo, rates, PolicyFallback).WithRounding(tt.mode).ByStatus(context.Background(), &Filter{})
			require.NoError(t, err)
			require.Len(t, totals, 1)
			assert.Equal(t, tt.want, totals[0].TotalAmount)
		})
	}
}
