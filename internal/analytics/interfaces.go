package analytics

import (
	"context"

	"github.com/richxcame/invoice-insights/internal/currency"
)

// RepositoryInterface defines the grouped-sum query used by the engine
type RepositoryInterface interface {
	SumByDimensions(ctx context.Context, dims []Dimension, filter *Filter) ([]GroupSum, error)
}

// RateSource provides the current exchange rate snapshot.
type RateSource interface {
	Snapshot(ctx context.Context) (*currency.Snapshot, error)
}
