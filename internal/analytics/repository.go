package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Repository runs grouped-sum queries over vw_invoices
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new analytics repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// orderRank fixes the persistence ordering: status, then year and month,
// then supplier id.
var orderRank = map[Dimension]int{
	DimensionStatus:   0,
	DimensionYear:     1,
	DimensionMonth:    2,
	DimensionSupplier: 3,
}

// buildFilters constructs the WHERE clause and args for filter
func buildFilters(filter *Filter) (string, []interface{}) {
	where := []string{"1=1"}
	var args []interface{}
	argIdx := 1

	if filter != nil {
		if filter.From != nil {
			where = append(where, fmt.Sprintf("due_date >= $%d", argIdx))
			args = append(args, *filter.From)
			argIdx++
		}
		if filter.To != nil {
			where = append(where, fmt.Sprintf("due_date <= $%d", argIdx))
			args = append(args, *filter.To)
			argIdx++
		}
		if filter.Status != "" {
			where = append(where, fmt.Sprintf("status = $%d", argIdx))
			args = append(args, filter.Status)
			argIdx++
		}
		if len(filter.SupplierIDs) > 0 {
			where = append(where, fmt.Sprintf("supplier_id = ANY($%d)", argIdx))
			args = append(args, pq.Array(filter.SupplierIDs))
		}
	}

	return strings.Join(where, " AND "), args
}

// buildSumQuery groups by dims plus currency and sums cost
func buildSumQuery(dims []Dimension, filter *Filter) (string, []interface{}) {
	groupCols := make([]string, 0, len(dims)+1)
	for _, d := range dims {
		groupCols = append(groupCols, d.column())
	}
	groupCols = append(groupCols, "currency")

	ordered := append([]Dimension(nil), dims...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && orderRank[ordered[j]] < orderRank[ordered[j-1]]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	orderCols := make([]string, 0, len(ordered)+1)
	for _, d := range ordered {
		orderCols = append(orderCols, d.column()+" ASC")
	}
	orderCols = append(orderCols, "currency ASC")

	whereClause, args := buildFilters(filter)
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(SUM(cost), 0)
		FROM vw_invoices
		WHERE %s
		GROUP BY %s
		ORDER BY %s`,
		strings.Join(groupCols, ", "),
		whereClause,
		strings.Join(groupCols, ", "),
		strings.Join(orderCols, ", "),
	)
	return query, args
}

// SumByDimensions returns the summed cost per dims and currency
func (r *Repository) SumByDimensions(ctx context.Context, dims []Dimension, filter *Filter) ([]GroupSum, error) {
	query, args := buildSumQuery(dims, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice totals: %w", err)
	}
	defer rows.Close()

	var sums []GroupSum
	for rows.Next() {
		var gs GroupSum
		var status, supplierID sql.NullString
		var month, year sql.NullInt64

		dest := make([]interface{}, 0, len(dims)+2)
		for _, d := range dims {
			switch d {
			case DimensionStatus:
				dest = append(dest, &status)
			case DimensionSupplier:
				dest = append(dest, &supplierID)
			case DimensionMonth:
				dest = append(dest, &month)
			case DimensionYear:
				dest = append(dest, &year)
			}
		}
		dest = append(dest, &gs.Currency, &gs.Sum)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan invoice totals: %w", err)
		}

		gs.Key = GroupKey{
			Status:     status.String,
			SupplierID: supplierID.String,
			Month:      int(month.Int64),
			Year:       int(year.Int64),
		}
		sums = append(sums, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoice totals: %w", err)
	}

	return sums, nil
}
