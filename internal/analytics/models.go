package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/richxcame/invoice-insights/pkg/validation"
)

// Dimension is a grouping key of an aggregation.
type Dimension string

const (
	DimensionStatus   Dimension = "status"
	DimensionSupplier Dimension = "supplier"
	DimensionMonth    Dimension = "month"
	DimensionYear     Dimension = "year"
)

// column returns the vw_invoices column backing d.
func (d Dimension) column() string {
	switch d {
	case DimensionStatus:
		return "status"
	case DimensionSupplier:
		return "supplier_id"
	case DimensionMonth:
		return "month"
	case DimensionYear:
		return "year"
	}
	return ""
}

// Group-by options accepted on the query string.
const (
	GroupByStatus   = "status"
	GroupBySupplier = "supplier"
	GroupByDate     = "date"
)

// dimensionsFor expands query group-by options to dimensions, in request
// order, dropping repeats. "date" is year then month.
func dimensionsFor(groupBy []string) []Dimension {
	var dims []Dimension
	seen := map[Dimension]bool{}
	add := func(d Dimension) {
		if !seen[d] {
			seen[d] = true
			dims = append(dims, d)
		}
	}

	for _, g := range groupBy {
		switch g {
		case GroupByStatus:
			add(DimensionStatus)
		case GroupBySupplier:
			add(DimensionSupplier)
		case GroupByDate:
			add(DimensionYear)
			add(DimensionMonth)
		}
	}
	return dims
}

// FilterQuery is the raw query string of an aggregation request.
type FilterQuery struct {
	From       string   `form:"from" validate:"omitempty,date_or_rfc3339"`
	To         string   `form:"to" validate:"omitempty,date_or_rfc3339"`
	Status     string   `form:"status" validate:"omitempty,max=50"`
	SupplierID []string `form:"supplierId" validate:"omitempty,dive,max=100"`
	GroupBy    []string `form:"groupBy" validate:"omitempty,dive,oneof=status supplier date"`
}

// Filter is a normalized aggregation predicate. Nil bounds are open.
type Filter struct {
	From        *time.Time
	To          *time.Time
	Status      string
	SupplierIDs []string
	GroupBy     []Dimension
}

// Normalize validates q and converts it into a Filter. Comma separated
// supplierId and groupBy values are split, blanks dropped and repeats
// removed keeping the first occurrence.
func (q FilterQuery) Normalize() (*Filter, error) {
	q.SupplierID = splitList(q.SupplierID)
	q.GroupBy = splitList(q.GroupBy)
	q.Status = strings.TrimSpace(q.Status)

	if err := validation.ValidateStruct(q); err != nil {
		return nil, err
	}

	f := &Filter{
		Status:      strings.ToUpper(q.Status),
		SupplierIDs: q.SupplierID,
		GroupBy:     dimensionsFor(q.GroupBy),
	}

	if q.From != "" {
		from, _ := validation.ParseDate(q.From)
		f.From = &from
	}
	if q.To != "" {
		to, _ := validation.ParseDate(q.To)
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, &validation.ValidationError{Errors: map[string]string{
			"from": fmt.Sprintf("from (%s) must not be after to (%s)", q.From, q.To),
		}}
	}

	return f, nil
}

func splitList(values []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// GroupKey holds the dimension values of one group. Fields of dimensions
// that were not requested are zero.
type GroupKey struct {
	Status     string
	SupplierID string
	Month      int
	Year       int
}

// GroupSum is one grouped sum in a single currency.
type GroupSum struct {
	Key      GroupKey
	Currency string
	Sum      decimal.Decimal
}

// GroupTotal is one normalized result row. Only requested keys are set.
type GroupTotal struct {
	Status      *string `json:"status,omitempty"`
	SupplierID  *string `json:"supplierId,omitempty"`
	Month       *string `json:"month,omitempty"`
	TotalAmount float64 `json:"totalAmount"`
}
