package invoices

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dayMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{1,4})$`)

// MapToSupplier builds the supplier described by row. Both timestamps are now.
func MapToSupplier(row Row, now time.Time) (*Supplier, error) {
	id := row.Get(ColSupplierInternalID)
	if id == "" {
		return nil, &FieldParseError{Field: ColSupplierInternalID, Err: errors.New("value is required")}
	}

	stockValue, err := parseDecimal(row, ColSupplierStockValue)
	if err != nil {
		return nil, err
	}
	withholdingTax, err := parseDecimal(row, ColSupplierTax)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Supplier{
		ID:                id,
		ExternalID:        row.Get(ColSupplierExternalID),
		Name:              row.Get(ColSupplierName),
		Address:           row.Get(ColSupplierAddress),
		City:              row.Get(ColSupplierCity),
		Country:           row.Get(ColSupplierCountry),
		ContactName:       row.Get(ColSupplierContact),
		Phone:             row.Get(ColSupplierPhone),
		Email:             row.Get(ColSupplierEmail),
		BankCode:          row.Get(ColSupplierBankCode),
		BankBranchCode:    row.Get(ColSupplierBranchCode),
		BankAccountNumber: row.Get(ColSupplierAccountNo),
		Status:            row.Get(ColSupplierStatus),
		StockValue:        stockValue,
		WithholdingTax:    withholdingTax,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// MapToInvoice builds the invoice described by row, owned by supplierID.
func MapToInvoice(row Row, supplierID string, now time.Time) (*Invoice, error) {
	id := row.Get(ColInvoiceID)
	if id == "" {
		return nil, &FieldParseError{Field: ColInvoiceID, Err: errors.New("value is required")}
	}

	issued, err := parseDayMonthYear(row, ColInvoiceDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDayMonthYear(row, ColInvoiceDueDate)
	if err != nil {
		return nil, err
	}
	cost, err := parseDecimal(row, ColInvoiceCost)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Invoice{
		ID:         id,
		Date:       issued,
		DueDate:    due,
		Cost:       cost,
		Currency:   strings.ToUpper(row.Get(ColInvoiceCurrency)),
		Status:     strings.ToUpper(row.Get(ColInvoiceStatus)),
		SupplierID: supplierID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func parseDecimal(row Row, column string) (decimal.Decimal, error) {
	value := row.Get(column)
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, &FieldParseError{Field: column, Value: value, Err: errors.New("not a decimal number")}
	}
	return d, nil
}

// parseDayMonthYear reads day/month/year into a UTC calendar date.
func parseDayMonthYear(row Row, column string) (time.Time, error) {
	value := row.Get(column)
	m := dayMonthYear.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, &FieldParseError{Field: column, Value: value, Err: errors.New("expected day/month/year")}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if year < 1 || t.Day() != day || int(t.Month()) != month {
		return time.Time{}, &FieldParseError{Field: column, Value: value, Err: fmt.Errorf("no such date")}
	}
	return t, nil
}
