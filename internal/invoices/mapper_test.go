package invoices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow(t *testing.T, invoiceID, cost string) Row {
	t.Helper()
	table, err := ParseCSV(csvFile(csvLine(invoiceID, cost, "usd", "paid", "SUP-1")))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	return table.Rows[0]
}

func TestMapToSupplier(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	supplier, err := MapToSupplier(sampleRow(t, "INV-1", "100"), now)
	require.NoError(t, err)

	assert.Equal(t, "SUP-1", supplier.ID)
	assert.Equal(t, "EXT-SUP-1", supplier.ExternalID)
	assert.Equal(t, "Acme Ltd", supplier.Name)
	assert.Equal(t, "123456789", supplier.BankAccountNumber)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(supplier.StockValue))
	assert.True(t, decimal.RequireFromString("0.25").Equal(supplier.WithholdingTax))
	assert.Equal(t, now, supplier.CreatedAt)
	assert.Equal(t, now, supplier.UpdatedAt)
}

func TestMapToSupplier_Errors(t *testing.T) {
	tests := []struct {
		name      string
		column    string
		value     string
		wantField string
	}{
		{name: "missing id", column: ColSupplierInternalID, value: "", wantField: ColSupplierInternalID},
		{name: "bad stock value", column: ColSupplierStockValue, value: "lots", wantField: ColSupplierStockValue},
		{name: "empty tax", column: ColSupplierTax, value: "", wantField: ColSupplierTax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := sampleRow(t, "INV-1", "100")
			row.Fields[tt.column] = tt.value

			_, err := MapToSupplier(row, time.Now())
			var fieldErr *FieldParseError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.wantField, fieldErr.Field)
		})
	}
}

func TestMapToInvoice(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	invoice, err := MapToInvoice(sampleRow(t, "INV-9", "250.75"), "SUP-1", now)
	require.NoError(t, err)

	assert.Equal(t, "INV-9", invoice.ID)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), invoice.Date)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), invoice.DueDate)
	assert.True(t, decimal.RequireFromString("250.75").Equal(invoice.Cost))
	assert.Equal(t, "USD", invoice.Currency)
	assert.Equal(t, "PAID", invoice.Status)
	assert.Equal(t, "SUP-1", invoice.SupplierID)
}

func TestParseDayMonthYear(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{value: "1/2/2024", want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{value: "29/02/2024", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{value: "31/12/1999", want: time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)},
		{value: "29/02/2023", wantErr: true},
		{value: "32/01/2024", wantErr: true},
		{value: "01/13/2024", wantErr: true},
		{value: "2024-01-01", wantErr: true},
		{value: "", wantErr: true},
		{value: "1/1/0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			row := Row{Fields: map[string]string{ColInvoiceDate: tt.value}}
			got, err := parseDayMonthYear(row, ColInvoiceDate)
			if tt.wantErr {
				var fieldErr *FieldParseError
				assert.ErrorAs(t, err, &fieldErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldParseError_Message(t *testing.T) {
	row := sampleRow(t, "INV-1", "abc")
	_, err := MapToInvoice(row, "SUP-1", time.Now())
	require.Error(t, err)
	assert.Equal(t, `invalid invoice_cost "abc": not a decimal number`, err.Error())
}
