package invoices

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CSV columns of an invoice upload.
const (
	ColInvoiceID          = "invoice_id"
	ColInvoiceDate        = "invoice_date"
	ColInvoiceDueDate     = "invoice_due_date"
	ColInvoiceCost        = "invoice_cost"
	ColInvoiceCurrency    = "invoice_currency"
	ColInvoiceStatus      = "invoice_status"
	ColSupplierInternalID = "supplier_internal_id"
	ColSupplierExternalID = "supplier_external_id"
	ColSupplierName       = "supplier_company_name"
	ColSupplierAddress    = "supplier_address"
	ColSupplierCity       = "supplier_city"
	ColSupplierCountry    = "supplier_country"
	ColSupplierContact    = "supplier_contact_name"
	ColSupplierPhone      = "supplier_phone"
	ColSupplierEmail      = "supplier_email"
	ColSupplierBankCode   = "supplier_bank_code"
	ColSupplierBranchCode = "supplier_bank_branch_code"
	ColSupplierAccountNo  = "supplier_bank_account_number"
	ColSupplierStatus     = "supplier_status"
	ColSupplierStockValue = "supplier_stock_value"
	ColSupplierTax        = "supplier_withholding_tax"
)

// RequiredColumns lists every column an upload header must contain.
var RequiredColumns = []string{
	ColInvoiceID, ColInvoiceDate, ColInvoiceDueDate, ColInvoiceCost, ColInvoiceCurrency, ColInvoiceStatus,
	ColSupplierInternalID, ColSupplierExternalID, ColSupplierName, ColSupplierAddress, ColSupplierCity,
	ColSupplierCountry, ColSupplierContact, ColSupplierPhone, ColSupplierEmail, ColSupplierBankCode,
	ColSupplierBranchCode, ColSupplierAccountNo, ColSupplierStatus, ColSupplierStockValue, ColSupplierTax,
}

// Supplier is keyed by the internal id carried in the upload.
type Supplier struct {
	ID                string          `json:"id" db:"id"`
	ExternalID        string          `json:"externalId" db:"external_id"`
	Name              string          `json:"name" db:"name"`
	Address           string          `json:"address" db:"address"`
	City              string          `json:"city" db:"city"`
	Country           string          `json:"country" db:"country"`
	ContactName       string          `json:"contactName" db:"contact_name"`
	Phone             string          `json:"phone" db:"phone"`
	Email             string          `json:"email" db:"email"`
	BankCode          string          `json:"bankCode" db:"bank_code"`
	BankBranchCode    string          `json:"bankBranchCode" db:"bank_branch_code"`
	BankAccountNumber string          `json:"bankAccountNumber" db:"bank_account_number"`
	Status            string          `json:"status" db:"status"`
	StockValue        decimal.Decimal `json:"stockValue" db:"stock_value"`
	WithholdingTax    decimal.Decimal `json:"withholdingTax" db:"withholding_tax"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// Invoice belongs to exactly one supplier.
type Invoice struct {
	ID         string          `json:"id" db:"id"`
	Date       time.Time       `json:"date" db:"date"`
	DueDate    time.Time       `json:"dueDate" db:"due_date"`
	Cost       decimal.Decimal `json:"cost" db:"cost"`
	Currency   string          `json:"currency" db:"currency"`
	Status     string          `json:"status" db:"status"`
	SupplierID string          `json:"supplierId" db:"supplier_id"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// Upload is a file received for import.
type Upload struct {
	FileName string
	Data     []byte
}

// RowError records why one row was not imported.
type RowError struct {
	Line      int
	InvoiceID string
	Err       error
}

func (e RowError) String() string {
	if e.InvoiceID == "" {
		return fmt.Sprintf("Row (line %d): %v", e.Line, e.Err)
	}
	return fmt.Sprintf("Row %s: %v", e.InvoiceID, e.Err)
}

// ImportResult is the outcome of one upload. Errors keep file order.
type ImportResult struct {
	Rows     int
	Upserted int
	Errors   []RowError
}

// ErrorMessages renders the row errors as "Row <id>: <cause>".
func (r *ImportResult) ErrorMessages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.String()
	}
	return out
}

// UploadResponse is the API response for an upload
type UploadResponse struct {
	InvoicesUpserted int      `json:"invoicesUpserted"`
	Errors           []string `json:"errors"`
}
