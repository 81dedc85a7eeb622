package invoices

import "strings"

const csvHeader = "invoice_id,invoice_date,invoice_due_date,invoice_cost,invoice_currency,invoice_status," +
	"supplier_internal_id,supplier_external_id,supplier_company_name,supplier_address,supplier_city," +
	"supplier_country,supplier_contact_name,supplier_phone,supplier_email,supplier_bank_code," +
	"supplier_bank_branch_code,supplier_bank_account_number,supplier_status,supplier_stock_value," +
	"supplier_withholding_tax"

// csvLine builds a data line for invoiceID with the given cost.
func csvLine(invoiceID, cost, currency, status, supplierID string) string {
	return strings.Join([]string{
		invoiceID, "01/02/2024", "15/03/2024", cost, currency, status,
		supplierID, "EXT-" + supplierID, "Acme Ltd", "1 Main St", "Lisbon",
		"PT", "Ana", "+351000", "ana@acme.test", "0033",
		"0001", "123456789", "active", "1500.50", "0.25",
	}, ",")
}

func csvFile(lines ...string) []byte {
	return []byte(csvHeader + "\n" + strings.Join(lines, "\n") + "\n")
}
