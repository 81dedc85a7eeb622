package invoices

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles supplier and invoice persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new invoices repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSupplier inserts the supplier or replaces every column of the
// existing row with the same id.
func (r *Repository) UpsertSupplier(ctx context.Context, s *Supplier) error {
	query := `
		INSERT INTO suppliers (
			id, external_id, name, address, city, country, contact_name, phone, email,
			bank_code, bank_branch_code, bank_account_number, status, stock_value,
			withholding_tax, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			contact_name = EXCLUDED.contact_name,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			bank_code = EXCLUDED.bank_code,
			bank_branch_code = EXCLUDED.bank_branch_code,
			bank_account_number = EXCLUDED.bank_account_number,
			status = EXCLUDED.status,
			stock_value = EXCLUDED.stock_value,
			withholding_tax = EXCLUDED.withholding_tax,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ExternalID, s.Name, s.Address, s.City, s.Country, s.ContactName, s.Phone, s.Email,
		s.BankCode, s.BankBranchCode, s.BankAccountNumber, s.Status, s.StockValue,
		s.WithholdingTax, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert supplier %s: %w", s.ID, err)
	}
	return nil
}

// UpsertInvoice inserts the invoice or replaces the existing row with the same id.
func (r *Repository) UpsertInvoice(ctx context.Context, inv *Invoice) error {
	query := `
		INSERT INTO invoices (
			id, date, due_date, cost, currency, status, supplier_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			due_date = EXCLUDED.due_date,
			cost = EXCLUDED.cost,
			currency = EXCLUDED.currency,
			status = EXCLUDED.status,
			supplier_id = EXCLUDED.supplier_id,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.Date, inv.DueDate, inv.Cost, inv.Currency, inv.Status, inv.SupplierID,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert invoice %s: %w", inv.ID, err)
	}
	return nil
}
