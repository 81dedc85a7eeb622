package invoices

import "context"

// RepositoryInterface defines the persistence operations used by the importer
type RepositoryInterface interface {
	UpsertSupplier(ctx context.Context, supplier *Supplier) error
	UpsertInvoice(ctx context.Context, invoice *Invoice) error
}

// Archiver keeps a copy of accepted uploads.
type Archiver interface {
	Archive(ctx context.Context, upload *Upload) (string, error)
}
