package invoices

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/pkg/logger"
)

// Service imports invoice uploads
type Service struct {
	repo     RepositoryInterface
	archiver Archiver
	now      func() time.Time
}

// NewService creates a new import service. archiver may be nil.
func NewService(repo RepositoryInterface, archiver Archiver) *Service {
	return &Service{repo: repo, archiver: archiver, now: time.Now}
}

// Import upserts every row of upload in file order. Row failures are
// collected in the result; an error is returned only when the upload is
// rejected or the file cannot be parsed at all.
func (s *Service) Import(ctx context.Context, upload *Upload) (*ImportResult, error) {
	start := time.Now()
	log := logger.WithContext(ctx)

	if err := validateUpload(upload); err != nil {
		importFilesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	s.archive(ctx, upload)

	table, err := ParseCSV(upload.Data)
	if err != nil {
		importFilesTotal.WithLabelValues("malformed").Inc()
		return nil, err
	}
	if missing := missingColumns(table); len(missing) > 0 {
		importFilesTotal.WithLabelValues("malformed").Inc()
		return nil, &MalformedInputError{Msg: "missing required columns: " + strings.Join(missing, ", ")}
	}

	result := &ImportResult{Rows: len(table.Rows), Errors: []RowError{}}
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, RowError{Line: row.Line, InvoiceID: row.Get(ColInvoiceID), Err: err})
			continue
		}

		if err := s.importRow(ctx, row); err != nil {
			rowErr := RowError{Line: row.Line, InvoiceID: row.Get(ColInvoiceID), Err: err}
			result.Errors = append(result.Errors, rowErr)
			log.Debug("row rejected", zap.Int("line", row.Line), zap.String("error", rowErr.String()))
			continue
		}
		result.Upserted++
	}

	importRowsTotal.WithLabelValues("upserted").Add(float64(result.Upserted))
	importRowsTotal.WithLabelValues("failed").Add(float64(len(result.Errors)))
	importFilesTotal.WithLabelValues("processed").Inc()
	importDuration.Observe(time.Since(start).Seconds())

	log.Info("invoice upload imported",
		zap.String("file", upload.FileName),
		zap.Int("rows", result.Rows),
		zap.Int("upserted", result.Upserted),
		zap.Int("failed", len(result.Errors)),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// importRow maps the whole row before writing so a rejected row writes
// nothing. The supplier is written before its invoice.
func (s *Service) importRow(ctx context.Context, row Row) error {
	now := s.now()

	supplier, err := MapToSupplier(row, now)
	if err != nil {
		return err
	}
	invoice, err := MapToInvoice(row, supplier.ID, now)
	if err != nil {
		return err
	}

	if err := s.repo.UpsertSupplier(ctx, supplier); err != nil {
		return err
	}
	return s.repo.UpsertInvoice(ctx, invoice)
}

func (s *Service) archive(ctx context.Context, upload *Upload) {
	if s.archiver == nil {
		return
	}

	key, err := s.archiver.Archive(ctx, upload)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to archive upload",
			zap.String("file", upload.FileName),
			zap.Error(err),
		)
		return
	}
	logger.WithContext(ctx).Info("upload archived", zap.String("file", upload.FileName), zap.String("key", key))
}

func validateUpload(upload *Upload) error {
	if upload == nil {
		return &InvalidUploadError{Reason: "no file uploaded"}
	}
	if !strings.EqualFold(filepath.Ext(upload.FileName), ".csv") {
		return &InvalidUploadError{Reason: fmt.Sprintf("file must be a CSV, got %q", upload.FileName)}
	}
	return nil
}

func missingColumns(table *Table) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
