package invoices

import (
	"bytes"
	"context"
	"time"

	"github.com/richxcame/invoice-insights/pkg/storage"
)

// StorageArchiver writes raw uploads to object storage.
type StorageArchiver struct {
	store  storage.Storage
	prefix string
	now    func() time.Time
}

// NewStorageArchiver archives under prefix.
func NewStorageArchiver(store storage.Storage, prefix string) *StorageArchiver {
	return &StorageArchiver{store: store, prefix: prefix, now: time.Now}
}

// Archive stores the upload bytes and returns the object key.
func (a *StorageArchiver) Archive(ctx context.Context, upload *Upload) (string, error) {
	key := storage.GenerateArchiveKey(a.prefix, upload.FileName, a.now())

	result, err := a.store.Upload(ctx, key, bytes.NewReader(upload.Data), int64(len(upload.Data)),
		storage.GetMimeTypeFromExtension(upload.FileName))
	if err != nil {
		return "", err
	}
	return result.Key, nil
}
