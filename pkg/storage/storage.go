package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadResult contains the result of an upload operation
type UploadResult struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Storage stores opaque objects under a key.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error)
}

// GenerateArchiveKey builds <prefix>/<yyyy>/<mm>/<dd>/<id>_<filename> for a
// raw upload received at receivedAt. The filename is reduced to its base name.
func GenerateArchiveKey(prefix, filename string, receivedAt time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	name = strings.ReplaceAll(name, " ", "_")

	key := fmt.Sprintf("%s/%s_%s",
		receivedAt.UTC().Format("2006/01/02"),
		uuid.New().String()[:8],
		name,
	)

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// GetMimeTypeFromExtension returns the MIME type for the archived file types
func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
