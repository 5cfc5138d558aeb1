// Package storage keeps uploaded images on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"sphinx_backend/pkg/config"
)

// Storage saves uploads and returns the URL they are served from.
type Storage interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// New builds the driver selected in cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocal(cfg.UploadDir, "/uploads")
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// FileName builds <field>-<unixMillis>-<random><ext> from the form field and the
// client file name. Only the extension of the client name is kept.
func FileName(field, original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s%s", field, now.UnixMilli(), random, ext)
}

// keyFromURL returns the object name at the end of a stored URL.
func keyFromURL(prefix, url string) (string, bool) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return "", false
	}
	return key, true
}
