package middleware

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"sphinx_backend/internal/metrics"
	"sphinx_backend/pkg/apperrors"
	"sphinx_backend/pkg/storage"
	"sphinx_backend/pkg/utils/validation"
)

const uploadsKey = "uploads"

// UploadField names a multipart file field and how many files it accepts.
type UploadField struct {
	Name     string
	MaxCount int
}

// Uploader validates and stores multipart image uploads.
type Uploader struct {
	store   storage.Storage
	maxSize int64
	log     *logrus.Entry
	now     func() time.Time
}

func NewUploader(store storage.Storage, maxSize int64, log *logrus.Entry) *Uploader {
	if maxSize <= 0 {
		maxSize = validation.MaxImageSize
	}
	return &Uploader{store: store, maxSize: maxSize, log: log, now: time.Now}
}

// Fields returns a handler that stores the files of the given fields and exposes their
// URLs through Uploaded. Non-multipart requests pass through untouched. Every file is
// checked before any is stored, so a rejected request leaves nothing behind.
func (u *Uploader) Fields(fields ...UploadField) fiber.Handler {
	allowed := make(map[string]int, len(fields))
	for _, f := range fields {
		allowed[f.Name] = f.MaxCount
	}

	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			return c.Next()
		}
		form, err := c.MultipartForm()
		if err != nil {
			return &apperrors.UploadError{Message: "Invalid multipart form"}
		}

		type pending struct {
			field string
			file  *multipart.FileHeader
			mime  string
		}
		var queue []pending
		for field, files := range form.File {
			max, ok := allowed[field]
			if !ok {
				return &apperrors.UploadError{Message: fmt.Sprintf("Unexpected field: %s", field)}
			}
			if len(files) > max {
				return validation.ErrTooManyFiles(max)
			}
			for _, fh := range files {
				mime, err := validation.ValidateImage(fh, u.maxSize)
				if err != nil {
					return err
				}
				queue = append(queue, pending{field: field, file: fh, mime: mime})
			}
		}

		urls := make(map[string][]string, len(queue))
		var saved []string
		for _, p := range queue {
			url, err := u.save(c.UserContext(), p.field, p.file, p.mime)
			if err != nil {
				u.cleanup(saved)
				return err
			}
			saved = append(saved, url)
			urls[p.field] = append(urls[p.field], url)
			metrics.RecordUpload(p.field)
		}

		c.Locals(uploadsKey, urls)
		if err := c.Next(); err != nil {
			// the record was not written, so its files are orphans
			u.cleanup(saved)
			return err
		}
		return nil
	}
}

func (u *Uploader) save(ctx context.Context, field string, fh *multipart.FileHeader, mime string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	return u.store.Save(ctx, storage.FileName(field, fh.Filename, u.now()), mime, src)
}

func (u *Uploader) cleanup(urls []string) {
	for _, url := range urls {
		if err := u.store.Delete(context.Background(), url); err != nil {
			u.log.WithError(err).WithField("url", url).Warn("could not remove orphaned upload")
		}
	}
}

// Uploaded returns the stored URLs of field, in upload order.
func Uploaded(c *fiber.Ctx, field string) []string {
	urls, _ := c.Locals(uploadsKey).(map[string][]string)
	return urls[field]
}
