package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"sphinx_backend/pkg/apperrors"
)

const MaxImageSize = 5 * 1024 * 1024 // 5MB

var ErrFileType = &apperrors.UploadError{Message: "Only image files are allowed!"}

// ErrFileSize reports a file over the limit.
func ErrFileSize(limit int64) *apperrors.UploadError {
	return &apperrors.UploadError{
		Message: fmt.Sprintf("File size too large. Maximum size is %dMB", limit/(1024*1024)),
	}
}

// ErrTooManyFiles reports more files than a field accepts.
func ErrTooManyFiles(max int) *apperrors.UploadError {
	return &apperrors.UploadError{Message: fmt.Sprintf("Too many files. Maximum is %d", max)}
}

// ValidateImage checks the size limit and sniffs the content to make sure it is an image.
// The client-declared Content-Type is not trusted.
func ValidateImage(file *multipart.FileHeader, limit int64) (string, error) {
	if file == nil {
		return "", &apperrors.UploadError{Message: "No file provided"}
	}
	if limit <= 0 {
		limit = MaxImageSize
	}
	if file.Size > limit {
		return "", ErrFileSize(limit)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return DetectImage(src)
}

// DetectImage returns the sniffed MIME type when r holds an image.
func DetectImage(r io.Reader) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrFileType
	}
	return mtype.String(), nil
}
