// Package apperrors defines the error kinds that handlers and services return.
// The HTTP error translator maps each kind to a status code and message.
package apperrors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// FieldError is one violated constraint on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

// Add appends a field violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field was added.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidation builds a ValidationError with a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("Duplicate field value entered for %s. Please use another value.", e.Field)
}

// CastError reports a malformed id or a value of the wrong type.
type CastError struct {
	Path  string
	Value string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Invalid %s: %s", e.Path, e.Value)
}

type NotFoundError struct {
	Resource string
	Key      string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s %v", e.Resource, e.Key, e.Value)
}

// NotFound is a shortcut for lookups by id.
func NotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: "id", Value: id}
}

type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// UploadError covers size, count and MIME violations on multipart uploads.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }

var (
	ErrNotAuthorized = &AuthError{Message: "Not authorized to access this route"}
	ErrForbidden     = &ForbiddenError{Message: "You do not have permission to perform this action"}
)

var (
	sqliteUnique   = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)
	postgresUnique = regexp.MustCompile(`duplicate key value violates unique constraint "([^"]+)"`)
	postgresDetail = regexp.MustCompile(`Key \((\w+)\)=\(([^)]*)\)`)
)

// FromDB translates storage errors into the taxonomy. Unknown errors are returned unchanged.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: "Resource", Key: "id", Value: "?"}
	}

	msg := err.Error()
	if m := sqliteUnique.FindStringSubmatch(msg); m != nil {
		return &DuplicateKeyError{Field: m[1]}
	}
	if m := postgresDetail.FindStringSubmatch(msg); m != nil {
		return &DuplicateKeyError{Field: m[1], Value: m[2]}
	}
	if m := postgresUnique.FindStringSubmatch(msg); m != nil {
		return &DuplicateKeyError{Field: fieldFromIndex(m[1])}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateKeyError{Field: "value"}
	}
	return err
}

// fieldFromIndex maps GORM's idx_<table>_<column> naming back to the column.
func fieldFromIndex(index string) string {
	parts := strings.Split(strings.TrimPrefix(index, "idx_"), "_")
	if len(parts) < 2 {
		return index
	}
	return parts[len(parts)-1]
}
