package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sphinx_backend/pkg/apperrors"
	"sphinx_backend/pkg/utils/slugify"
)

// ensureUnique fails with a DuplicateKeyError when another row already holds value in column.
// The unique index still backs this check; dbErr maps a racing insert to the same error.
func ensureUnique(ctx context.Context, db *gorm.DB, model interface{}, column, value string, excludeID uint) error {
	var count int64
	q := db.WithContext(ctx).Model(model).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check unique %s: %w", column, err)
	}
	if count > 0 {
		return &apperrors.DuplicateKeyError{Field: column, Value: value}
	}
	return nil
}

// deriveSlug computes the slug of title. A title with no usable characters is a validation failure.
func deriveSlug(title, field string) (string, error) {
	slug := slugify.Make(title)
	if slug == "" {
		return "", apperrors.NewValidation(field, fmt.Sprintf("%s must contain letters or digits", field))
	}
	return slug, nil
}
