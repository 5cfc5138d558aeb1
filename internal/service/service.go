// Package service holds the business rules behind the HTTP handlers: submission,
// admin listing and updates, slug derivation, publish rules and notifications.
// Handlers call services; services call GORM directly.
package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sphinx_backend/pkg/apperrors"
)

// RequestMeta is the client metadata stamped on public submissions.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// findByID loads dest by primary key, mapping a miss to a NotFoundError naming the id.
func findByID(ctx context.Context, db *gorm.DB, resource string, id uint, dest interface{}) error {
	err := db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, id)
	}
	if err != nil {
		return fmt.Errorf("find %s %d: %w", resource, id, err)
	}
	return nil
}

// mustExist fails with NotFoundError when no row of model has the id.
func mustExist(ctx context.Context, db *gorm.DB, resource string, model interface{}, id uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check %s %d: %w", resource, id, err)
	}
	if count == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}

// checkRefs verifies that every id refers to an existing row of table.
func checkRefs(ctx context.Context, db *gorm.DB, table, field string, ids []uint) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Table(table).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("check %s references: %w", table, err)
	}
	if int(count) != len(ids) {
		return apperrors.NewValidation(field, fmt.Sprintf("%s references a record that does not exist", field))
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// checkAssignee verifies an assignedTo reference.
func checkAssignee(ctx context.Context, db *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	return checkRefs(ctx, db, "users", "assignedTo", []uint{*id})
}

// dbErr maps storage errors into the taxonomy and wraps the rest with op.
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := apperrors.FromDB(err)
	var dup *apperrors.DuplicateKeyError
	if errors.As(mapped, &dup) {
		return dup
	}
	return fmt.Errorf("%s: %w", op, err)
}
