package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestValidationErrorJoinsEveryField(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("name", "Please provide your name")
	verr.Add("email", "Please provide a valid email address")

	err := verr.OrNil()
	require.Error(t, err)
	assert.Equal(t, "Please provide your name, Please provide a valid email address", err.Error())
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Duplicate field value entered for slug. Please use another value.",
		(&DuplicateKeyError{Field: "slug"}).Error())
	assert.Equal(t, "Invalid id: abc", (&CastError{Path: "id", Value: "abc"}).Error())
	assert.Equal(t, "Contact not found with id 42", NotFound("Contact", 42).Error())
}

func TestFromDB(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: services.slug (2067)"), "slug"},
		{"postgres detail", errors.New(`ERROR: duplicate key value violates unique constraint "idx_services_name" (SQLSTATE 23505) Key (name)=(Lawn Care) already exists.`), "name"},
		{"postgres index only", errors.New(`ERROR: duplicate key value violates unique constraint "idx_portfolios_slug" (SQLSTATE 23505)`), "slug"},
		{"wrapped", fmt.Errorf("create: %w", errors.New("UNIQUE constraint failed: blogs.slug")), "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dup *DuplicateKeyError
			require.ErrorAs(t, FromDB(tt.err), &dup)
			assert.Equal(t, tt.field, dup.Field)
		})
	}

	var nf *NotFoundError
	assert.ErrorAs(t, FromDB(gorm.ErrRecordNotFound), &nf)

	plain := errors.New("connection reset")
	assert.Same(t, plain, FromDB(plain))
	assert.NoError(t, FromDB(nil))
}
