package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphinx_backend/pkg/apperrors"
)

type address struct {
	ZipCode string `json:"zipCode" validate:"required,zip"`
}

type sample struct {
	Name    string  `json:"name" validate:"required,max=5"`
	Email   string  `json:"email" validate:"required,email_address"`
	Phone   string  `json:"phone" validate:"omitempty,phone"`
	Kind    string  `json:"kind" validate:"required,oneof=small large"`
	Address address `json:"address"`
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(sample{Name: "toolong", Email: "nope", Phone: "abc", Kind: "huge", Address: address{ZipCode: "1234"}})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 5)

	byField := map[string]string{}
	for _, f := range verr.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "Name cannot be more than 5 characters", byField["name"])
	assert.Equal(t, "Please provide a valid email address", byField["email"])
	assert.Equal(t, "Please provide a valid phone number", byField["phone"])
	assert.Equal(t, "Kind must be one of: small, large", byField["kind"])
	assert.Equal(t, "Please provide a valid ZIP code", byField["address.zipCode"])
}

func TestStructPasses(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "Ann", Email: "ann@x.com", Kind: "small", Address: address{ZipCode: "12345-6789"}}))
}

func TestPatterns(t *testing.T) {
	assert.True(t, EmailPattern.MatchString("jane.doe@example.co"))
	assert.False(t, EmailPattern.MatchString("jane@localhost"))
	assert.True(t, PhonePattern.MatchString("(555) 123-4567"))
	assert.True(t, PhonePattern.MatchString("+1 555.123.4567"))
	assert.False(t, PhonePattern.MatchString("call me"))
	assert.True(t, ZipPattern.MatchString("90210"))
	assert.False(t, ZipPattern.MatchString("9021"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Zip code", Label("zipCode"))
	assert.Equal(t, "Name", Label("name"))
}

func TestDetectImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	mtype, err := DetectImage(bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mtype)

	_, err = DetectImage(bytes.NewReader([]byte("just some text")))
	assert.Equal(t, ErrFileType, err)
}

func TestUploadMessages(t *testing.T) {
	assert.Equal(t, "File size too large. Maximum size is 5MB", ErrFileSize(MaxImageSize).Error())
	assert.Equal(t, "Too many files. Maximum is 5", ErrTooManyFiles(5).Error())
}
