package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	Configure("test-secret", time.Hour)

	token, err := GenerateToken(7, "admin@example.com", "admin")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	Configure("one-secret", time.Hour)
	token, err := GenerateToken(1, "a@b.com", "user")
	require.NoError(t, err)

	Configure("other-secret", time.Hour)
	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateExpired(t *testing.T) {
	Configure("test-secret", time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
