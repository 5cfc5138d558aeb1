package jwt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

var (
	mu        sync.RWMutex
	jwtSecret = []byte("sphinx_landscapes_secret_key")
	jwtTTL    = 7 * 24 * time.Hour
)

// Configure sets the signing secret and token lifetime. Called once at startup.
func Configure(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(secret)
	if ttl > 0 {
		jwtTTL = ttl
	}
}

// TTL returns the configured token lifetime.
func TTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return jwtTTL
}

func GenerateToken(userID uint, email, role string) (string, error) {
	mu.RLock()
	secret, ttl := jwtSecret, jwtTTL
	mu.RUnlock()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	return token.SignedString(secret)
}

// ValidateToken returns ErrTokenExpired or ErrTokenInvalid on failure.
func ValidateToken(tokenString string) (*Claims, error) {
	mu.RLock()
	secret := jwtSecret
	mu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}
