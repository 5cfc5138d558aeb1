package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/model"
	"sphinx_backend/pkg/apperrors"
)

const (
	userKey     = "user"
	TokenCookie = "token"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Protect requires a valid token from the Authorization header or the token cookie
// and stores the user in the request locals.
func Protect(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(TokenCookie)
		}
		if token == "" {
			return apperrors.ErrNotAuthorized
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}

// RestrictTo lets only users with one of roles through. It must run after Protect.
func RestrictTo(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.ErrNotAuthorized
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return apperrors.ErrForbidden
	}
}

// CurrentUser returns the user stored by Protect, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userKey).(*model.User)
	return user
}
