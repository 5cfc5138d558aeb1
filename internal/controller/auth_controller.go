package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/utils/jwt"
)

var (
	authService  *service.AuthService
	cookieSecure bool
)

func InitAuthController(svc *service.AuthService, secureCookie bool) {
	authService = svc
	cookieSecure = secureCookie
}

// sendToken answers with the token and also sets it as an http-only cookie.
func sendToken(c *fiber.Ctx, status int, user *model.User, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(jwt.TTL()),
		HTTPOnly: true,
		Secure:   cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"data":    user,
	})
}

func Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := bindBody(c, &input); err != nil {
		return err
	}
	user, token, err := authService.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return sendToken(c, fiber.StatusCreated, user, token)
}

func Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := bindBody(c, &input); err != nil {
		return err
	}
	user, token, err := authService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return sendToken(c, fiber.StatusOK, user, token)
}

// Logout overwrites the cookie with a short-lived placeholder.
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   cookieSecure,
	})
	return sendData(c, fiber.Map{})
}

func GetMe(c *fiber.Ctx) error {
	user, err := authService.Me(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return sendData(c, user)
}

func UpdateDetails(c *fiber.Ctx) error {
	var input service.DetailsInput
	if err := bindBody(c, &input); err != nil {
		return err
	}
	user, err := authService.UpdateDetails(c.UserContext(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		return err
	}
	return sendData(c, user)
}

func UpdatePassword(c *fiber.Ctx) error {
	var input service.PasswordInput
	if err := bindBody(c, &input); err != nil {
		return err
	}
	user, token, err := authService.UpdatePassword(c.UserContext(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		return err
	}
	return sendToken(c, fiber.StatusOK, user, token)
}
