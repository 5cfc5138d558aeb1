package middleware

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"sphinx_backend/pkg/apperrors"
)

// Status maps an error to its HTTP status and client message.
func Status(err error) (int, string) {
	var (
		validation *apperrors.ValidationError
		duplicate  *apperrors.DuplicateKeyError
		cast       *apperrors.CastError
		notFound   *apperrors.NotFoundError
		auth       *apperrors.AuthError
		forbidden  *apperrors.ForbiddenError
		upload     *apperrors.UploadError
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, validation.Error()
	case errors.As(err, &duplicate):
		return fiber.StatusBadRequest, duplicate.Error()
	case errors.As(err, &cast):
		return fiber.StatusBadRequest, cast.Error()
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, notFound.Error()
	case errors.As(err, &auth):
		return fiber.StatusUnauthorized, auth.Error()
	case errors.As(err, &forbidden):
		return fiber.StatusForbidden, forbidden.Error()
	case errors.As(err, &upload):
		return fiber.StatusBadRequest, upload.Error()
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, "Server Error"
	}
}

// ErrorHandler writes {success:false, message, stack?}. The stack is only included
// when showStack is set (outside production).
func ErrorHandler(log *logrus.Entry, showStack bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := Status(err)

		entry := log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
			"error":  err.Error(),
		})
		if code >= fiber.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		body := fiber.Map{"success": false, "message": message}
		if showStack {
			body["stack"] = fmt.Sprintf("%+v", err)
		}
		return c.Status(code).JSON(body)
	}
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"message": "API endpoint not found",
	})
}
