package controller

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/apperrors"
)

var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

// parseID reads the :id route parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &apperrors.CastError{Path: "id", Value: raw}
	}
	return uint(id), nil
}

// bindBody decodes JSON, url-encoded and multipart bodies into out. A multipart
// request may carry its structured fields as JSON in a "data" form value.
func bindBody(c *fiber.Ctx, out interface{}) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if data := c.FormValue("data"); data != "" {
			if err := json.Unmarshal([]byte(data), out); err != nil {
				return errInvalidBody
			}
			return nil
		}
	}
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return nil
}

func listParams(c *fiber.Ctx) service.ListParams {
	return service.ListParams{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", service.DefaultLimit),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
}

func requestMeta(c *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func sendData(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func sendCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func sendList(c *fiber.Ctx, count int, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "count": count, "data": data})
}

func sendPage[T any](c *fiber.Ctx, page *service.Page[T]) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(page.Data),
		"pagination": page.Pagination,
		"data":       page.Data,
	})
}

func sendDeleted(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
