package controller

import (
	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
)

const ServiceImageField = "image"

var catalogService *service.CatalogService

func InitServiceController(svc *service.CatalogService) {
	catalogService = svc
}

func ListServices(c *fiber.Ctx) error {
	services, err := catalogService.ListActive(c.UserContext(), service.CatalogFilter{
		Category: c.Query("category"),
		Featured: c.QueryBool("featured"),
	})
	if err != nil {
		return err
	}
	return sendList(c, len(services), services)
}

func GetServiceCategories(c *fiber.Ctx) error {
	categories, err := catalogService.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return sendData(c, categories)
}

func GetService(c *fiber.Ctx) error {
	svc, err := catalogService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return sendData(c, svc)
}

// serviceInput reads the body and lets an uploaded image win over an image URL in it.
func serviceInput(c *fiber.Ctx) (*model.ServiceInput, error) {
	var input model.ServiceInput
	if err := bindBody(c, &input); err != nil {
		return nil, err
	}
	if urls := middleware.Uploaded(c, ServiceImageField); len(urls) > 0 {
		input.Image = &urls[0]
	}
	return &input, nil
}

func CreateService(c *fiber.Ctx) error {
	input, err := serviceInput(c)
	if err != nil {
		return err
	}
	svc, err := catalogService.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return sendCreated(c, svc)
}

func UpdateService(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	input, err := serviceInput(c)
	if err != nil {
		return err
	}
	svc, err := catalogService.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return sendData(c, svc)
}

func DeleteService(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := catalogService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return sendDeleted(c)
}
