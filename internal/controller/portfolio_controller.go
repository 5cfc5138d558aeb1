package controller

import (
	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
)

const (
	MainImageField   = "mainImage"
	GalleryField     = "images"
	MaxGalleryImages = 10
)

var portfolioService *service.PortfolioService

func InitPortfolioController(svc *service.PortfolioService) {
	portfolioService = svc
}

func ListPortfolio(c *fiber.Ctx) error {
	projects, err := portfolioService.ListPublished(c.UserContext(), service.PortfolioFilter{
		Category: c.Query("category"),
		Featured: c.QueryBool("featured"),
	})
	if err != nil {
		return err
	}
	return sendList(c, len(projects), projects)
}

func GetPortfolioCategories(c *fiber.Ctx) error {
	categories, err := portfolioService.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return sendData(c, categories)
}

func GetPortfolio(c *fiber.Ctx) error {
	project, err := portfolioService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return sendData(c, project)
}

func portfolioInput(c *fiber.Ctx) (*model.PortfolioInput, error) {
	var input model.PortfolioInput
	if err := bindBody(c, &input); err != nil {
		return nil, err
	}
	if urls := middleware.Uploaded(c, MainImageField); len(urls) > 0 {
		input.MainImage = &urls[0]
	}
	return &input, nil
}

func CreatePortfolio(c *fiber.Ctx) error {
	input, err := portfolioInput(c)
	if err != nil {
		return err
	}
	if gallery := middleware.Uploaded(c, GalleryField); len(gallery) > 0 {
		var images []string
		if input.Images != nil {
			images = append(images, *input.Images...)
		}
		images = append(images, gallery...)
		input.Images = &images
	}
	project, err := portfolioService.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return sendCreated(c, project)
}

// UpdatePortfolio merges the body; uploaded gallery images are appended to the stored list.
func UpdatePortfolio(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	input, err := portfolioInput(c)
	if err != nil {
		return err
	}
	project, err := portfolioService.Update(c.UserContext(), id, input, middleware.Uploaded(c, GalleryField))
	if err != nil {
		return err
	}
	return sendData(c, project)
}

func DeletePortfolio(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := portfolioService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return sendDeleted(c)
}
