package controller

import (
	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
)

const FeaturedImageField = "featuredImage"

var blogService *service.BlogService

func InitBlogController(svc *service.BlogService) {
	blogService = svc
}

func ListPosts(c *fiber.Ctx) error {
	params := listParams(c)
	params.Status = ""
	page, err := blogService.ListPublished(c.UserContext(), service.BlogQuery{
		ListParams: params,
		Category:   c.Query("category"),
		Tag:        c.Query("tag"),
	})
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

func ListAllPosts(c *fiber.Ctx) error {
	page, err := blogService.ListAll(c.UserContext(), listParams(c))
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

func GetBlogCategories(c *fiber.Ctx) error {
	categories, err := blogService.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return sendData(c, categories)
}

func GetPost(c *fiber.Ctx) error {
	post, err := blogService.GetPublishedBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return sendData(c, post)
}

func blogInput(c *fiber.Ctx) (*model.BlogInput, error) {
	var input model.BlogInput
	if err := bindBody(c, &input); err != nil {
		return nil, err
	}
	if urls := middleware.Uploaded(c, FeaturedImageField); len(urls) > 0 {
		input.FeaturedImage = &urls[0]
	}
	return &input, nil
}

// CreatePost stores a post authored by the signed-in administrator.
func CreatePost(c *fiber.Ctx) error {
	input, err := blogInput(c)
	if err != nil {
		return err
	}
	post, err := blogService.Create(c.UserContext(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		return err
	}
	return sendCreated(c, post)
}

func UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	input, err := blogInput(c)
	if err != nil {
		return err
	}
	post, err := blogService.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return sendData(c, post)
}

func DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := blogService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return sendDeleted(c)
}
