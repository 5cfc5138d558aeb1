package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
)

const (
	AttachmentsField = "attachments"
	MaxAttachments   = 5
)

var quoteService *service.QuoteService

func InitQuoteController(svc *service.QuoteService) {
	quoteService = svc
}

// quoteRequest is the public quote form. Attachments arrive as uploaded files.
type quoteRequest struct {
	Name              string                      `json:"name" form:"name"`
	Email             string                      `json:"email" form:"email"`
	Phone             string                      `json:"phone" form:"phone"`
	Address           model.Address               `json:"address" form:"address"`
	PropertyType      string                      `json:"propertyType" form:"propertyType"`
	PropertySize      string                      `json:"propertySize" form:"propertySize"`
	ServicesRequested []model.ServiceRequestInput `json:"servicesRequested" form:"servicesRequested"`
	Budget            string                      `json:"budget" form:"budget"`
	Timeframe         string                      `json:"timeframe" form:"timeframe"`
	Description       string                      `json:"description" form:"description"`
	HearAboutUs       string                      `json:"hearAboutUs" form:"hearAboutUs"`
}

func (r *quoteRequest) quote(attachments []string) *model.Quote {
	return &model.Quote{
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Address:           r.Address,
		PropertyType:      r.PropertyType,
		PropertySize:      r.PropertySize,
		ServicesRequested: model.ServiceRequests(r.ServicesRequested),
		Budget:            r.Budget,
		Timeframe:         r.Timeframe,
		Description:       r.Description,
		HearAboutUs:       r.HearAboutUs,
		Attachments:       datatypes.NewJSONSlice(attachments),
	}
}

func SubmitQuote(c *fiber.Ctx) error {
	var input quoteRequest
	if err := bindBody(c, &input); err != nil {
		return err
	}

	quote, _, err := quoteService.Submit(c.UserContext(), input.quote(middleware.Uploaded(c, AttachmentsField)), requestMeta(c))
	if err != nil {
		return err
	}
	return sendCreated(c, quote)
}

func ListQuotes(c *fiber.Ctx) error {
	page, err := quoteService.List(c.UserContext(), listParams(c))
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

func GetQuote(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	quote, err := quoteService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return sendData(c, quote)
}

// UpdateQuote merges the patch. A status email is best effort and never changes the response.
func UpdateQuote(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch model.QuotePatch
	if err := bindBody(c, &patch); err != nil {
		return err
	}
	quote, _, err := quoteService.Update(c.UserContext(), id, &patch)
	if err != nil {
		return err
	}
	return sendData(c, quote)
}

func DeleteQuote(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := quoteService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return sendDeleted(c)
}
