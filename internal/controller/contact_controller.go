package controller

import (
	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
)

var contactService *service.ContactService

func InitContactController(svc *service.ContactService) {
	contactService = svc
}

// contactRequest is what the public form may set.
type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func SubmitContact(c *fiber.Ctx) error {
	var input contactRequest
	if err := bindBody(c, &input); err != nil {
		return err
	}

	contact, _, err := contactService.Submit(c.UserContext(), &model.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Subject: input.Subject,
		Message: input.Message,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return sendCreated(c, contact)
}

func ListContacts(c *fiber.Ctx) error {
	page, err := contactService.List(c.UserContext(), listParams(c))
	if err != nil {
		return err
	}
	return sendPage(c, page)
}

func GetContact(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	contact, err := contactService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return sendData(c, contact)
}

func UpdateContact(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch model.ContactPatch
	if err := bindBody(c, &patch); err != nil {
		return err
	}
	contact, err := contactService.Update(c.UserContext(), id, &patch)
	if err != nil {
		return err
	}
	return sendData(c, contact)
}

func DeleteContact(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := contactService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return sendDeleted(c)
}
