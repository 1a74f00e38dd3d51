package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"casedocs/internal/service"
)

type createCaseRequest struct {
	CaseNumber string `json:"case_number"`
	Title      string `json:"title"`
}

func CreateCase(caseSvc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCaseRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		created, err := caseSvc.Create(c.UserContext(), req.CaseNumber, req.Title)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func ListCases(caseSvc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cases, err := caseSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": cases})
	}
}

func GetCase(caseSvc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		found, err := caseSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(found)
	}
}
