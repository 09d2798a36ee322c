package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ReferenceHandler lists categories and locations for the ticket form.
type ReferenceHandler struct {
	refs *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(refs *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

// Categories GET /api/categories.
func (h *ReferenceHandler) Categories(c *fiber.Ctx) error {
	items, err := h.refs.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Locations GET /api/locations.
func (h *ReferenceHandler) Locations(c *fiber.Ctx) error {
	items, err := h.refs.ListLocations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}
