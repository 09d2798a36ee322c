package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// MeHandler serves GET /api/me.
type MeHandler struct {
	views *service.ViewService
}

// NewMeHandler constructs handler.
func NewMeHandler(views *service.ViewService) *MeHandler {
	return &MeHandler{views: views}
}

// Dashboard reports the caller's identity and landing view.
func (h *MeHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	d := h.views.Dashboard(actor)
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{ActorID: d.ActorID, Role: d.Role, Landing: d.Landing}})
}
