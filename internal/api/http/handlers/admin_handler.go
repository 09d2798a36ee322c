package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AdminHandler exposes the administrator overview and assignment endpoints.
type AdminHandler struct {
	assignments *service.AssignmentService
	views       *service.ViewService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(assignments *service.AssignmentService, views *service.ViewService) *AdminHandler {
	return &AdminHandler{assignments: assignments, views: views}
}

// Overview GET /api/admin/overview.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	overview, err := h.views.AdminOverview(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminOverviewResponse{
		Stats:   dto.NewTicketStatsResponse(overview.Stats),
		Tickets: dto.NewTicketList(overview.Tickets),
	}})
}

// Unassigned GET /api/admin/tickets/unassigned.
func (h *AdminHandler) Unassigned(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	tickets, err := h.assignments.ListUnassigned(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// Agents GET /api/admin/agents.
func (h *AdminHandler) Agents(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	agents, err := h.assignments.ListAgents(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(agents))
	for i := range agents {
		items = append(items, dto.NewUserResponse(&agents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign POST /api/admin/tickets/:id/assign.
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ticket, err := h.assignments.AssignTicket(c.UserContext(), actor, c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
