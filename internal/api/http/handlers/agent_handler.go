package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AgentHandler serves the support agent work queue.
type AgentHandler struct {
	tickets *service.TicketService
	views   *service.ViewService
}

// NewAgentHandler constructs handler.
func NewAgentHandler(tickets *service.TicketService, views *service.ViewService) *AgentHandler {
	return &AgentHandler{tickets: tickets, views: views}
}

// Queue GET /api/agent/tickets.
func (h *AgentHandler) Queue(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	tickets, err := h.views.AgentQueue(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// StartWork POST /api/agent/tickets/:id/start.
func (h *AgentHandler) StartWork(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.StartWork(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Resolve POST /api/agent/tickets/:id/resolve.
func (h *AgentHandler) Resolve(c *fiber.Ctx) error {
	actor, err := auth.MustActor(c)
	if err != nil {
		return err
	}
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	ticket, err := h.tickets.Resolve(c.UserContext(), actor, c.Params("id"), req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
