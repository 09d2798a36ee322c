package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Me             *handlers.MeHandler
	References     *handlers.ReferenceHandler
	Tickets        *handlers.TicketsHandler
	Agent          *handlers.AgentHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Group role checks only short-circuit; services enforce every rule.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	api.Get("/me", cfg.Me.Dashboard)
	api.Get("/categories", cfg.References.Categories)
	api.Get("/locations", cfg.References.Locations)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)

	agent := api.Group("/agent", auth.RequireRole(domain.RoleAgent))
	agent.Get("/tickets", cfg.Agent.Queue)
	agent.Post("/tickets/:id/start", cfg.Agent.StartWork)
	agent.Post("/tickets/:id/resolve", cfg.Agent.Resolve)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdministrator))
	admin.Get("/overview", cfg.Admin.Overview)
	admin.Get("/tickets/unassigned", cfg.Admin.Unassigned)
	admin.Get("/agents", cfg.Admin.Agents)
	admin.Post("/tickets/:id/assign", cfg.Admin.Assign)
}
