package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AssignmentService drives the administrator's assignment queue.
type AssignmentService struct {
	lifecycle *TicketService
	tickets   repository.TicketRepository
	users     repository.UserRepository
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketService *TicketService
	TicketRepo    repository.TicketRepository
	UserRepo      repository.UserRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		lifecycle: deps.TicketService,
		tickets:   deps.TicketRepo,
		users:     deps.UserRepo,
	}
}

// AssignTicket binds an open ticket to an agent.
func (s *AssignmentService) AssignTicket(ctx context.Context, actor domain.Actor, ticketID, agentID string) (*domain.Ticket, error) {
	return s.lifecycle.Assign(ctx, actor, ticketID, agentID)
}

// ListUnassigned returns open tickets, newest first.
func (s *AssignmentService) ListUnassigned(ctx context.Context, actor domain.Actor) ([]domain.TicketView, error) {
	if !actor.IsAdministrator() {
		return nil, apperrors.NewNotAuthorized("administrator required")
	}
	tickets, err := s.tickets.Find(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAgents returns every user holding the agent role.
func (s *AssignmentService) ListAgents(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.IsAdministrator() {
		return nil, apperrors.NewNotAuthorized("administrator required")
	}
	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}
