package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ViewService answers the per-role ticket listings.
type ViewService struct {
	tickets repository.TicketRepository
}

// AdminOverview is the unfiltered ticket list plus counts recomputed on every call.
type AdminOverview struct {
	Tickets []domain.TicketView
	Stats   domain.TicketStats
}

// Dashboard tells a client which view the actor lands on.
type Dashboard struct {
	ActorID string
	Role    domain.Role
	Landing string
}

// NewViewService constructs the service.
func NewViewService(tickets repository.TicketRepository) *ViewService {
	return &ViewService{tickets: tickets}
}

// FilerView lists the tickets the actor filed, newest first.
func (s *ViewService) FilerView(ctx context.Context, actor domain.Actor) ([]domain.TicketView, error) {
	if actor.ID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := s.tickets.Find(ctx, repository.TicketFilter{UserID: &actor.ID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AgentQueue lists the agent's tickets that are not closed yet.
func (s *ViewService) AgentQueue(ctx context.Context, actor domain.Actor) ([]domain.TicketView, error) {
	if !actor.IsAgent() {
		return nil, apperrors.NewNotAuthorized("agent role required")
	}
	tickets, err := s.tickets.Find(ctx, repository.TicketFilter{
		AssignedTo:      &actor.ID,
		ExcludeStatuses: []domain.TicketStatus{domain.TicketStatusClosed},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AdminOverview lists every ticket with per-status counts taken from that same list.
func (s *ViewService) AdminOverview(ctx context.Context, actor domain.Actor) (*AdminOverview, error) {
	if !actor.IsAdministrator() {
		return nil, apperrors.NewNotAuthorized("administrator required")
	}
	tickets, err := s.tickets.Find(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AdminOverview{Tickets: tickets, Stats: domain.CountStatuses(tickets)}, nil
}

// Dashboard resolves the landing view for actor.
func (s *ViewService) Dashboard(actor domain.Actor) Dashboard {
	return Dashboard{ActorID: actor.ID, Role: actor.Role, Landing: actor.Landing()}
}
