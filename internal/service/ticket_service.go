package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Ticket text limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// TxManager runs fn as one atomic unit of work.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TicketService enforces the ticket lifecycle: open → assigned → in_progress → resolved → closed.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	references repository.ReferenceRepository
	tx         TxManager
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	CommentRepo   repository.CommentRepository
	UserRepo      repository.UserRepository
	ReferenceRepo repository.ReferenceRepository
	TxManager     TxManager
	Logger        *zap.Logger
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	CategoryID  string
	LocationID  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		references: deps.ReferenceRepo,
		tx:         deps.TxManager,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket files a new open ticket on behalf of actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor.ID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	fields := map[string]any{}
	switch {
	case title == "":
		fields["title"] = "required"
	case utf8.RuneCountInString(title) > MaxTitleLength:
		fields["title"] = "too long"
	}
	switch {
	case description == "":
		fields["description"] = "required"
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		fields["description"] = "too long"
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		fields["category_id"] = "required"
	}
	if strings.TrimSpace(input.LocationID) == "" {
		fields["location_id"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket", map[string]any{"fields": fields})
	}

	if err := s.checkReferences(ctx, input.CategoryID, input.LocationID); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CategoryID:  input.CategoryID,
		LocationID:  input.LocationID,
		UserID:      actor.ID,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   s.now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("actor_id", actor.ID),
		zap.String("category_id", ticket.CategoryID),
	)
	return ticket, nil
}

func (s *TicketService) checkReferences(ctx context.Context, categoryID, locationID string) error {
	category, err := s.references.GetCategory(ctx, categoryID)
	if err != nil {
		return asInvalidReference(err, "unknown category", map[string]any{"category_id": categoryID})
	}
	if !category.Active {
		return apperrors.NewInvalidReference("category is inactive", map[string]any{"category_id": categoryID})
	}

	location, err := s.references.GetLocation(ctx, locationID)
	if err != nil {
		return asInvalidReference(err, "unknown location", map[string]any{"location_id": locationID})
	}
	if !location.Active {
		return apperrors.NewInvalidReference("location is inactive", map[string]any{"location_id": locationID})
	}
	return nil
}

// GetTicket returns a ticket with its display names when the actor may view it: its filer,
// its assigned agent or any administrator.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.TicketView, error) {
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.CanView(&view.Ticket) {
		return nil, apperrors.NewNotAuthorized("ticket is not visible to this user")
	}
	return view, nil
}

// Assign moves an open ticket to assigned, binding it to agentID. Administrators only.
// The role is checked before the ticket is loaded, so other roles learn nothing about it.
func (s *TicketService) Assign(ctx context.Context, actor domain.Actor, ticketID, agentID string) (*domain.Ticket, error) {
	if !actor.IsAdministrator() {
		return nil, apperrors.NewNotAuthorized("only administrators assign tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := requireStatus(ticket, domain.TicketStatusOpen); err != nil {
		return nil, err
	}

	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, asInvalidReference(err, "unknown agent", map[string]any{"agent_id": agentID})
	}
	if agent.Role != domain.RoleAgent {
		return nil, apperrors.NewInvalidReference("assignee does not hold the agent role",
			map[string]any{"agent_id": agentID, "role": agent.Role})
	}

	return s.transition(ctx, actor, ticket, domain.TicketPatch{
		Status:     domain.TicketStatusAssigned,
		AssignedTo: &agent.ID,
	})
}

// StartWork moves an assigned ticket to in_progress. Only the assigned agent may start it.
func (s *TicketService) StartWork(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := requireStatus(ticket, domain.TicketStatusAssigned); err != nil {
		return nil, err
	}
	if !actor.IsAssigneeOf(ticket) {
		return nil, apperrors.NewNotAuthorized("only the assigned agent may start work")
	}

	return s.transition(ctx, actor, ticket, domain.TicketPatch{Status: domain.TicketStatusInProgress})
}

// Resolve appends a public resolution comment and moves the ticket to resolved in one transaction.
func (s *TicketService) Resolve(ctx context.Context, actor domain.Actor, ticketID, resolution string) (*domain.Ticket, error) {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return nil, apperrors.NewValidationError("resolution text is required", map[string]any{"ticket_id": ticketID})
	}

	var (
		from     domain.TicketStatus
		resolved *domain.Ticket
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := requireStatus(ticket, domain.TicketStatusInProgress); err != nil {
			return err
		}
		if !actor.IsAssigneeOf(ticket) {
			return apperrors.NewNotAuthorized("only the assigned agent may resolve")
		}

		now := s.now()
		comment := &domain.Comment{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    actor.ID,
			Content:   resolution,
			Internal:  false,
			CreatedAt: now,
		}
		if err := s.comments.Append(ctx, comment); err != nil {
			return apperrors.MapError(err)
		}

		updated, err := s.tickets.Update(ctx, ticket.ID, ticket.Status, domain.TicketPatch{
			Status:     domain.TicketStatusResolved,
			ResolvedAt: &now,
		})
		if err != nil {
			return apperrors.MapError(err)
		}
		from = ticket.Status
		resolved = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(actor, resolved.ID, from, resolved.Status)
	return resolved, nil
}

// Close moves a resolved ticket to closed. Only the filer may close, keeping resolved_at.
func (s *TicketService) Close(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := requireStatus(ticket, domain.TicketStatusResolved); err != nil {
		return nil, err
	}
	if !actor.IsFilerOf(ticket) {
		return nil, apperrors.NewNotAuthorized("only the filer may close the ticket")
	}

	now := s.now()
	return s.transition(ctx, actor, ticket, domain.TicketPatch{
		Status:   domain.TicketStatusClosed,
		ClosedAt: &now,
	})
}

// transition writes patch conditioned on the status the ticket was read with.
func (s *TicketService) transition(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, patch domain.TicketPatch) (*domain.Ticket, error) {
	if !domain.CanTransition(ticket.Status, patch.Status) {
		return nil, apperrors.NewInvalidState("illegal transition", map[string]any{
			"ticket_id": ticket.ID,
			"from":      ticket.Status,
			"to":        patch.Status,
		})
	}
	updated, err := s.tickets.Update(ctx, ticket.ID, ticket.Status, patch)
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			s.logger.Warn("ticket transition lost race",
				zap.String("ticket_id", ticket.ID),
				zap.String("expected", string(ticket.Status)),
				zap.String("actor_id", actor.ID),
			)
		}
		return nil, apperrors.MapError(err)
	}
	s.logTransition(actor, updated.ID, ticket.Status, updated.Status)
	return updated, nil
}

func (s *TicketService) logTransition(actor domain.Actor, ticketID string, from, to domain.TicketStatus) {
	s.logger.Info("ticket transitioned",
		zap.String("ticket_id", ticketID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.ID),
	)
}

func requireStatus(ticket *domain.Ticket, want domain.TicketStatus) error {
	if ticket.Status == want {
		return nil
	}
	return apperrors.NewInvalidState("ticket is not "+string(want), map[string]any{
		"ticket_id": ticket.ID,
		"status":    ticket.Status,
		"expected":  want,
	})
}

// asInvalidReference turns a lookup miss into an InvalidReference; other errors pass through.
func asInvalidReference(err error, message string, details map[string]any) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewInvalidReference(message, details)
	}
	return apperrors.MapError(err)
}
