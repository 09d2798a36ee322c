package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CommentService writes and reads ticket threads, enforcing internal-comment visibility on both paths.
type CommentService struct {
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// CommentDependencies bundles repositories for the comment service.
type CommentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &CommentService{
		tickets:  deps.TicketRepo,
		comments: deps.CommentRepo,
		logger:   logger,
		now:      clock,
	}
}

// AddComment appends a comment. Authors are the filer, the assigned agent or an administrator.
// The internal flag is dropped for anyone who may not write internal comments on the ticket.
func (s *CommentService) AddComment(ctx context.Context, actor domain.Actor, ticketID, content string, internal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", map[string]any{"ticket_id": ticketID})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.CanView(ticket) {
		return nil, apperrors.NewNotAuthorized("not a participant of this ticket")
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		UserID:    actor.ID,
		Content:   content,
		Internal:  internal && actor.CanWriteInternal(ticket),
		CreatedAt: s.now(),
	}
	if err := s.comments.Append(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if internal && !comment.Internal {
		s.logger.Debug("internal flag dropped for comment author",
			zap.String("ticket_id", ticket.ID),
			zap.String("actor_id", actor.ID),
		)
	}
	return comment, nil
}

// ListComments returns the thread oldest first. Internal comments reach only staff working the
// ticket, never its filer.
func (s *CommentService) ListComments(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.CommentView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.CanView(ticket) {
		return nil, apperrors.NewNotAuthorized("ticket is not visible to this user")
	}

	all, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	visible := make([]domain.CommentView, 0, len(all))
	for _, c := range all {
		if c.VisibleTo(actor, ticket) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}
