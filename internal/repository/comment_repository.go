package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

var commentColumns = []string{"id", "ticket_id", "user_id", "content", "internal", "created_at"}

var commentViewColumns = append(qualify("cm", commentColumns), "u.full_name AS author_name")

// CommentRepository manages the append-only ticket thread.
type CommentRepository interface {
	Append(ctx context.Context, comment *domain.Comment) error
	// ListByTicket returns comments with their authors' names, oldest first; equal timestamps
	// keep insertion order.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.CommentView, error)
}

type commentRepository struct {
	db persistence.DB
}

// NewCommentRepository builds repository.
func NewCommentRepository(db persistence.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Append(ctx context.Context, comment *domain.Comment) error {
	query, args, err := psql.Insert("comments").
		Columns(commentColumns...).
		Values(
			comment.ID,
			comment.TicketID,
			comment.UserID,
			comment.Content,
			comment.Internal,
			comment.CreatedAt,
		).ToSql()
	if err != nil {
		return err
	}
	_, err = persistence.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	return mapError(err, "comment", map[string]any{"ticket_id": comment.TicketID})
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.CommentView, error) {
	query, args, err := psql.Select(commentViewColumns...).
		From("comments cm").
		Join("users u ON u.id = cm.user_id").
		Where(squirrel.Eq{"cm.ticket_id": ticketID}).
		OrderBy("cm.created_at ASC", "cm.seq ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var comments []domain.CommentView
	if err := pgxscan.Select(ctx, persistence.QuerierFromCtx(ctx, r.db), &comments, query, args...); err != nil {
		return nil, mapError(err, "comment", map[string]any{"ticket_id": ticketID})
	}
	return comments, nil
}
