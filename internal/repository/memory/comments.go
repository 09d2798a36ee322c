package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type commentRepository struct {
	store *Store
}

// Comments returns the store's CommentRepository.
func (s *Store) Comments() repository.CommentRepository {
	return &commentRepository{store: s}
}

func (r *commentRepository) Append(ctx context.Context, comment *domain.Comment) error {
	return r.store.write(ctx, func() error {
		if strings.TrimSpace(comment.Content) == "" {
			return errorutil.NewValidationError("comment violates a check constraint", map[string]any{"ticket_id": comment.TicketID})
		}
		if _, ok := r.store.tickets[comment.TicketID]; !ok {
			return errorutil.NewInvalidReference("comment references a missing row", map[string]any{"ticket_id": comment.TicketID})
		}
		r.store.comments[comment.TicketID] = append(r.store.comments[comment.TicketID], *comment)
		return nil
	})
}

func (r *commentRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.CommentView, error) {
	var result []domain.CommentView
	r.store.read(func() {
		for _, c := range r.store.comments[ticketID] {
			result = append(result, domain.CommentView{Comment: c, AuthorName: r.store.users[c.UserID].FullName})
		}
	})
	// Stored in insertion order; the stable sort keeps it for equal timestamps.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
