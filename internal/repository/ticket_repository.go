package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var ticketColumns = []string{
	"id", "title", "description", "category_id", "location_id", "user_id",
	"assigned_to", "status", "created_at", "resolved_at", "closed_at",
}

// ticketViewColumns adds the display names joined in by selectTicketViews.
var ticketViewColumns = append(qualify("t", ticketColumns),
	"c.name AS category_name",
	"l.name AS location_name",
	"l.building",
	"f.full_name AS filer_name",
	"f.email AS filer_email",
	"a.full_name AS assignee_name",
)

func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

func selectTicketViews() squirrel.SelectBuilder {
	return psql.Select(ticketViewColumns...).
		From("tickets t").
		Join("categories c ON c.id = t.category_id").
		Join("locations l ON l.id = t.location_id").
		Join("users f ON f.id = t.user_id").
		LeftJoin("users a ON a.id = t.assigned_to")
}

// TicketFilter is a conjunctive predicate over tickets. Zero fields match everything.
type TicketFilter struct {
	UserID          *string
	AssignedTo      *string
	Statuses        []domain.TicketStatus
	ExcludeStatuses []domain.TicketStatus
}

// Matches reports whether t satisfies the filter.
func (f TicketFilter) Matches(t domain.Ticket) bool {
	if f.UserID != nil && t.UserID != *f.UserID {
		return false
	}
	if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if containsStatus(f.ExcludeStatuses, t.Status) {
		return false
	}
	return true
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketRepository encapsulates ticket persistence. Find returns newest first.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetView loads one ticket with its display names.
	GetView(ctx context.Context, id string) (*domain.TicketView, error)
	Find(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error)
	// Update applies patch only while the stored status equals expected.
	Update(ctx context.Context, id string, expected domain.TicketStatus, patch domain.TicketPatch) (*domain.Ticket, error)
}

type ticketRepository struct {
	db persistence.DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db persistence.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query, args, err := psql.Insert("tickets").
		Columns(ticketColumns...).
		Values(
			ticket.ID,
			ticket.Title,
			ticket.Description,
			ticket.CategoryID,
			ticket.LocationID,
			ticket.UserID,
			ticket.AssignedTo,
			ticket.Status,
			ticket.CreatedAt,
			ticket.ResolvedAt,
			ticket.ClosedAt,
		).ToSql()
	if err != nil {
		return err
	}
	_, err = persistence.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	return mapError(err, "ticket", nil)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns...).
		From("tickets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ticket domain.Ticket
	if err := pgxscan.Get(ctx, persistence.QuerierFromCtx(ctx, r.db), &ticket, query, args...); err != nil {
		return nil, mapError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return &ticket, nil
}

func (r *ticketRepository) GetView(ctx context.Context, id string) (*domain.TicketView, error) {
	query, args, err := selectTicketViews().
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var view domain.TicketView
	if err := pgxscan.Get(ctx, persistence.QuerierFromCtx(ctx, r.db), &view, query, args...); err != nil {
		return nil, mapError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return &view, nil
}

func (r *ticketRepository) Find(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error) {
	builder := selectTicketViews()
	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"t.user_id": *filter.UserID})
	}
	if filter.AssignedTo != nil {
		builder = builder.Where(squirrel.Eq{"t.assigned_to": *filter.AssignedTo})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"t.status": statusStrings(filter.Statuses)})
	}
	if len(filter.ExcludeStatuses) > 0 {
		builder = builder.Where(squirrel.NotEq{"t.status": statusStrings(filter.ExcludeStatuses)})
	}

	query, args, err := builder.OrderBy("t.created_at DESC", "t.id DESC").ToSql()
	if err != nil {
		return nil, err
	}

	var tickets []domain.TicketView
	if err := pgxscan.Select(ctx, persistence.QuerierFromCtx(ctx, r.db), &tickets, query, args...); err != nil {
		return nil, mapError(err, "ticket", nil)
	}
	return tickets, nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, expected domain.TicketStatus, patch domain.TicketPatch) (*domain.Ticket, error) {
	builder := psql.Update("tickets").Set("status", patch.Status)
	if patch.AssignedTo != nil {
		builder = builder.Set("assigned_to", *patch.AssignedTo)
	}
	if patch.ResolvedAt != nil {
		builder = builder.Set("resolved_at", *patch.ResolvedAt)
	}
	if patch.ClosedAt != nil {
		builder = builder.Set("closed_at", *patch.ClosedAt)
	}

	query, args, err := builder.
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": expected}).
		Suffix("RETURNING " + strings.Join(ticketColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	q := persistence.QuerierFromCtx(ctx, r.db)
	var ticket domain.Ticket
	err = pgxscan.Get(ctx, q, &ticket, query, args...)
	if err == nil {
		return &ticket, nil
	}
	if !isNoRows(err) {
		return nil, mapError(err, "ticket", map[string]any{"ticket_id": id})
	}

	// Zero rows: either the ticket is gone or another writer moved it first.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, errorutil.NewConcurrentModification("ticket", map[string]any{
		"ticket_id": id,
		"expected":  expected,
	})
}

func statusStrings(statuses []domain.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
