package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type ticketRepository struct {
	store *Store
}

// Tickets returns the store's TicketRepository.
func (s *Store) Tickets() repository.TicketRepository {
	return &ticketRepository{store: s}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.store.write(ctx, func() error {
		if _, exists := r.store.tickets[ticket.ID]; exists {
			return errorutil.NewConflict("ticket already exists", map[string]any{"ticket_id": ticket.ID})
		}
		if _, ok := r.store.users[ticket.UserID]; !ok {
			return missingRow("user_id", ticket.UserID)
		}
		if _, ok := r.store.categories[ticket.CategoryID]; !ok {
			return missingRow("category_id", ticket.CategoryID)
		}
		if _, ok := r.store.locations[ticket.LocationID]; !ok {
			return missingRow("location_id", ticket.LocationID)
		}
		r.store.tickets[ticket.ID] = cloneTicket(*ticket)
		return nil
	})
}

func (r *ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		ok     bool
	)
	r.store.read(func() {
		ticket, ok = r.store.tickets[id]
	})
	if !ok {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *ticketRepository) GetView(_ context.Context, id string) (*domain.TicketView, error) {
	var (
		view domain.TicketView
		ok   bool
	)
	r.store.read(func() {
		var ticket domain.Ticket
		if ticket, ok = r.store.tickets[id]; ok {
			view = r.store.viewOf(ticket)
		}
	})
	if !ok {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return &view, nil
}

func (r *ticketRepository) Find(_ context.Context, filter repository.TicketFilter) ([]domain.TicketView, error) {
	var result []domain.TicketView
	r.store.read(func() {
		for _, t := range r.store.tickets {
			if filter.Matches(t) {
				result = append(result, r.store.viewOf(t))
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, expected domain.TicketStatus, patch domain.TicketPatch) (*domain.Ticket, error) {
	var updated domain.Ticket
	err := r.store.write(ctx, func() error {
		current, ok := r.store.tickets[id]
		if !ok {
			return errorutil.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		if current.Status != expected {
			return errorutil.NewConcurrentModification("ticket", map[string]any{
				"ticket_id": id,
				"expected":  expected,
			})
		}
		updated = patch.Apply(current)
		r.store.tickets[id] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := cloneTicket(updated)
	return &out, nil
}

// viewOf joins t with the names of the rows it references. Callers hold the read lock.
func (s *Store) viewOf(t domain.Ticket) domain.TicketView {
	view := domain.TicketView{
		Ticket:       cloneTicket(t),
		CategoryName: s.categories[t.CategoryID].Name,
		LocationName: s.locations[t.LocationID].Name,
		Building:     s.locations[t.LocationID].Building,
		FilerName:    s.users[t.UserID].FullName,
		FilerEmail:   s.users[t.UserID].Email,
	}
	if t.AssignedTo != nil {
		if assignee, ok := s.users[*t.AssignedTo]; ok {
			name := assignee.FullName
			view.AssigneeName = &name
		}
	}
	return view
}

func missingRow(column, id string) error {
	return errorutil.NewInvalidReference("ticket references a missing row", map[string]any{column: id})
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		t.AssignedTo = &v
	}
	if t.ResolvedAt != nil {
		v := *t.ResolvedAt
		t.ResolvedAt = &v
	}
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		t.ClosedAt = &v
	}
	return t
}
