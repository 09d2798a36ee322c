package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

type fixture struct {
	store       *memory.Store
	tickets     *TicketService
	comments    *CommentService
	assignments *AssignmentService
	views       *ViewService

	filer, otherFiler, agentA, agentB, admin domain.Actor
	categoryID, locationID                   string
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type fixtureOption func(*TicketDependencies)

func withTicketRepo(wrap func(repository.TicketRepository) repository.TicketRepository) fixtureOption {
	return func(d *TicketDependencies) { d.TicketRepo = wrap(d.TicketRepo) }
}

func withCommentRepo(wrap func(repository.CommentRepository) repository.CommentRepository) fixtureOption {
	return func(d *TicketDependencies) { d.CommentRepo = wrap(d.CommentRepo) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:      store,
		filer:      domain.Actor{ID: "u-filer", Role: domain.RoleEndUser},
		otherFiler: domain.Actor{ID: "u-other", Role: domain.RoleEndUser},
		agentA:     domain.Actor{ID: "u-agent-a", Role: domain.RoleAgent},
		agentB:     domain.Actor{ID: "u-agent-b", Role: domain.RoleAgent},
		admin:      domain.Actor{ID: "u-admin", Role: domain.RoleAdministrator},
		categoryID: "cat-hw",
		locationID: "loc-lab",
	}

	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: f.filer.ID, FullName: "Fiona Filer", Email: "fiona@uni.edu", Role: f.filer.Role},
		{ID: f.otherFiler.ID, FullName: "Oscar Other", Email: "oscar@uni.edu", Role: f.otherFiler.Role},
		{ID: f.agentA.ID, FullName: "Alice Agent", Email: "alice@uni.edu", Role: f.agentA.Role},
		{ID: f.agentB.ID, FullName: "Bob Agent", Email: "bob@uni.edu", Role: f.agentB.Role},
		{ID: f.admin.ID, FullName: "Ada Admin", Email: "ada@uni.edu", Role: f.admin.Role},
	} {
		u := u
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	store.AddCategory(domain.Category{ID: f.categoryID, Name: "Hardware", Active: true})
	store.AddCategory(domain.Category{ID: "cat-retired", Name: "Fax", Active: false})
	store.AddLocation(domain.Location{ID: f.locationID, Name: "Lab 1", Building: "Engineering", Active: true})

	deps := TicketDependencies{
		TicketRepo:    store.Tickets(),
		CommentRepo:   store.Comments(),
		UserRepo:      store.Users(),
		ReferenceRepo: store.References(),
		TxManager:     store,
		Clock:         stepClock(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f.tickets = NewTicketService(deps)
	f.comments = NewCommentService(CommentDependencies{
		TicketRepo:  deps.TicketRepo,
		CommentRepo: deps.CommentRepo,
		Clock:       deps.Clock,
	})
	f.assignments = NewAssignmentService(AssignmentDependencies{
		TicketService: f.tickets,
		TicketRepo:    deps.TicketRepo,
		UserRepo:      deps.UserRepo,
	})
	f.views = NewViewService(deps.TicketRepo)
	return f
}

func (f *fixture) file(t *testing.T, by domain.Actor) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), by, TicketCreateInput{
		Title:       "Projector has no signal",
		Description: "Room 204 projector shows a blue screen",
		CategoryID:  f.categoryID,
		LocationID:  f.locationID,
	})
	require.NoError(t, err)
	return ticket
}

// advance files a ticket and drives it to status using the legal actors.
func (f *fixture) advance(t *testing.T, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ctx := context.Background()
	ticket := f.file(t, f.filer)
	var err error
	steps := []struct {
		to domain.TicketStatus
		do func() (*domain.Ticket, error)
	}{
		{domain.TicketStatusAssigned, func() (*domain.Ticket, error) { return f.tickets.Assign(ctx, f.admin, ticket.ID, f.agentA.ID) }},
		{domain.TicketStatusInProgress, func() (*domain.Ticket, error) { return f.tickets.StartWork(ctx, f.agentA, ticket.ID) }},
		{domain.TicketStatusResolved, func() (*domain.Ticket, error) { return f.tickets.Resolve(ctx, f.agentA, ticket.ID, "replaced bulb") }},
		{domain.TicketStatusClosed, func() (*domain.Ticket, error) { return f.tickets.Close(ctx, f.filer, ticket.ID) }},
	}
	for _, step := range steps {
		if ticket.Status == status {
			break
		}
		ticket, err = step.do()
		require.NoError(t, err)
		require.Equal(t, step.to, ticket.Status)
	}
	require.Equal(t, status, ticket.Status)
	return ticket
}

func (f *fixture) reload(t *testing.T, id string) *domain.Ticket {
	t.Helper()
	ticket, err := f.store.Tickets().GetByID(context.Background(), id)
	require.NoError(t, err)
	return ticket
}
