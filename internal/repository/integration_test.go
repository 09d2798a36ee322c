//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var (
	dbOnce  sync.Once
	dbDSN   string
	dbSetup error
)

// setupPool starts one PostgreSQL container per test run and migrates it.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbOnce.Do(func() { dbDSN, dbSetup = startPostgres() })
	require.NoError(t, dbSetup)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dbDSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "helpdesk",
				"POSTGRES_PASSWORD": "helpdesk",
				"POSTGRES_DB":       "helpdesk",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	dsn := fmt.Sprintf("postgres://helpdesk:helpdesk@%s:%s/helpdesk?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	if err := persistence.RunMigrations(ctx, pool, zap.NewNop()); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return dsn, nil
}

type pgFixture struct {
	pool       *pgxpool.Pool
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	refs       repository.ReferenceRepository
	service    *service.TicketService
	filer      domain.Actor
	agent      domain.Actor
	admin      domain.Actor
	categoryID string
	locationID string
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	pool := setupPool(t)
	ctx := context.Background()
	f := &pgFixture{
		pool:     pool,
		tickets:  repository.NewTicketRepository(pool),
		comments: repository.NewCommentRepository(pool),
		users:    repository.NewUserRepository(pool),
		refs:     repository.NewReferenceRepository(pool),
	}

	for _, role := range []domain.Role{domain.RoleEndUser, domain.RoleAgent, domain.RoleAdministrator} {
		id := uuid.NewString()
		require.NoError(t, f.users.Create(ctx, &domain.User{
			ID:        id,
			FullName:  string(role) + " user",
			Email:     id + "@uni.edu",
			Role:      role,
			CreatedAt: time.Now().UTC(),
		}))
		actor := domain.Actor{ID: id, Role: role}
		switch role {
		case domain.RoleEndUser:
			f.filer = actor
		case domain.RoleAgent:
			f.agent = actor
		default:
			f.admin = actor
		}
	}

	categories, err := f.refs.ListActiveCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	locations, err := f.refs.ListActiveLocations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, locations)
	f.categoryID, f.locationID = categories[0].ID, locations[0].ID

	f.service = service.NewTicketService(service.TicketDependencies{
		TicketRepo:    f.tickets,
		CommentRepo:   f.comments,
		UserRepo:      f.users,
		ReferenceRepo: f.refs,
		TxManager:     persistence.NewTxManager(pool),
	})
	return f
}

func (f *pgFixture) file(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.CreateTicket(context.Background(), f.filer, service.TicketCreateInput{
		Title:       "Printer jams",
		Description: "Second floor printer jams on duplex jobs",
		CategoryID:  f.categoryID,
		LocationID:  f.locationID,
	})
	require.NoError(t, err)
	return ticket
}

func TestPostgresLifecycle(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	ticket := f.file(t)

	_, err := f.service.Assign(ctx, f.admin, ticket.ID, f.agent.ID)
	require.NoError(t, err)
	_, err = f.service.StartWork(ctx, f.agent, ticket.ID)
	require.NoError(t, err)
	resolved, err := f.service.Resolve(ctx, f.agent, ticket.ID, "Cleaned the rollers")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	closed, err := f.service.Close(ctx, f.filer, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NoError(t, closed.CheckInvariants())

	comments, err := f.comments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Cleaned the rollers", comments[0].Content)
	assert.Equal(t, "agent user", comments[0].AuthorName)

	view, err := f.tickets.GetView(ctx, ticket.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, view.CategoryName)
	assert.NotEmpty(t, view.LocationName)
	assert.Equal(t, "enduser user", view.FilerName)
	require.NotNil(t, view.AssigneeName)
	assert.Equal(t, "agent user", *view.AssigneeName)

	all, err := f.tickets.Find(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, domain.CountStatuses(all).Closed, 1)
}

func TestPostgresConcurrentSwapHasOneWinner(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	ticket := f.file(t)
	_, err := f.service.Assign(ctx, f.admin, ticket.ID, f.agent.ID)
	require.NoError(t, err)

	const sessions = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.StartWork(ctx, f.agent, ticket.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, errorutil.ErrInvalidState):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, sessions-1, conflicts)
}

func TestPostgresResolveRollsBackComment(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	ticket := f.file(t)

	tx := persistence.NewTxManager(f.pool)
	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, f.comments.Append(ctx, &domain.Comment{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    f.agent.ID,
			Content:   "never committed",
			CreatedAt: time.Now().UTC(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	comments, err := f.comments.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestPostgresConstraintMapping(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	err := f.tickets.Create(ctx, &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       "Orphan",
		Description: "Filed by nobody",
		CategoryID:  f.categoryID,
		LocationID:  f.locationID,
		UserID:      uuid.NewString(),
		Status:      domain.TicketStatusOpen,
		CreatedAt:   time.Now().UTC(),
	})
	require.ErrorIs(t, err, errorutil.ErrInvalidReference)

	_, err = f.tickets.GetByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, errorutil.ErrNotFound)

	agentUser, err := f.users.GetByID(ctx, f.agent.ID)
	require.NoError(t, err)
	dup := *agentUser
	dup.ID = uuid.NewString()
	require.ErrorIs(t, f.users.Create(ctx, &dup), errorutil.ErrConflict)
}
