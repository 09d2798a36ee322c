// Package memory provides process-local implementations of the repository interfaces.
// It backs the service when no POSTGRES_DSN is configured and in service tests.
package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Store holds all helpdesk data in maps guarded by a single RWMutex. Write units
// (single writes or whole transactions) are serialized by writeMu.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	tickets    map[string]domain.Ticket
	comments   map[string][]domain.Comment
	users      map[string]domain.User
	categories map[string]domain.Category
	locations  map[string]domain.Location
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tickets:    make(map[string]domain.Ticket),
		comments:   make(map[string][]domain.Comment),
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		locations:  make(map[string]domain.Location),
	}
}

type txCtxKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txCtxKey{}).(bool)
	return v
}

// write runs fn under the write lock. Inside a transaction the caller already holds writeMu.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

type snapshot struct {
	tickets    map[string]domain.Ticket
	comments   map[string][]domain.Comment
	users      map[string]domain.User
	categories map[string]domain.Category
	locations  map[string]domain.Location
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		tickets:    make(map[string]domain.Ticket, len(s.tickets)),
		comments:   make(map[string][]domain.Comment, len(s.comments)),
		users:      make(map[string]domain.User, len(s.users)),
		categories: make(map[string]domain.Category, len(s.categories)),
		locations:  make(map[string]domain.Location, len(s.locations)),
	}
	for k, v := range s.tickets {
		snap.tickets[k] = v
	}
	for k, v := range s.comments {
		snap.comments[k] = append([]domain.Comment(nil), v...)
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	for k, v := range s.locations {
		snap.locations[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = snap.tickets
	s.comments = snap.comments
	s.users = snap.users
	s.categories = snap.categories
	s.locations = snap.locations
}

// RunInTx runs fn as one write unit. When fn fails or panics every change it made is discarded.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// AddCategory inserts or replaces a category.
func (s *Store) AddCategory(c domain.Category) {
	_ = s.write(context.Background(), func() error {
		s.categories[c.ID] = c
		return nil
	})
}

// AddLocation inserts or replaces a location.
func (s *Store) AddLocation(l domain.Location) {
	_ = s.write(context.Background(), func() error {
		s.locations[l.ID] = l
		return nil
	})
}
