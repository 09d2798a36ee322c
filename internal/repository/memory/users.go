package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type userRepository struct {
	store *Store
}

// Users returns the store's UserRepository.
func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.store.write(ctx, func() error {
		email := strings.ToLower(user.Email)
		for _, existing := range r.store.users {
			if existing.Email == email {
				return errorutil.NewConflict("user already exists", map[string]any{"email": user.Email})
			}
		}
		stored := *user
		stored.Email = email
		r.store.users[user.ID] = stored
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	r.store.read(func() {
		user, ok = r.store.users[id]
	})
	if !ok {
		return nil, errorutil.NewNotFound("user", map[string]any{"user_id": id})
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	needle := strings.ToLower(email)
	var found *domain.User
	r.store.read(func() {
		for _, u := range r.store.users {
			if u.Email == needle {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, errorutil.NewNotFound("user", map[string]any{"email": email})
	}
	return found, nil
}

func (r *userRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var result []domain.User
	r.store.read(func() {
		for _, u := range r.store.users {
			if u.Role == role {
				result = append(result, u)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName != result[j].FullName {
			return result[i].FullName < result[j].FullName
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
