package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

var userColumns = []string{"id", "full_name", "email", "department", "password_hash", "role", "created_at"}

// UserRepository defines persistence access for helpdesk identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type userRepository struct {
	db persistence.DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db persistence.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.FullName,
			strings.ToLower(user.Email),
			user.Department,
			user.PasswordHash,
			user.Role,
			user.CreatedAt,
		).ToSql()
	if err != nil {
		return err
	}
	_, err = persistence.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	return mapError(err, "user", map[string]any{"email": user.Email})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, map[string]any{"user_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(email)}, map[string]any{"email": email})
}

func (r *userRepository) getOne(ctx context.Context, where squirrel.Eq, details map[string]any) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := pgxscan.Get(ctx, persistence.QuerierFromCtx(ctx, r.db), &user, query, args...); err != nil {
		return nil, mapError(err, "user", details)
	}
	return &user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"role": role}).
		OrderBy("full_name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := pgxscan.Select(ctx, persistence.QuerierFromCtx(ctx, r.db), &users, query, args...); err != nil {
		return nil, mapError(err, "user", nil)
	}
	return users, nil
}
