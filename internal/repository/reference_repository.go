package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// ReferenceRepository reads ticket categories and campus locations.
type ReferenceRepository interface {
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	ListActiveLocations(ctx context.Context) ([]domain.Location, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetLocation(ctx context.Context, id string) (*domain.Location, error)
}

type referenceRepository struct {
	db persistence.DB
}

// NewReferenceRepository builds the repository.
func NewReferenceRepository(db persistence.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	query, args, err := psql.Select("id", "name", "active").
		From("categories").
		Where(squirrel.Eq{"active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := pgxscan.Select(ctx, persistence.QuerierFromCtx(ctx, r.db), &categories, query, args...); err != nil {
		return nil, mapError(err, "category", nil)
	}
	return categories, nil
}

func (r *referenceRepository) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	query, args, err := psql.Select("id", "name", "building", "active").
		From("locations").
		Where(squirrel.Eq{"active": true}).
		OrderBy("building ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var locations []domain.Location
	if err := pgxscan.Select(ctx, persistence.QuerierFromCtx(ctx, r.db), &locations, query, args...); err != nil {
		return nil, mapError(err, "location", nil)
	}
	return locations, nil
}

func (r *referenceRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	query, args, err := psql.Select("id", "name", "active").
		From("categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var category domain.Category
	if err := pgxscan.Get(ctx, persistence.QuerierFromCtx(ctx, r.db), &category, query, args...); err != nil {
		return nil, mapError(err, "category", map[string]any{"category_id": id})
	}
	return &category, nil
}

func (r *referenceRepository) GetLocation(ctx context.Context, id string) (*domain.Location, error) {
	query, args, err := psql.Select("id", "name", "building", "active").
		From("locations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var location domain.Location
	if err := pgxscan.Get(ctx, persistence.QuerierFromCtx(ctx, r.db), &location, query, args...); err != nil {
		return nil, mapError(err, "location", map[string]any{"location_id": id})
	}
	return &location, nil
}
