package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type referenceRepository struct {
	store *Store
}

// References returns the store's ReferenceRepository.
func (s *Store) References() repository.ReferenceRepository {
	return &referenceRepository{store: s}
}

func (r *referenceRepository) ListActiveCategories(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	r.store.read(func() {
		for _, c := range r.store.categories {
			if c.Active {
				result = append(result, c)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *referenceRepository) ListActiveLocations(_ context.Context) ([]domain.Location, error) {
	var result []domain.Location
	r.store.read(func() {
		for _, l := range r.store.locations {
			if l.Active {
				result = append(result, l)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].Building != result[j].Building {
			return result[i].Building < result[j].Building
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *referenceRepository) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	var (
		c  domain.Category
		ok bool
	)
	r.store.read(func() { c, ok = r.store.categories[id] })
	if !ok {
		return nil, errorutil.NewNotFound("category", map[string]any{"category_id": id})
	}
	return &c, nil
}

func (r *referenceRepository) GetLocation(_ context.Context, id string) (*domain.Location, error) {
	var (
		l  domain.Location
		ok bool
	)
	r.store.read(func() { l, ok = r.store.locations[id] })
	if !ok {
		return nil, errorutil.NewNotFound("location", map[string]any{"location_id": id})
	}
	return &l, nil
}

// SeedReferenceData loads the same categories and locations the SQL migrations seed.
func SeedReferenceData(s *Store) {
	for _, name := range []string{"Hardware", "Software", "Network", "Accounts & access", "Printing"} {
		s.AddCategory(domain.Category{ID: uuid.NewString(), Name: name, Active: true})
	}
	for _, l := range []struct{ name, building string }{
		{"Main library", "Library"},
		{"Computer lab 1", "Engineering"},
		{"Computer lab 2", "Engineering"},
		{"Lecture hall A", "Humanities"},
		{"Administration office", "Rectorate"},
	} {
		s.AddLocation(domain.Location{ID: uuid.NewString(), Name: l.name, Building: l.building, Active: true})
	}
}
