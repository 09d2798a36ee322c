package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ReferenceService lists the categories and locations offered on the ticket form.
type ReferenceService struct {
	references repository.ReferenceRepository
}

// NewReferenceService constructs the service. Pass a CachedReferenceRepository to serve lists from Redis.
func NewReferenceService(references repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{references: references}
}

// ListCategories returns active categories.
func (s *ReferenceService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.references.ListActiveCategories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// ListLocations returns active locations.
func (s *ReferenceService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.references.ListActiveLocations(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return locations, nil
}
