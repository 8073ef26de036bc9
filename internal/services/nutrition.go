package services

import (
	"context"

	"github.com/fitstack/apiserver/types"
)

// NutritionRepository defines persistence operations for nutrition
// entries, owner-scoped like WorkoutRepository.
type NutritionRepository interface {
	ListByOwner(ctx context.Context, userID int) ([]types.NutritionEntry, error)
	Create(ctx context.Context, entry types.NutritionEntry) (types.NutritionEntry, error)
	Update(ctx context.Context, entry types.NutritionEntry) (types.NutritionEntry, error)
	Delete(ctx context.Context, id, userID int) error
}

// NutritionService encapsulates nutrition-log use-cases.
type NutritionService struct {
	repo NutritionRepository
}

func NewNutritionService(repo NutritionRepository) *NutritionService {
	return &NutritionService{repo: repo}
}

func (s *NutritionService) ListByOwner(ctx context.Context, userID int) ([]types.NutritionEntry, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *NutritionService) Create(ctx context.Context, entry types.NutritionEntry) (types.NutritionEntry, error) {
	return s.repo.Create(ctx, entry)
}

func (s *NutritionService) Update(ctx context.Context, entry types.NutritionEntry) (types.NutritionEntry, error) {
	return s.repo.Update(ctx, entry)
}

func (s *NutritionService) Delete(ctx context.Context, id, userID int) error {
	return s.repo.Delete(ctx, id, userID)
}
