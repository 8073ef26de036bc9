package services

import (
	"context"

	"github.com/fitstack/apiserver/types"
)

// WorkoutRepository defines persistence operations for workouts. All
// operations on existing rows take the owner id and match it together
// with the row id.
type WorkoutRepository interface {
	ListByOwner(ctx context.Context, userID int) ([]types.Workout, error)
	Create(ctx context.Context, workout types.Workout) (types.Workout, error)
	Update(ctx context.Context, workout types.Workout) (types.Workout, error)
	Delete(ctx context.Context, id, userID int) error
}

// WorkoutService encapsulates workout use-cases.
type WorkoutService struct {
	repo WorkoutRepository
}

func NewWorkoutService(repo WorkoutRepository) *WorkoutService {
	return &WorkoutService{repo: repo}
}

func (s *WorkoutService) ListByOwner(ctx context.Context, userID int) ([]types.Workout, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *WorkoutService) Create(ctx context.Context, workout types.Workout) (types.Workout, error) {
	return s.repo.Create(ctx, workout)
}

func (s *WorkoutService) Update(ctx context.Context, workout types.Workout) (types.Workout, error) {
	return s.repo.Update(ctx, workout)
}

func (s *WorkoutService) Delete(ctx context.Context, id, userID int) error {
	return s.repo.Delete(ctx, id, userID)
}
