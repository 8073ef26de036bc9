package services

import (
	"context"

	"github.com/fitstack/apiserver/types"
)

// ProgressRepository defines persistence operations for progress
// entries. Progress entries are created and deleted but never updated.
type ProgressRepository interface {
	ListByOwner(ctx context.Context, userID int) ([]types.ProgressEntry, error)
	Create(ctx context.Context, entry types.ProgressEntry) (types.ProgressEntry, error)
	Delete(ctx context.Context, id, userID int) error
}

// ProgressService encapsulates body-progress use-cases.
type ProgressService struct {
	repo ProgressRepository
}

func NewProgressService(repo ProgressRepository) *ProgressService {
	return &ProgressService{repo: repo}
}

func (s *ProgressService) ListByOwner(ctx context.Context, userID int) ([]types.ProgressEntry, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *ProgressService) Create(ctx context.Context, entry types.ProgressEntry) (types.ProgressEntry, error) {
	return s.repo.Create(ctx, entry)
}

func (s *ProgressService) Delete(ctx context.Context, id, userID int) error {
	return s.repo.Delete(ctx, id, userID)
}
