package service

import (
	"context"
	"strings"

	"workspace-planner/internal/model"
	"workspace-planner/internal/repository"
)

// CategoryService resolves free-form category names typed by users.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, workspaceIDs []uint) ([]model.Category, error) {
	if len(workspaceIDs) == 0 {
		return nil, nil
	}
	return s.repo.ListByWorkspaces(ctx, workspaceIDs)
}

// Resolve returns the ID of the named category in the workspace, creating it on
// first use. A blank name resolves to nil.
func (s *CategoryService) Resolve(ctx context.Context, workspaceID uint, name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	category, err := s.repo.Ensure(ctx, workspaceID, name)
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

// Names maps category IDs to names for display.
func (s *CategoryService) Names(ctx context.Context, workspaceIDs []uint) (map[uint]string, error) {
	categories, err := s.List(ctx, workspaceIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}
