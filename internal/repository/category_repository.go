package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
)

// CategoryRepository stores per-workspace task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Ensure returns the workspace category with the given name, creating it when
// it does not exist yet. Names are unique per workspace.
func (r *CategoryRepository) Ensure(ctx context.Context, workspaceID uint, name string) (*model.Category, error) {
	category := model.Category{WorkspaceID: workspaceID, Name: name}
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND name = ?", workspaceID, name).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("ensure category %q: %w", name, err)
	}
	return &category, nil
}

func (r *CategoryRepository) ListByWorkspaces(ctx context.Context, workspaceIDs []uint) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("workspace_id IN ?", workspaceIDs).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByID returns gorm.ErrRecordNotFound unwrapped so callers can map it.
func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
