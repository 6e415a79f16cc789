package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
)

// WorkspaceRepository manages workspaces, their members and projects.
type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create inserts the workspace and, when it has an owner, the owner's membership
// in the same transaction.
func (r *WorkspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ws).Error; err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		if ws.OwnerID == 0 {
			return nil
		}
		member := model.Member{WorkspaceID: ws.ID, UserID: ws.OwnerID, Role: model.RoleOwner}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uint) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *WorkspaceRepository) FindPersonal(ctx context.Context, userID uint) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND personal = ?", userID, true).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *WorkspaceRepository) ListByUser(ctx context.Context, userID uint) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	if err := r.db.WithContext(ctx).
		Joins("JOIN members ON members.workspace_id = workspaces.id").
		Where("members.user_id = ?", userID).
		Order("workspaces.id ASC").
		Find(&workspaces).Error; err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *WorkspaceRepository) FindMember(ctx context.Context, workspaceID, memberID uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", workspaceID, memberID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *WorkspaceRepository) FindMembership(ctx context.Context, workspaceID, userID uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *WorkspaceRepository) CreateProject(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) FindProject(ctx context.Context, workspaceID, projectID uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", workspaceID, projectID).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
