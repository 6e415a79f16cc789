package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
	"workspace-planner/internal/repository"
)

// WorkspaceService manages workspaces and their projects.
type WorkspaceService struct {
	repo *repository.WorkspaceRepository
}

func NewWorkspaceService(repo *repository.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{repo: repo}
}

// Create adds a workspace. ownerID may be zero for workspaces managed only
// through the HTTP API.
func (s *WorkspaceService) Create(ctx context.Context, name string, ownerID uint) (*model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: workspace name is required", ErrInvalidInput)
	}
	ws := model.Workspace{Name: name, OwnerID: ownerID}
	if err := s.repo.Create(ctx, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *WorkspaceService) Get(ctx context.Context, id uint) (*model.Workspace, error) {
	ws, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "workspace")
	}
	return ws, nil
}

// EnsurePersonal returns the user's personal workspace, creating it on first
// contact.
func (s *WorkspaceService) EnsurePersonal(ctx context.Context, user *model.User) (*model.Workspace, error) {
	ws, err := s.repo.FindPersonal(ctx, user.ID)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find personal workspace: %w", err)
	}

	ws = &model.Workspace{Name: user.DisplayName(), OwnerID: user.ID, Personal: true}
	if err := s.repo.Create(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Scope returns the IDs of every workspace the user belongs to.
func (s *WorkspaceService) Scope(ctx context.Context, userID uint) (Scope, error) {
	workspaces, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	scope := make(Scope, 0, len(workspaces))
	for _, ws := range workspaces {
		scope = append(scope, ws.ID)
	}
	return scope, nil
}

func (s *WorkspaceService) CreateProject(ctx context.Context, workspaceID uint, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if _, err := s.Get(ctx, workspaceID); err != nil {
		return nil, err
	}
	project := model.Project{WorkspaceID: workspaceID, Name: name}
	if err := s.repo.CreateProject(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
