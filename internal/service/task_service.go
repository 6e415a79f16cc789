package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/repository"
)

// CreateTaskRequest is the task creation payload. When HasRecurrence is set
// and a due date is given, the embedded recurrence fields describe the series
// to generate starting on DueDate.
type CreateTaskRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	ProjectID        *uint   `json:"projectId,omitempty"`
	CategoryID       *uint   `json:"categoryId,omitempty"`
	AssignedMemberID *uint   `json:"assignedMemberId,omitempty"`
	Priority         string  `json:"priority"`
	Status           string  `json:"status"`
	TimeSlot         string  `json:"timeSlot,omitempty"`
	WorkspaceID      uint    `json:"workspaceId"`
	DueDate          *string `json:"dueDate,omitempty"`
	HasRecurrence    bool    `json:"hasRecurrence"`
	recurrence.Input
}

// CreateTaskResult holds either the single task or the generated series.
type CreateTaskResult struct {
	Task   *model.Task
	Series *CreateResult
}

// Tasks returns every task the request produced.
func (r *CreateTaskResult) Tasks() []model.Task {
	if r.Series != nil {
		return r.Series.Tasks
	}
	if r.Task != nil {
		return []model.Task{*r.Task}
	}
	return nil
}

// Scope limits task lookups to a set of workspaces. A nil Scope is unrestricted.
type Scope []uint

// Contains reports whether workspaceID is inside the scope.
func (s Scope) Contains(workspaceID uint) bool {
	return s == nil || slices.Contains(s, workspaceID)
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo      *repository.TaskRepository
	categoryRepo  *repository.CategoryRepository
	workspaceRepo *repository.WorkspaceRepository
	recurrences   *RecurrenceService
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	workspaceRepo *repository.WorkspaceRepository,
	recurrences *RecurrenceService,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		categoryRepo:  categoryRepo,
		workspaceRepo: workspaceRepo,
		recurrences:   recurrences,
	}
}

// Create validates the request and stores either a single task or a whole
// recurring series. Validation, including the recurrence rule, happens before
// anything is written.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*CreateTaskResult, error) {
	tmpl, err := s.template(ctx, req)
	if err != nil {
		return nil, err
	}

	var due *time.Time
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		d, err := recurrence.ParseDate(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: dueDate: %v", ErrInvalidInput, err)
		}
		due = &d
	}

	rule, err := recurrence.Normalize(req.HasRecurrence && due != nil, req.Input)
	if err != nil {
		return nil, err
	}

	if rule != nil {
		series, err := s.recurrences.Create(ctx, tmpl, *due, *rule)
		if err != nil {
			return nil, err
		}
		return &CreateTaskResult{Series: series}, nil
	}

	task := model.Task{
		WorkspaceID:      tmpl.WorkspaceID,
		ProjectID:        tmpl.ProjectID,
		CategoryID:       tmpl.CategoryID,
		AssignedMemberID: tmpl.AssignedMemberID,
		Title:            tmpl.Title,
		Description:      tmpl.Description,
		Priority:         tmpl.Priority,
		Status:           tmpl.Status,
		TimeSlot:         tmpl.TimeSlot,
		DueDate:          due,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &CreateTaskResult{Task: &task}, nil
}

// template checks the non-recurrence fields and the workspace references.
func (s *TaskService) template(ctx context.Context, req CreateTaskRequest) (recurrence.Template, error) {
	tmpl := recurrence.Template{
		WorkspaceID:      req.WorkspaceID,
		ProjectID:        req.ProjectID,
		CategoryID:       req.CategoryID,
		AssignedMemberID: req.AssignedMemberID,
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Priority:         strings.ToLower(strings.TrimSpace(req.Priority)),
		Status:           strings.ToLower(strings.TrimSpace(req.Status)),
		TimeSlot:         strings.TrimSpace(req.TimeSlot),
	}

	if tmpl.Title == "" {
		return tmpl, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if tmpl.WorkspaceID == 0 {
		return tmpl, fmt.Errorf("%w: workspaceId is required", ErrInvalidInput)
	}
	if tmpl.Priority == "" {
		tmpl.Priority = model.PriorityMedium
	}
	if !validPriority(tmpl.Priority) {
		return tmpl, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, req.Priority)
	}
	if tmpl.Status == "" {
		tmpl.Status = model.StatusTodo
	}
	if !validStatus(tmpl.Status) {
		return tmpl, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	if _, err := s.workspaceRepo.GetByID(ctx, tmpl.WorkspaceID); err != nil {
		return tmpl, notFound(err, "workspace")
	}
	if tmpl.ProjectID != nil {
		if _, err := s.workspaceRepo.FindProject(ctx, tmpl.WorkspaceID, *tmpl.ProjectID); err != nil {
			return tmpl, invalidReference(err, "projectId")
		}
	}
	if tmpl.CategoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *tmpl.CategoryID)
		if err != nil {
			return tmpl, invalidReference(err, "categoryId")
		}
		if category.WorkspaceID != tmpl.WorkspaceID {
			return tmpl, fmt.Errorf("%w: categoryId belongs to another workspace", ErrInvalidInput)
		}
	}
	if tmpl.AssignedMemberID != nil {
		if _, err := s.workspaceRepo.FindMember(ctx, tmpl.WorkspaceID, *tmpl.AssignedMemberID); err != nil {
			return tmpl, invalidReference(err, "assignedMemberId")
		}
	}
	return tmpl, nil
}

func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, scope Scope, taskID uint) (*model.Task, error) {
	var (
		task *model.Task
		err  error
	)
	if scope == nil {
		task, err = s.taskRepo.FindByID(ctx, taskID)
	} else {
		task, err = s.taskRepo.FindInWorkspaces(ctx, scope, taskID)
	}
	if err != nil {
		return nil, notFound(err, "task")
	}
	return task, nil
}

// Complete marks a task as done. Each occurrence of a series is its own task,
// so completing one leaves the rest of the series untouched.
func (s *TaskService) Complete(ctx context.Context, scope Scope, taskID uint, completedAt time.Time) (*model.Task, error) {
	task, err := s.Get(ctx, scope, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted() {
		return task, nil
	}
	if err := s.taskRepo.MarkCompleted(ctx, task, completedAt); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a single task. Deleting one occurrence does not affect the
// rest of its series.
func (s *TaskService) Delete(ctx context.Context, scope Scope, taskID uint) error {
	if _, err := s.Get(ctx, scope, taskID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, taskID)
}

func validPriority(p string) bool {
	switch p {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent:
		return true
	}
	return false
}

func validStatus(s string) bool {
	switch s {
	case model.StatusTodo, model.StatusInProgress, model.StatusDone:
		return true
	}
	return false
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

func invalidReference(err error, field string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s does not exist in this workspace", ErrInvalidInput, field)
	}
	return fmt.Errorf("find %s: %w", field, err)
}
