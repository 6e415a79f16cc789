package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/repository"
)

// DefaultMaxInstances caps a series when the configuration does not.
const DefaultMaxInstances = 100

// CreateResult is the outcome of materializing a recurrence.
type CreateResult struct {
	Recurrence   *model.Recurrence
	Tasks        []model.Task
	CreatedCount int
	// Capped reports that the rule would have produced more tasks than the
	// instance cap allows.
	Capped bool
}

// DeleteResult reports how much of a series was removed.
type DeleteResult struct {
	DeletedFutureCount int `json:"deletedFutureCount"`
	TotalSeriesSize    int `json:"totalSeriesSize"`
}

// RecurrenceService owns creation and deletion of recurrences together with
// their generated tasks.
type RecurrenceService struct {
	store        repository.RecurrenceStore
	maxInstances int
}

func NewRecurrenceService(store repository.RecurrenceStore, maxInstances int) *RecurrenceService {
	if maxInstances < 1 {
		maxInstances = DefaultMaxInstances
	}
	return &RecurrenceService{store: store, maxInstances: maxInstances}
}

func (s *RecurrenceService) MaxInstances() int {
	return s.maxInstances
}

// Preview expands a rule without touching storage.
func (s *RecurrenceService) Preview(start time.Time, rule recurrence.Rule) (recurrence.Expansion, error) {
	if err := rule.Validate(); err != nil {
		return recurrence.Expansion{}, err
	}
	return recurrence.Expand(start, rule, s.maxInstances), nil
}

// Create stores the recurrence record and every generated task in one
// transaction. Nothing is written when the rule is invalid.
func (s *RecurrenceService) Create(ctx context.Context, tmpl recurrence.Template, start time.Time, rule recurrence.Rule) (*CreateResult, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	var result *CreateResult
	err := s.store.Transaction(ctx, func(tx repository.RecurrenceStore) error {
		rec := model.NewRecurrence(tmpl.WorkspaceID, start, rule)
		if err := tx.InsertRecurrenceRecord(ctx, &rec); err != nil {
			return err
		}

		exp := recurrence.Expand(start, rule, s.maxInstances)
		instances := exp.Instances(tmpl)
		tasks := make([]model.Task, 0, len(instances))
		for _, inst := range instances {
			tasks = append(tasks, taskFromInstance(inst))
		}
		if _, err := tx.InsertTaskInstances(ctx, tasks, rec.ID); err != nil {
			return err
		}

		result = &CreateResult{
			Recurrence:   &rec,
			Tasks:        tasks,
			CreatedCount: len(tasks),
			Capped:       exp.Capped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[info] recurrence created id=%d workspace=%d rule=%q tasks=%d capped=%t",
		result.Recurrence.ID, tmpl.WorkspaceID, rule.String(), result.CreatedCount, result.Capped)
	return result, nil
}

// Delete stops a series as of today: tasks due today or later (and tasks
// without a due date) are removed, earlier ones stay as history. Deleting an
// unknown or already deleted recurrence reports zero counts.
func (s *RecurrenceService) Delete(ctx context.Context, recurrenceID uint, today time.Time) (DeleteResult, error) {
	today = recurrence.DateOf(today)

	var result DeleteResult
	err := s.store.Transaction(ctx, func(tx repository.RecurrenceStore) error {
		if _, err := tx.FindRecurrence(ctx, recurrenceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("find recurrence: %w", err)
		}

		tasks, err := tx.FindTasksByRecurrenceID(ctx, recurrenceID)
		if err != nil {
			return err
		}
		_, future := PartitionByDueDate(tasks, today)

		ids := make([]uint, 0, len(future))
		for _, task := range future {
			ids = append(ids, task.ID)
		}
		if err := tx.DeleteTasks(ctx, ids); err != nil {
			return err
		}
		if err := tx.DeleteRecurrenceRecord(ctx, recurrenceID); err != nil {
			return err
		}

		result = DeleteResult{DeletedFutureCount: len(future), TotalSeriesSize: len(tasks)}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	log.Printf("[info] recurrence deleted id=%d today=%s removed=%d of %d",
		recurrenceID, today.Format(recurrence.DateLayout), result.DeletedFutureCount, result.TotalSeriesSize)
	return result, nil
}

// Get returns an active recurrence with all of its tasks.
func (s *RecurrenceService) Get(ctx context.Context, recurrenceID uint) (*model.Recurrence, []model.Task, error) {
	rec, err := s.store.FindRecurrence(ctx, recurrenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("find recurrence: %w", err)
	}
	tasks, err := s.store.FindTasksByRecurrenceID(ctx, recurrenceID)
	if err != nil {
		return nil, nil, err
	}
	return rec, tasks, nil
}

func (s *RecurrenceService) ListByWorkspace(ctx context.Context, workspaceID uint) ([]model.Recurrence, error) {
	return s.store.ListRecurrences(ctx, workspaceID)
}

// PartitionByDueDate splits tasks into those due strictly before the calendar
// date of today and the rest, which is what Delete removes. A task without a
// due date is never past.
func PartitionByDueDate(tasks []model.Task, today time.Time) (past, future []model.Task) {
	today = recurrence.DateOf(today)
	for _, task := range tasks {
		if task.DueDate != nil && recurrence.DateOf(*task.DueDate).Before(today) {
			past = append(past, task)
			continue
		}
		future = append(future, task)
	}
	return past, future
}

func taskFromInstance(inst recurrence.Instance) model.Task {
	due := inst.DueDate
	return model.Task{
		WorkspaceID:      inst.WorkspaceID,
		ProjectID:        inst.ProjectID,
		CategoryID:       inst.CategoryID,
		AssignedMemberID: inst.AssignedMemberID,
		Title:            inst.Title,
		Description:      inst.Description,
		Priority:         inst.Priority,
		Status:           inst.Status,
		TimeSlot:         inst.TimeSlot,
		DueDate:          &due,
	}
}
