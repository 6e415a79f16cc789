package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"workspace-planner/internal/model"
)

// RecurrenceStore is the persistence the recurrence lifecycle needs. Calls made
// on the store handed to Transaction's callback share one database transaction.
type RecurrenceStore interface {
	InsertRecurrenceRecord(ctx context.Context, rec *model.Recurrence) error
	// InsertTaskInstances tags every task with recurrenceID and inserts them in
	// batches. IDs are written back into the slice elements and returned.
	InsertTaskInstances(ctx context.Context, tasks []model.Task, recurrenceID uint) ([]uint, error)
	FindRecurrence(ctx context.Context, id uint) (*model.Recurrence, error)
	ListRecurrences(ctx context.Context, workspaceID uint) ([]model.Recurrence, error)
	FindTasksByRecurrenceID(ctx context.Context, recurrenceID uint) ([]model.Task, error)
	DeleteTasks(ctx context.Context, ids []uint) error
	DeleteRecurrenceRecord(ctx context.Context, id uint) error
	Transaction(ctx context.Context, fn func(tx RecurrenceStore) error) error
}

const insertBatchSize = 100

// RecurrenceRepository implements RecurrenceStore on gorm.
type RecurrenceRepository struct {
	db *gorm.DB
}

func NewRecurrenceRepository(db *gorm.DB) *RecurrenceRepository {
	return &RecurrenceRepository{db: db}
}

func (r *RecurrenceRepository) Transaction(ctx context.Context, fn func(tx RecurrenceStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RecurrenceRepository{db: tx})
	})
}

func (r *RecurrenceRepository) InsertRecurrenceRecord(ctx context.Context, rec *model.Recurrence) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create recurrence: %w", err)
	}
	return nil
}

func (r *RecurrenceRepository) InsertTaskInstances(ctx context.Context, tasks []model.Task, recurrenceID uint) ([]uint, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	for i := range tasks {
		id := recurrenceID
		tasks[i].RecurrenceID = &id
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&tasks, insertBatchSize).Error; err != nil {
		return nil, fmt.Errorf("create recurrence tasks: %w", err)
	}
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids, nil
}

func (r *RecurrenceRepository) FindRecurrence(ctx context.Context, id uint) (*model.Recurrence, error) {
	var rec model.Recurrence
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecurrenceRepository) ListRecurrences(ctx context.Context, workspaceID uint) ([]model.Recurrence, error) {
	var recs []model.Recurrence
	if err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	return recs, nil
}

func (r *RecurrenceRepository) FindTasksByRecurrenceID(ctx context.Context, recurrenceID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("recurrence_id = ?", recurrenceID).
		Order("due_date NULLS LAST, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find recurrence tasks: %w", err)
	}
	return tasks, nil
}

func (r *RecurrenceRepository) DeleteTasks(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

// DeleteRecurrenceRecord deactivates and soft-deletes the record. Deleting a
// missing record is not an error.
func (r *RecurrenceRepository) DeleteRecurrenceRecord(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Recurrence{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("deactivate recurrence: %w", err)
	}
	if err := db.Delete(&model.Recurrence{}, id).Error; err != nil {
		return fmt.Errorf("delete recurrence: %w", err)
	}
	return nil
}
