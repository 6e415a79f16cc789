package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })
	return db
}

func day(raw string) time.Time {
	t, err := time.Parse(recurrence.DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func dueDates(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if task.DueDate == nil {
			out = append(out, "")
			continue
		}
		out = append(out, task.DueDate.Format(recurrence.DateLayout))
	}
	return out
}

func ptr[T any](v T) *T { return &v }

type services struct {
	db          *gorm.DB
	tasks       *TaskService
	recurrences *RecurrenceService
	workspaces  *WorkspaceService
	categories  *CategoryService
	reminders   *ReminderService
	users       *repository.UserRepository
}

func newServices(t *testing.T, maxInstances int) services {
	t.Helper()
	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)

	recurrences := NewRecurrenceService(repository.NewRecurrenceRepository(db), maxInstances)
	workspaces := NewWorkspaceService(workspaceRepo)
	categories := NewCategoryService(categoryRepo)
	return services{
		db:          db,
		tasks:       NewTaskService(taskRepo, categoryRepo, workspaceRepo, recurrences),
		recurrences: recurrences,
		workspaces:  workspaces,
		categories:  categories,
		reminders:   NewReminderService(taskRepo, categories, workspaces),
		users:       repository.NewUserRepository(db),
	}
}

// failingStore wraps a real store, records calls and fails the named one.
type failingStore struct {
	repository.RecurrenceStore
	failOn string
	calls  *[]string
}

var errStore = errors.New("store unavailable")

func (s *failingStore) hit(name string) error {
	*s.calls = append(*s.calls, name)
	if name == s.failOn {
		return errStore
	}
	return nil
}

func (s *failingStore) Transaction(ctx context.Context, fn func(tx repository.RecurrenceStore) error) error {
	if err := s.hit("Transaction"); err != nil {
		return err
	}
	return s.RecurrenceStore.Transaction(ctx, func(tx repository.RecurrenceStore) error {
		return fn(&failingStore{RecurrenceStore: tx, failOn: s.failOn, calls: s.calls})
	})
}

func (s *failingStore) InsertRecurrenceRecord(ctx context.Context, rec *model.Recurrence) error {
	if err := s.hit("InsertRecurrenceRecord"); err != nil {
		return err
	}
	return s.RecurrenceStore.InsertRecurrenceRecord(ctx, rec)
}

func (s *failingStore) InsertTaskInstances(ctx context.Context, tasks []model.Task, recurrenceID uint) ([]uint, error) {
	if err := s.hit("InsertTaskInstances"); err != nil {
		return nil, err
	}
	return s.RecurrenceStore.InsertTaskInstances(ctx, tasks, recurrenceID)
}

func (s *failingStore) FindRecurrence(ctx context.Context, id uint) (*model.Recurrence, error) {
	if err := s.hit("FindRecurrence"); err != nil {
		return nil, err
	}
	return s.RecurrenceStore.FindRecurrence(ctx, id)
}

func (s *failingStore) FindTasksByRecurrenceID(ctx context.Context, id uint) ([]model.Task, error) {
	if err := s.hit("FindTasksByRecurrenceID"); err != nil {
		return nil, err
	}
	return s.RecurrenceStore.FindTasksByRecurrenceID(ctx, id)
}

func (s *failingStore) DeleteTasks(ctx context.Context, ids []uint) error {
	if err := s.hit("DeleteTasks"); err != nil {
		return err
	}
	return s.RecurrenceStore.DeleteTasks(ctx, ids)
}

func (s *failingStore) DeleteRecurrenceRecord(ctx context.Context, id uint) error {
	if err := s.hit("DeleteRecurrenceRecord"); err != nil {
		return err
	}
	return s.RecurrenceStore.DeleteRecurrenceRecord(ctx, id)
}
