package model

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task represents a single item in the planner. Tasks generated by a
// recurrence carry its ID; the reference is kept after the recurrence is
// deleted so past occurrences still show which series they came from.
type Task struct {
	ID               uint  `gorm:"primaryKey"`
	WorkspaceID      uint  `gorm:"index"`
	ProjectID        *uint `gorm:"index"`
	CategoryID       *uint `gorm:"index"`
	AssignedMemberID *uint `gorm:"index"`
	RecurrenceID     *uint `gorm:"index"`
	Title            string
	Description      string
	Priority         string `gorm:"default:medium"`
	Status           string `gorm:"default:todo"`
	TimeSlot         string
	DueDate          *time.Time `gorm:"index"`
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t Task) IsRecurring() bool {
	return t.RecurrenceID != nil
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusDone
}
