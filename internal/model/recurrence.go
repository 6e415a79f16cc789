package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"workspace-planner/internal/recurrence"
)

// Recurrence is the persisted form of a recurrence rule. It is created together
// with its generated tasks and soft-deleted when the series is stopped, so its
// ID is never handed out again.
type Recurrence struct {
	ID          uint   `gorm:"primaryKey"`
	WorkspaceID uint   `gorm:"index"`
	Type        string `gorm:"not null"`
	Interval    int    `gorm:"not null;default:1"`
	EndType     string `gorm:"not null;default:never"`
	EndCount    *int
	EndDate     *time.Time
	WeeklyDays  string // comma separated weekday indices, 0 = Sunday
	StartDate   time.Time
	IsActive    bool `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// NewRecurrence maps a rule onto its storage columns.
func NewRecurrence(workspaceID uint, start time.Time, rule recurrence.Rule) Recurrence {
	rec := Recurrence{
		WorkspaceID: workspaceID,
		Type:        string(rule.Type),
		Interval:    rule.Interval,
		EndType:     string(rule.End.Kind),
		StartDate:   recurrence.DateOf(start),
		IsActive:    true,
	}
	switch rule.End.Kind {
	case recurrence.EndAfter:
		count := rule.End.Count
		rec.EndCount = &count
	case recurrence.EndOn:
		date := rule.End.Date
		rec.EndDate = &date
	}
	if len(rule.WeeklyDays) > 0 {
		parts := make([]string, 0, len(rule.WeeklyDays))
		for _, d := range rule.WeeklyDays {
			parts = append(parts, strconv.Itoa(int(d)))
		}
		rec.WeeklyDays = strings.Join(parts, ",")
	}
	return rec
}

// Rule rebuilds the canonical rule from the stored columns.
func (r Recurrence) Rule() (recurrence.Rule, error) {
	rule := recurrence.Rule{
		Type:     recurrence.Type(r.Type),
		Interval: r.Interval,
		End:      recurrence.Never(),
	}
	switch recurrence.EndKind(r.EndType) {
	case recurrence.EndAfter:
		if r.EndCount == nil {
			return rule, fmt.Errorf("recurrence %d: end count missing", r.ID)
		}
		rule.End = recurrence.AfterCount(*r.EndCount)
	case recurrence.EndOn:
		if r.EndDate == nil {
			return rule, fmt.Errorf("recurrence %d: end date missing", r.ID)
		}
		rule.End = recurrence.OnDate(*r.EndDate)
	}
	if r.WeeklyDays != "" {
		for _, part := range strings.Split(r.WeeklyDays, ",") {
			d, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return rule, fmt.Errorf("recurrence %d: weekly days %q: %w", r.ID, r.WeeklyDays, err)
			}
			rule.WeeklyDays = append(rule.WeeklyDays, time.Weekday(d))
		}
	}
	if err := rule.Validate(); err != nil {
		return rule, fmt.Errorf("recurrence %d: %w", r.ID, err)
	}
	return rule, nil
}
