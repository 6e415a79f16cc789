package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/repository"
)

// upcomingDays is how far ahead the summary looks past today.
const upcomingDays = 7

// Summary groups a user's open tasks for the periodic report.
type Summary struct {
	Overdue  []model.Task
	Today    []model.Task
	Upcoming []model.Task
	// Undated counts open tasks without a due date.
	Undated int
}

func (s Summary) Empty() bool {
	return len(s.Overdue) == 0 && len(s.Today) == 0 && len(s.Upcoming) == 0 && s.Undated == 0
}

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	taskRepo   *repository.TaskRepository
	categories *CategoryService
	workspaces *WorkspaceService
}

func NewReminderService(taskRepo *repository.TaskRepository, categories *CategoryService, workspaces *WorkspaceService) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, categories: categories, workspaces: workspaces}
}

// Collect sorts the open tasks of the given workspaces into summary buckets
// relative to now's calendar date.
func (s *ReminderService) Collect(ctx context.Context, scope Scope, now time.Time) (Summary, error) {
	if len(scope) == 0 {
		return Summary{}, nil
	}
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{WorkspaceIDs: scope, OpenOnly: true})
	if err != nil {
		return Summary{}, err
	}

	today := recurrence.DateOf(now)
	horizon := today.AddDate(0, 0, upcomingDays+1)

	var summary Summary
	for _, task := range tasks {
		if task.DueDate == nil {
			summary.Undated++
			continue
		}
		due := recurrence.DateOf(*task.DueDate)
		switch {
		case due.Before(today):
			summary.Overdue = append(summary.Overdue, task)
		case due.Equal(today):
			summary.Today = append(summary.Today, task)
		case due.Before(horizon):
			summary.Upcoming = append(summary.Upcoming, task)
		}
	}
	return summary, nil
}

// DailySummary renders the report for every workspace the user belongs to.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	scope, err := s.workspaces.Scope(ctx, user.ID)
	if err != nil {
		return "", err
	}
	summary, err := s.Collect(ctx, scope, now)
	if err != nil {
		return "", err
	}
	catNames, err := s.categories.Names(ctx, scope)
	if err != nil {
		return "", err
	}
	return renderSummary(summary, catNames, now), nil
}

func renderSummary(summary Summary, catNames map[uint]string, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	if summary.Empty() {
		builder.WriteString("— нет открытых задач\n")
		return strings.TrimSpace(builder.String())
	}

	writeSection(&builder, "⚠️ <b>Просрочено</b>", summary.Overdue, catNames, now)
	writeSection(&builder, "🔥 <b>Сегодня</b>", summary.Today, catNames, now)
	writeSection(&builder, fmt.Sprintf("📆 <b>Ближайшие %d дней</b>", upcomingDays), summary.Upcoming, catNames, now)

	if summary.Undated > 0 {
		builder.WriteString(fmt.Sprintf("🗂 Без срока: %d\n", summary.Undated))
	}
	return strings.TrimSpace(builder.String())
}

func writeSection(builder *strings.Builder, title string, tasks []model.Task, catNames map[uint]string, now time.Time) {
	if len(tasks) == 0 {
		return
	}
	builder.WriteString(title)
	builder.WriteByte('\n')
	for _, task := range tasks {
		builder.WriteString(formatReportLine(task, catNames, now))
	}
	builder.WriteByte('\n')
}

// formatReportLine renders one task as a Telegram HTML line.
func formatReportLine(task model.Task, catNames map[uint]string, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	today := recurrence.DateOf(now)
	if task.IsCompleted() {
		icon = "✅"
	} else if task.DueDate != nil {
		due := recurrence.DateOf(*task.DueDate)
		switch {
		case due.Before(today):
			icon = "⚠️"
		case due.Sub(today) <= 48*time.Hour:
			icon = "⏳"
		}
	}
	if task.IsRecurring() {
		icon += "♻️"
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s [%d] %s", icon, task.ID, title))

	if task.CategoryID != nil {
		if name := strings.TrimSpace(catNames[*task.CategoryID]); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}
	if task.Priority == model.PriorityHigh || task.Priority == model.PriorityUrgent {
		sb.WriteString(fmt.Sprintf(" ❗%s", task.Priority))
	}

	if task.DueDate != nil {
		due := recurrence.DateOf(*task.DueDate)
		dueStr := due.Format(recurrence.DateLayout)
		if task.TimeSlot != "" {
			dueStr += " " + html.EscapeString(task.TimeSlot)
		}
		switch {
		case task.IsCompleted():
			sb.WriteString(fmt.Sprintf("\n   ⏰ %s", dueStr))
		case due.Before(today):
			sb.WriteString(fmt.Sprintf("\n   ⏰ до %s · <b>просрочено</b>", dueStr))
		default:
			daysLeft := int(due.Sub(today).Hours() / 24)
			sb.WriteString(fmt.Sprintf("\n   ⏰ до %s · осталось %d дн.", dueStr, daysLeft))
		}
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
