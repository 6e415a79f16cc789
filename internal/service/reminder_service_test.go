package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
)

func TestReminderService_DailySummary(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, 100)
	user, err := svc.users.UpsertFromTelegram(ctx, 7, "Bob", "", "bob")
	require.NoError(t, err)
	ws, err := svc.workspaces.EnsurePersonal(ctx, user)
	require.NoError(t, err)

	create := func(title, due string) {
		req := CreateTaskRequest{Title: title, WorkspaceID: ws.ID}
		if due != "" {
			req.DueDate = ptr(due)
		}
		_, err := svc.tasks.Create(ctx, req)
		require.NoError(t, err)
	}
	create("Late report", "2025-06-01")
	create("Call mom", "2025-06-10")
	create("Dentist", "2025-06-14")
	create("Far away", "2025-07-30")
	create("Whenever", "")
	_, err = svc.recurrences.Create(ctx, recurrence.Template{WorkspaceID: ws.ID, Title: "Stretch", Status: model.StatusTodo},
		day("2025-06-10"), recurrence.Rule{Type: recurrence.TypeDaily, Interval: 1, End: recurrence.AfterCount(2)})
	require.NoError(t, err)

	now := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	scope, err := svc.workspaces.Scope(ctx, user.ID)
	require.NoError(t, err)
	summary, err := svc.reminders.Collect(ctx, scope, now)
	require.NoError(t, err)
	assert.Len(t, summary.Overdue, 1)
	assert.Len(t, summary.Today, 2)
	assert.Len(t, summary.Upcoming, 2)
	assert.Equal(t, 1, summary.Undated)

	text, err := svc.reminders.DailySummary(ctx, *user, now)
	require.NoError(t, err)
	assert.Contains(t, text, "Ежедневный отчёт")
	assert.Contains(t, text, "Late report")
	assert.Contains(t, text, "просрочено")
	assert.Contains(t, text, "♻️")
	assert.NotContains(t, text, "Far away")
}

func TestReminderService_EmptyScope(t *testing.T) {
	svc := newServices(t, 100)
	summary, err := svc.reminders.Collect(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.True(t, summary.Empty())
}

func TestFormatReportLine_EscapesHTML(t *testing.T) {
	due := day("2025-06-12")
	line := formatReportLine(model.Task{ID: 3, Title: "<b>x</b>", DueDate: &due, Priority: model.PriorityUrgent}, nil, day("2025-06-10"))
	assert.Contains(t, line, "&lt;b&gt;x&lt;/b&gt;")
	assert.Contains(t, line, "осталось 2 дн.")
	assert.Contains(t, line, "❗urgent")
}
