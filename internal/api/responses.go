package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workspace-planner/internal/model"
	"workspace-planner/internal/recurrence"
	"workspace-planner/internal/service"
)

type taskResponse struct {
	ID               uint    `json:"id"`
	WorkspaceID      uint    `json:"workspaceId"`
	ProjectID        *uint   `json:"projectId,omitempty"`
	CategoryID       *uint   `json:"categoryId,omitempty"`
	AssignedMemberID *uint   `json:"assignedMemberId,omitempty"`
	RecurrenceID     *uint   `json:"recurrenceId,omitempty"`
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	Priority         string  `json:"priority"`
	Status           string  `json:"status"`
	TimeSlot         string  `json:"timeSlot,omitempty"`
	DueDate          *string `json:"dueDate,omitempty"`
	CompletedAt      *string `json:"completedAt,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

type recurrenceResponse struct {
	ID          uint    `json:"id"`
	WorkspaceID uint    `json:"workspaceId"`
	Type        string  `json:"recurrenceType"`
	Interval    int     `json:"recurrenceInterval"`
	EndType     string  `json:"recurrenceEndType"`
	EndCount    *int    `json:"recurrenceEndCount,omitempty"`
	EndDate     *string `json:"recurrenceEndDate,omitempty"`
	WeeklyDays  []int   `json:"weeklyDays,omitempty"`
	StartDate   string  `json:"startDate"`
	IsActive    bool    `json:"isActive"`
	Summary     string  `json:"summary,omitempty"`
}

type workspaceResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	OwnerID  uint   `json:"ownerId,omitempty"`
	Personal bool   `json:"personal"`
}

func taskToResponse(task model.Task) taskResponse {
	resp := taskResponse{
		ID:               task.ID,
		WorkspaceID:      task.WorkspaceID,
		ProjectID:        task.ProjectID,
		CategoryID:       task.CategoryID,
		AssignedMemberID: task.AssignedMemberID,
		RecurrenceID:     task.RecurrenceID,
		Title:            task.Title,
		Description:      task.Description,
		Priority:         task.Priority,
		Status:           task.Status,
		TimeSlot:         task.TimeSlot,
		CreatedAt:        task.CreatedAt.UTC().Format(time.RFC3339),
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(recurrence.DateLayout)
		resp.DueDate = &due
	}
	if task.CompletedAt != nil {
		completed := task.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}

func tasksToResponse(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}

func recurrenceToResponse(rec model.Recurrence) recurrenceResponse {
	resp := recurrenceResponse{
		ID:          rec.ID,
		WorkspaceID: rec.WorkspaceID,
		Type:        rec.Type,
		Interval:    rec.Interval,
		EndType:     rec.EndType,
		EndCount:    rec.EndCount,
		StartDate:   rec.StartDate.Format(recurrence.DateLayout),
		IsActive:    rec.IsActive,
	}
	if rec.EndDate != nil {
		end := rec.EndDate.Format(recurrence.DateLayout)
		resp.EndDate = &end
	}
	if rule, err := rec.Rule(); err == nil {
		resp.Summary = rule.String()
		for _, d := range rule.WeeklyDays {
			resp.WeeklyDays = append(resp.WeeklyDays, int(d))
		}
	}
	return resp
}

func workspaceToResponse(ws model.Workspace) workspaceResponse {
	return workspaceResponse{ID: ws.ID, Name: ws.Name, OwnerID: ws.OwnerID, Personal: ws.Personal}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	payload := map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}
	writeJSON(w, status, payload)
}

// writeServiceError maps service and rule errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recurrence.ErrInvalidRule):
		writeError(w, http.StatusBadRequest, "invalid_rule", err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		log.Printf("[error] %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

// idParam reads a numeric path parameter, writing a 400 when it is malformed.
func idParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func dateQuery(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := recurrence.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", name+" must be a date (YYYY-MM-DD)")
		return nil, false
	}
	return &d, true
}
