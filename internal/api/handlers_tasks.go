package api

import (
	"net/http"
	"strings"

	"workspace-planner/internal/model"
	"workspace-planner/internal/repository"
	"workspace-planner/internal/service"
)

// createTaskResponse answers a recurring create; a single task is returned as
// a plain taskResponse.
type createTaskResponse struct {
	CreatedCount int                 `json:"createdCount"`
	Capped       bool                `json:"capped"`
	Tasks        []taskResponse      `json:"tasks"`
	Recurrence   *recurrenceResponse `json:"recurrence,omitempty"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.svc.Tasks.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if res.Series == nil {
		writeJSON(w, http.StatusCreated, taskToResponse(*res.Task))
		return
	}

	tasks := res.Tasks()
	rec := recurrenceToResponse(*res.Series.Recurrence)
	writeJSON(w, http.StatusCreated, createTaskResponse{
		CreatedCount: len(tasks),
		Capped:       res.Series.Capped,
		Tasks:        tasksToResponse(tasks),
		Recurrence:   &rec,
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}
	if _, err := s.svc.Workspaces.Get(r.Context(), workspaceID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	filter := repository.TaskFilter{WorkspaceIDs: []uint{workspaceID}}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		switch status {
		case "open":
			filter.OpenOnly = true
		case model.StatusTodo, model.StatusInProgress, model.StatusDone:
			filter.Status = status
		default:
			writeError(w, http.StatusBadRequest, "invalid_input", "status must be one of todo, in_progress, done, open")
			return
		}
	}
	from, ok := dateQuery(w, r, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(w, r, "to")
	if !ok {
		return
	}
	filter.DueFrom = from
	if to != nil {
		// to is inclusive
		before := to.AddDate(0, 0, 1)
		filter.DueBefore = &before
	}

	tasks, err := s.svc.Tasks.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasksToResponse(tasks)})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := idParam(w, r, "taskID")
	if !ok {
		return
	}
	task, err := s.svc.Tasks.Get(r.Context(), nil, taskID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(*task))
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := idParam(w, r, "taskID")
	if !ok {
		return
	}
	task, err := s.svc.Tasks.Complete(r.Context(), nil, taskID, s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(*task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := idParam(w, r, "taskID")
	if !ok {
		return
	}
	if err := s.svc.Tasks.Delete(r.Context(), nil, taskID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
