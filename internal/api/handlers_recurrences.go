package api

import (
	"net/http"
	"strings"

	"workspace-planner/internal/recurrence"
)

type previewRequest struct {
	StartDate string `json:"startDate"`
	recurrence.Input
}

type previewResponse struct {
	Dates   []string `json:"dates"`
	Capped  bool     `json:"capped"`
	Summary string   `json:"summary"`
}

func (s *Server) handlePreviewRecurrence(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.StartDate) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "startDate is required")
		return
	}
	start, err := recurrence.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "startDate must be a date (YYYY-MM-DD)")
		return
	}

	rule, err := recurrence.Normalize(true, req.Input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	exp, err := s.svc.Recurrences.Preview(start, *rule)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dates := make([]string, 0, len(exp.Dates))
	for _, d := range exp.Dates {
		dates = append(dates, d.Format(recurrence.DateLayout))
	}
	writeJSON(w, http.StatusOK, previewResponse{Dates: dates, Capped: exp.Capped, Summary: rule.String()})
}

func (s *Server) handleListRecurrences(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}
	if _, err := s.svc.Workspaces.Get(r.Context(), workspaceID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	recs, err := s.svc.Recurrences.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]recurrenceResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recurrenceToResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"recurrences": out})
}

func (s *Server) handleGetRecurrence(w http.ResponseWriter, r *http.Request) {
	recurrenceID, ok := idParam(w, r, "recurrenceID")
	if !ok {
		return
	}
	rec, tasks, err := s.svc.Recurrences.Get(r.Context(), recurrenceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recurrence": recurrenceToResponse(*rec),
		"tasks":      tasksToResponse(tasks),
	})
}

// handleDeleteRecurrence stops a series. The optional today query parameter
// sets the boundary between kept and removed tasks.
func (s *Server) handleDeleteRecurrence(w http.ResponseWriter, r *http.Request) {
	recurrenceID, ok := idParam(w, r, "recurrenceID")
	if !ok {
		return
	}
	today, ok := dateQuery(w, r, "today")
	if !ok {
		return
	}
	if today == nil {
		now := recurrence.DateOf(s.now())
		today = &now
	}

	res, err := s.svc.Recurrences.Delete(r.Context(), recurrenceID, *today)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
