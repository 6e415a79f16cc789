package api

import (
	"net/http"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := s.svc.Workspaces.Create(r.Context(), req.Name, 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspaceToResponse(*ws))
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}
	ws, err := s.svc.Workspaces.Get(r.Context(), workspaceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceToResponse(*ws))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := s.svc.Workspaces.CreateProject(r.Context(), workspaceID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          project.ID,
		"workspaceId": project.WorkspaceID,
		"name":        project.Name,
	})
}
