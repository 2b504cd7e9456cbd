package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/architect/internal/gateway"
	"github.com/jonathan/architect/internal/navigation"
	"github.com/jonathan/architect/internal/notify"
	"github.com/jonathan/architect/internal/project"
	"github.com/jonathan/architect/internal/types"
)

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// ProjectListResponse is the body of GET /projects.
type ProjectListResponse struct {
	Projects   []types.Project `json:"projects"`
	ActiveID   string          `json:"activeId,omitempty"`
	Generating bool            `json:"generating"`
}

// DeleteProjectResponse carries the undo notification for a deletion.
type DeleteProjectResponse struct {
	Deleted      string              `json:"deleted"`
	Notification notify.Notification `json:"notification"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, ProjectListResponse{
		Projects:   s.deps.Store.Projects(),
		ActiveID:   s.deps.Store.ActiveID(),
		Generating: s.deps.Store.Generating(),
	})
}

// handleCreateProject generates a plan from the prompt and stores it as the active project.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	p, err := s.deps.Store.Generate(r.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrOffline):
			s.deps.Notes.Error("You are offline. Connect to generate a plan.")
		case gateway.IsGenerationError(err):
			s.deps.Notes.Error("Failed to generate plan. Please try again.")
		}
		s.fail(w, err)
		return
	}
	s.deps.Dispatcher.SetView(navigation.ViewRoadmap)
	s.deps.Notes.Success("Plan created: " + p.Name)
	s.jsonResponse(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleUpdateProject replaces a project wholesale. The path id wins over the body.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var p types.Project
	if err := s.readJSON(r, &p); err != nil {
		s.fail(w, err)
		return
	}
	p.ID = r.PathValue("id")
	p.RecomputeProgress()
	if err := s.check(&p); err != nil {
		s.fail(w, err)
		return
	}
	if !s.deps.Store.Update(r.Context(), p) {
		s.fail(w, project.ErrNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleDeleteProject removes a project and offers a one-shot undo notification.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	n := s.deps.Notes.Undo("Deleted "+d.Project.Name, d.Undo)
	s.jsonResponse(w, http.StatusOK, DeleteProjectResponse{Deleted: d.Project.ID, Notification: n})
}

func (s *Server) handleSelectProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.deps.Store.Select(id); err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.deps.Dispatcher.State())
}

// handleListSteps returns a project's steps, optionally filtered by ?category=.
func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p.StepsInCategory(r.URL.Query().Get("category")))
}

func (s *Server) handleToggleStep(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Store.ToggleStep(r.Context(), r.PathValue("id"), r.PathValue("step_id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleStepAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := s.deps.Panels.StepAdvice(r.Context(), r.PathValue("id"), r.PathValue("step_id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, advice)
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Store.Prefs())
}

// handlePutPrefs saves preferences and completes onboarding.
func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var prefs types.UserPrefs
	if err := s.decodeJSON(r, &prefs); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.deps.Store.SavePrefs(r.Context(), prefs); err != nil {
		s.fail(w, &ErrValidation{Field: "language", Message: err.Error()})
		return
	}
	s.resetChat()
	s.jsonResponse(w, http.StatusOK, s.deps.Store.Prefs())
}

func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Notes.List())
}

func (s *Server) handleUndoNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Notes.InvokeUndo(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ProjectListResponse{
		Projects: s.deps.Store.Projects(),
		ActiveID: s.deps.Store.ActiveID(),
	})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	s.deps.Notes.Dismiss(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
