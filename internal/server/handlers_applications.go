package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/schemas"
	"github.com/jonathan/placement-cell/internal/types"
)

// handleListApplications lists applications. Students only ever see their own.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := types.ApplicationFilters{Status: q.Get("status")}
	for key, dst := range map[string]*uuid.UUID{"student_id": &filters.StudentID, "company_id": &filters.CompanyID} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid "+key)
			return
		}
		*dst = id
	}

	if !p.Role.CanManage() {
		own, err := s.ownStudentID(r, p)
		if err != nil {
			s.failure(w, r, err)
			return
		}
		filters.StudentID = own
	}

	apps, err := s.store.ListApplications(r.Context(), filters)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}

// handleCreateApplication files a new application in the Applied state.
// Students apply on their own behalf; officers name the student.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req types.CreateApplicationRequest
	if !s.decodeBody(w, r, schemas.ApplicationCreate, &req) {
		return
	}

	if !p.Role.CanManage() {
		own, err := s.ownStudentID(r, p)
		if err != nil {
			s.failure(w, r, err)
			return
		}
		if req.StudentID != uuid.Nil && req.StudentID != own {
			s.failure(w, r, &ErrForbidden{Message: "Students may only apply for themselves"})
			return
		}
		req.StudentID = own
	}

	app, err := s.transitions.Apply(r.Context(), req.StudentID, req.CompanyID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleUpdateApplication changes an application's status, feedback and score.
// Selected places the student in the same transaction.
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "application")
	if !ok {
		return
	}
	var req types.UpdateApplicationRequest
	if !s.decodeBody(w, r, schemas.ApplicationUpdate, &req) {
		return
	}

	result, err := s.transitions.TransitionApplication(r.Context(), id, req.Status, req.InterviewFeedback, req.InterviewScore)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleDeleteApplication removes an application. It never un-places a student.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "application")
	if !ok {
		return
	}
	if err := s.store.DeleteApplication(r.Context(), id); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Application deleted successfully"})
}
