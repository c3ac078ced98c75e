package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/schemas"
	"github.com/jonathan/placement-cell/internal/types"
)

// handleListStudents lists students matching the query filters
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	students, err := s.store.ListStudents(r.Context(), types.StudentFilters{
		Branch:          q.Get("branch"),
		BatchYear:       parseQueryInt(r, "batch_year", 0),
		PlacementStatus: q.Get("placement_status"),
		Search:          q.Get("search"),
		SortBy:          q.Get("sort_by"),
		Order:           q.Get("order"),
	})
	if err != nil {
		s.failure(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}

// handleGetStudent returns a student with their applications
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "student")
	if !ok {
		return
	}

	student, err := s.store.GetStudentDetail(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if student == nil {
		s.errorResponse(w, http.StatusNotFound, "Student not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, student)
}

// handleCreateStudent creates a student profile
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req types.StudentRequest
	if !s.decodeBody(w, r, schemas.Student, &req) {
		return
	}
	status, err := placementStatusOf(req.PlacementStatus)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	student, err := s.store.CreateStudent(r.Context(), req.ToStudent(status))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, student)
}

// handleUpdateStudent overwrites a student profile. Students may edit only their
// own profile and never its placement status.
func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "student")
	if !ok {
		return
	}
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	keepPlacement := false
	if !p.Role.CanManage() {
		own, err := s.store.FindStudentByUserID(r.Context(), p.UserID)
		if err != nil {
			s.failure(w, r, err)
			return
		}
		if own == nil || own.ID != id {
			s.failure(w, r, &ErrForbidden{Message: "Students may only edit their own profile"})
			return
		}
		keepPlacement = true
	}

	var req types.StudentRequest
	if !s.decodeBody(w, r, schemas.Student, &req) {
		return
	}
	status, err := placementStatusOf(req.PlacementStatus)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if status == "" {
		keepPlacement = true
	}

	student, err := s.store.UpdateStudent(r.Context(), id, req.ToStudent(status), keepPlacement)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, student)
}

// handleDeleteStudent removes a student and their applications
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "student")
	if !ok {
		return
	}
	if err := s.store.DeleteStudent(r.Context(), id); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}

// handleCheckEligibility evaluates one student against one company
func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req types.EligibilityRequest
	if !s.decodeBody(w, r, schemas.EligibilityCheck, &req) {
		return
	}

	result, err := s.eligibility.Check(r.Context(), req.StudentID, req.CompanyID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleEligibleCompanies evaluates a student against every company with a requirement
func (s *Server) handleEligibleCompanies(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "student")
	if !ok {
		return
	}

	results, err := s.eligibility.EligibleCompanies(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"student_id": id,
		"companies":  results,
	})
}

// placementStatusOf validates an optional placement status. Blank stays blank.
func placementStatusOf(raw string) (types.PlacementStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return types.ParsePlacementStatus(raw)
}

// ownStudentID resolves the student profile linked to a student account.
func (s *Server) ownStudentID(r *http.Request, p types.Principal) (uuid.UUID, error) {
	own, err := s.store.FindStudentByUserID(r.Context(), p.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	if own == nil {
		return uuid.Nil, &types.ErrNotFound{Entity: "student profile for user", ID: p.UserID.String()}
	}
	return own.ID, nil
}
