package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/schemas"
	"github.com/jonathan/placement-cell/internal/types"
)

// parseQueryInt parses a non-negative integer query parameter, returning
// defaultValue when it is absent or malformed.
func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	return val
}

// handleListCompanies lists companies with their latest remark
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companies, err := s.store.ListCompanies(r.Context(), types.CompanyFilters{
		Status:   q.Get("status"),
		Industry: q.Get("industry"),
		City:     q.Get("city"),
		State:    q.Get("state"),
		JobType:  q.Get("job_type"),
		Branch:   q.Get("branch"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort_by"),
		Order:    q.Get("order"),
	})
	if err != nil {
		s.failure(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
	})
}

// handleGetCompany returns a company with contacts, requirement and history
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}

	company, err := s.store.GetCompanyDetail(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, company)
}

// handleCreateCompany creates a company in the Prospective state
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req types.CompanyRequest
	if !s.decodeBody(w, r, schemas.Company, &req) {
		return
	}
	write, err := req.ToWrite()
	if err != nil {
		s.failure(w, r, err)
		return
	}

	company, err := s.store.CreateCompany(r.Context(), write)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, company)
}

// handleUpdateCompany replaces a company's profile. Status is untouched; it only
// changes through the status endpoint.
func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}
	var req types.CompanyRequest
	if !s.decodeBody(w, r, schemas.Company, &req) {
		return
	}
	write, err := req.ToWrite()
	if err != nil {
		s.failure(w, r, err)
		return
	}

	company, err := s.store.UpdateCompany(r.Context(), id, write)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, company)
}

// handleDeleteCompany removes a company and everything attached to it
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}
	if err := s.store.DeleteCompany(r.Context(), id); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Company deleted successfully"})
}

// handleUpdateCompanyStatus moves a company to a new status and records who did it
func (s *Server) handleUpdateCompanyStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req types.StatusUpdateRequest
	if !s.decodeBody(w, r, schemas.CompanyStatus, &req) {
		return
	}

	result, err := s.transitions.TransitionCompany(r.Context(), id, req.Status, req.Reason, p.UserID)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleCompanyStatusHistory lists a company's status changes, newest first
func (s *Server) handleCompanyStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}

	company, err := s.store.GetCompany(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not found")
		return
	}

	history, err := s.store.ListStatusHistory(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"company_id": id,
		"history":    history,
	})
}

// handleAddRemark attaches an officer's note to a company
func (s *Server) handleAddRemark(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	var req types.RemarkRequest
	if !s.decodeBody(w, r, schemas.Remark, &req) {
		return
	}

	remark, err := s.store.AddRemark(r.Context(), id, p.UserID, req.Text)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, remark)
}

// handleAddPlacementRecord records a year of recruiting results for a company
func (s *Server) handleAddPlacementRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}
	var req types.PlacementRecord
	if !s.decodeBody(w, r, schemas.PlacementRecord, &req) {
		return
	}
	req.ID = uuid.Nil
	req.CompanyID = id

	record, err := s.store.AddPlacementRecord(r.Context(), req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, record)
}

// handleEligibleStudents evaluates students against a company's requirement.
// eligible_only=true drops students who fail any rule.
func (s *Server) handleEligibleStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "company")
	if !ok {
		return
	}
	q := r.URL.Query()
	filters := types.StudentFilters{
		Branch:          q.Get("branch"),
		BatchYear:       parseQueryInt(r, "batch_year", 0),
		PlacementStatus: q.Get("placement_status"),
		Search:          q.Get("search"),
	}

	results, err := s.eligibility.EligibleStudents(r.Context(), id, filters)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	eligibleCount := 0
	for _, res := range results {
		if res.IsEligible {
			eligibleCount++
		}
	}
	if eligibleOnly, _ := strconv.ParseBool(q.Get("eligible_only")); eligibleOnly {
		kept := results[:0]
		for _, res := range results {
			if res.IsEligible {
				kept = append(kept, res)
			}
		}
		results = kept
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"company_id":     id,
		"students":       results,
		"total":          len(results),
		"eligible_count": eligibleCount,
	})
}
