package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/db"
	"github.com/jonathan/placement-cell/internal/transition"
	"github.com/jonathan/placement-cell/internal/types"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*types.User
	students     map[uuid.UUID]*types.Student
	companies    map[uuid.UUID]*types.Company
	requirements map[uuid.UUID]*types.CompanyRequirement
	applications map[uuid.UUID]*types.Application
	remarks      []types.Remark
	placements   []types.PlacementRecord
	history      []types.StatusChange

	failCommit bool
	pingErr    error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]*types.User),
		students:     make(map[uuid.UUID]*types.Student),
		companies:    make(map[uuid.UUID]*types.Company),
		requirements: make(map[uuid.UUID]*types.CompanyRequirement),
		applications: make(map[uuid.UUID]*types.Application),
	}
}

// addStudent stores a copy of s with a fresh ID and returns it.
func (m *memStore) addStudent(s types.Student) types.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	if s.PlacementStatus == "" {
		s.PlacementStatus = types.PlacementUnplaced
	}
	m.students[s.ID] = &s
	return s
}

// addCompany stores a company and, when req is non-nil, its requirement.
func (m *memStore) addCompany(c types.Company, req *types.CompanyRequirement) types.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = types.CompanyActive
	}
	m.companies[c.ID] = &c
	if req != nil {
		r := *req
		r.ID = uuid.New()
		r.CompanyID = c.ID
		m.requirements[c.ID] = &r
	}
	return c
}

func (m *memStore) student(id uuid.UUID) types.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.students[id]
}

func (m *memStore) company(id uuid.UUID) types.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.companies[id]
}

// Users

func (m *memStore) CreateUser(_ context.Context, username, email, passwordHash string, role types.Role) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) || u.Username == username {
			return nil, &types.ErrConflict{Entity: "user", Message: "User already exists"}
		}
	}
	u := &types.User{ID: uuid.New(), Username: username, Email: strings.ToLower(email), PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Students

func (m *memStore) FindStudentByID(_ context.Context, id uuid.UUID) (*types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) FindStudentByUserID(_ context.Context, userID uuid.UUID) (*types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.UserID != nil && *s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetStudentDetail(ctx context.Context, id uuid.UUID) (*types.StudentDetail, error) {
	s, _ := m.FindStudentByID(ctx, id)
	if s == nil {
		return nil, nil
	}
	apps, _ := m.ListApplications(ctx, types.ApplicationFilters{StudentID: id})
	return &types.StudentDetail{Student: *s, Applications: apps}, nil
}

func (m *memStore) ListStudents(_ context.Context, filters types.StudentFilters) ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Student{}
	for _, s := range m.students {
		if filters.Branch != "" && s.Branch != filters.Branch {
			continue
		}
		if filters.BatchYear != 0 && s.BatchYear != filters.BatchYear {
			continue
		}
		if filters.PlacementStatus != "" && string(s.PlacementStatus) != filters.PlacementStatus {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNumber < out[j].RollNumber })
	return out, nil
}

func (m *memStore) CreateStudent(_ context.Context, s types.Student) (*types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if existing.RollNumber == s.RollNumber || existing.Email == s.Email {
			return nil, &types.ErrConflict{Entity: "student", Message: "Student with this roll number or email already exists"}
		}
	}
	s.ID = uuid.New()
	m.students[s.ID] = &s
	cp := s
	return &cp, nil
}

func (m *memStore) UpdateStudent(_ context.Context, id uuid.UUID, s types.Student, keepPlacement bool) (*types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.students[id]
	if !ok {
		return nil, &types.ErrNotFound{Entity: "student", ID: id.String()}
	}
	s.ID = id
	s.UserID = current.UserID
	if keepPlacement || s.PlacementStatus == "" {
		s.PlacementStatus = current.PlacementStatus
	}
	m.students[id] = &s
	cp := s
	return &cp, nil
}

func (m *memStore) DeleteStudent(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return &types.ErrNotFound{Entity: "student", ID: id.String()}
	}
	delete(m.students, id)
	for appID, a := range m.applications {
		if a.StudentID == id {
			delete(m.applications, appID)
		}
	}
	return nil
}

// Companies

func (m *memStore) GetCompany(_ context.Context, id uuid.UUID) (*types.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) FindRequirementByCompanyID(_ context.Context, companyID uuid.UUID) (*types.CompanyRequirement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requirements[companyID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListRequirements(_ context.Context) ([]types.CompanyRequirement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.CompanyRequirement{}
	for _, r := range m.requirements {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memStore) ListCompanies(_ context.Context, filters types.CompanyFilters) ([]types.CompanySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.CompanySummary{}
	for _, c := range m.companies {
		if filters.Status != "" && string(c.Status) != filters.Status {
			continue
		}
		out = append(out, types.CompanySummary{Company: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetCompanyDetail(ctx context.Context, id uuid.UUID) (*types.CompanyDetail, error) {
	c, _ := m.GetCompany(ctx, id)
	if c == nil {
		return nil, nil
	}
	req, _ := m.FindRequirementByCompanyID(ctx, id)
	history, _ := m.ListStatusHistory(ctx, id)
	return &types.CompanyDetail{
		Company:          *c,
		Contacts:         []types.HRContact{},
		Requirement:      req,
		Remarks:          []types.Remark{},
		PlacementHistory: []types.PlacementRecord{},
		StatusHistory:    history,
	}, nil
}

func (m *memStore) CreateCompany(ctx context.Context, w *types.CompanyWrite) (*types.CompanyDetail, error) {
	c := m.addCompany(w.Company, w.Requirement)
	return m.GetCompanyDetail(ctx, c.ID)
}

func (m *memStore) UpdateCompany(ctx context.Context, id uuid.UUID, w *types.CompanyWrite) (*types.CompanyDetail, error) {
	m.mu.Lock()
	current, ok := m.companies[id]
	if !ok {
		m.mu.Unlock()
		return nil, &types.ErrNotFound{Entity: "company", ID: id.String()}
	}
	updated := w.Company
	updated.ID = id
	updated.Status = current.Status
	m.companies[id] = &updated
	if w.Requirement != nil {
		r := *w.Requirement
		r.ID = uuid.New()
		r.CompanyID = id
		m.requirements[id] = &r
	}
	m.mu.Unlock()
	return m.GetCompanyDetail(ctx, id)
}

func (m *memStore) DeleteCompany(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[id]; !ok {
		return &types.ErrNotFound{Entity: "company", ID: id.String()}
	}
	delete(m.companies, id)
	delete(m.requirements, id)
	return nil
}

func (m *memStore) AddRemark(_ context.Context, companyID, userID uuid.UUID, text string) (*types.Remark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[companyID]; !ok {
		return nil, &types.ErrNotFound{Entity: "company", ID: companyID.String()}
	}
	r := types.Remark{ID: uuid.New(), CompanyID: companyID, UserID: userID, Text: text, CreatedAt: time.Now()}
	if u, ok := m.users[userID]; ok {
		r.Username = u.Username
	}
	m.remarks = append(m.remarks, r)
	return &r, nil
}

func (m *memStore) AddPlacementRecord(_ context.Context, p types.PlacementRecord) (*types.PlacementRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[p.CompanyID]; !ok {
		return nil, &types.ErrNotFound{Entity: "company", ID: p.CompanyID.String()}
	}
	for _, existing := range m.placements {
		if existing.CompanyID == p.CompanyID && existing.Year == p.Year {
			return nil, &types.ErrConflict{Entity: "placement history", Message: "year already recorded"}
		}
	}
	p.ID = uuid.New()
	m.placements = append(m.placements, p)
	return &p, nil
}

func (m *memStore) ListStatusHistory(_ context.Context, companyID uuid.UUID) ([]types.StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.StatusChange{}
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].CompanyID == companyID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memStore) ApplyCompanyStatusTransition(_ context.Context, companyID uuid.UUID, plan transition.CompanyPlan) (*transition.CompanyTransition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.companies[companyID]
	if !ok {
		return nil, &types.ErrNotFound{Entity: "company", ID: companyID.String()}
	}
	result, err := plan(*current)
	if err != nil {
		return nil, err
	}
	if m.failCommit {
		return nil, &types.ErrAtomicity{Op: "company status transition", Err: errors.New("commit failed")}
	}
	result.Record.ID = uuid.New()
	company := result.Company
	m.companies[companyID] = &company
	m.history = append(m.history, result.Record)
	return result, nil
}

// Applications

func (m *memStore) GetApplication(_ context.Context, id uuid.UUID) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ListApplications(_ context.Context, filters types.ApplicationFilters) ([]types.ApplicationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.ApplicationView{}
	for _, a := range m.applications {
		if filters.StudentID != uuid.Nil && a.StudentID != filters.StudentID {
			continue
		}
		if filters.CompanyID != uuid.Nil && a.CompanyID != filters.CompanyID {
			continue
		}
		if filters.Status != "" && string(a.Status) != filters.Status {
			continue
		}
		view := types.ApplicationView{Application: *a}
		if s, ok := m.students[a.StudentID]; ok {
			view.StudentName, view.RollNumber = s.Name, s.RollNumber
		}
		if c, ok := m.companies[a.CompanyID]; ok {
			view.CompanyName, view.CompanyStatus = c.Name, c.Status
		}
		out = append(out, view)
	}
	return out, nil
}

func (m *memStore) InsertApplication(_ context.Context, studentID, companyID uuid.UUID) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[studentID]; !ok {
		return nil, &types.ErrNotFound{Entity: "student", ID: studentID.String()}
	}
	if _, ok := m.companies[companyID]; !ok {
		return nil, &types.ErrNotFound{Entity: "company", ID: companyID.String()}
	}
	for _, a := range m.applications {
		if a.StudentID == studentID && a.CompanyID == companyID {
			return nil, &types.ErrConflict{Entity: "application", Message: "Already applied to this company"}
		}
	}
	now := time.Now()
	a := &types.Application{ID: uuid.New(), StudentID: studentID, CompanyID: companyID, Status: types.ApplicationApplied, AppliedAt: now, UpdatedAt: now}
	m.applications[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *memStore) ApplyApplicationStatusTransition(_ context.Context, applicationID uuid.UUID, plan transition.ApplicationPlan) (*transition.ApplicationTransition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.applications[applicationID]
	if !ok {
		return nil, &types.ErrNotFound{Entity: "application", ID: applicationID.String()}
	}
	result, err := plan(*current)
	if err != nil {
		return nil, err
	}
	prevApp := *current
	app := result.Application
	m.applications[applicationID] = &app

	var prevStudent *types.Student
	if result.PlaceStudent {
		if s, ok := m.students[app.StudentID]; ok {
			snapshot := *s
			prevStudent = &snapshot
			placed := *s
			placed.PlacementStatus = types.PlacementPlaced
			m.students[app.StudentID] = &placed
			result.Student = &placed
		}
	}

	// Both writes are applied before the commit so a failure has to undo them.
	if m.failCommit {
		m.applications[applicationID] = &prevApp
		if prevStudent != nil {
			m.students[prevStudent.ID] = prevStudent
		}
		return nil, &types.ErrAtomicity{Op: "application status transition", Err: errors.New("commit failed")}
	}
	if result.Student != nil {
		cp := *result.Student
		result.Student = &cp
	}
	return result, nil
}

func (m *memStore) DeleteApplication(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.applications[id]; !ok {
		return &types.ErrNotFound{Entity: "application", ID: id.String()}
	}
	delete(m.applications, id)
	return nil
}

// Admin

func (m *memStore) GetDashboardStats(_ context.Context) (*db.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &db.DashboardStats{ApplicationsByStatus: make(map[string]int)}
	for _, s := range types.ApplicationStatuses() {
		stats.ApplicationsByStatus[string(s)] = 0
	}
	for _, c := range m.companies {
		stats.TotalCompanies++
		if c.Status == types.CompanyActive {
			stats.ActiveCompanies++
		}
	}
	for _, s := range m.students {
		stats.TotalStudents++
		if s.IsPlaced() {
			stats.PlacedStudents++
		}
	}
	for _, a := range m.applications {
		stats.TotalApplications++
		stats.ApplicationsByStatus[string(a.Status)]++
	}
	if stats.TotalStudents > 0 {
		stats.PlacementRatePercentage = float64(stats.PlacedStudents) * 100 / float64(stats.TotalStudents)
	}
	return stats, nil
}

func (m *memStore) Ping(_ context.Context) error {
	return m.pingErr
}
