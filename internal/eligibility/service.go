package eligibility

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/types"
	"golang.org/x/sync/errgroup"
)

// Finder loads the records an eligibility check needs. Find* methods return
// (nil, nil) when the record does not exist.
type Finder interface {
	FindStudentByID(ctx context.Context, id uuid.UUID) (*types.Student, error)
	FindRequirementByCompanyID(ctx context.Context, companyID uuid.UUID) (*types.CompanyRequirement, error)
	ListStudents(ctx context.Context, filters types.StudentFilters) ([]types.Student, error)
	ListRequirements(ctx context.Context) ([]types.CompanyRequirement, error)
}

// Recorder is notified of every evaluation. It may be nil.
type Recorder interface {
	ObserveEligibility(result Result)
}

// StudentResult pairs a student with their evaluation.
type StudentResult struct {
	Student types.Student `json:"student"`
	Result
}

// CompanyResult pairs a company requirement with a student's evaluation against it.
type CompanyResult struct {
	CompanyID   uuid.UUID                `json:"company_id"`
	Requirement types.CompanyRequirement `json:"requirement"`
	Result
}

// Service loads students and requirements and evaluates them.
type Service struct {
	finder   Finder
	recorder Recorder
}

// NewService creates a new Service.
func NewService(finder Finder, recorder Recorder) *Service {
	return &Service{finder: finder, recorder: recorder}
}

// Check evaluates one student against one company's requirement. A missing
// student or requirement is reported as *types.ErrNotFound.
func (s *Service) Check(ctx context.Context, studentID, companyID uuid.UUID) (*Result, error) {
	var (
		student     *types.Student
		requirement *types.CompanyRequirement
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		student, err = s.finder.FindStudentByID(gCtx, studentID)
		if err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		requirement, err = s.finder.FindRequirementByCompanyID(gCtx, companyID)
		if err != nil {
			return fmt.Errorf("failed to load requirement: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if student == nil {
		return nil, &types.ErrNotFound{Entity: "student", ID: studentID.String()}
	}
	if requirement == nil {
		return nil, &types.ErrNotFound{Entity: "company requirement", ID: companyID.String()}
	}

	result := s.evaluate(*student, *requirement)
	return &result, nil
}

// EligibleStudents evaluates every student matching filters against one company.
// It returns all evaluations; callers filter on IsEligible as needed.
func (s *Service) EligibleStudents(ctx context.Context, companyID uuid.UUID, filters types.StudentFilters) ([]StudentResult, error) {
	requirement, err := s.finder.FindRequirementByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirement: %w", err)
	}
	if requirement == nil {
		return nil, &types.ErrNotFound{Entity: "company requirement", ID: companyID.String()}
	}

	students, err := s.finder.ListStudents(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	results := make([]StudentResult, 0, len(students))
	for _, st := range students {
		results = append(results, StudentResult{Student: st, Result: s.evaluate(st, *requirement)})
	}
	return results, nil
}

// EligibleCompanies evaluates one student against every company that has a requirement.
func (s *Service) EligibleCompanies(ctx context.Context, studentID uuid.UUID) ([]CompanyResult, error) {
	student, err := s.finder.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		return nil, &types.ErrNotFound{Entity: "student", ID: studentID.String()}
	}

	requirements, err := s.finder.ListRequirements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}

	results := make([]CompanyResult, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, CompanyResult{
			CompanyID:   req.CompanyID,
			Requirement: req,
			Result:      s.evaluate(*student, req),
		})
	}
	return results, nil
}

func (s *Service) evaluate(student types.Student, requirement types.CompanyRequirement) Result {
	result := Evaluate(student, requirement)
	if s.recorder != nil {
		s.recorder.ObserveEligibility(result)
	}
	return result
}
