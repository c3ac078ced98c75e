package types

import (
	"time"

	"github.com/google/uuid"
)

// Student is a student's academic and placement profile.
// BacklogCount > 0 normally implies HasBacklogs, but storage does not enforce it.
type Student struct {
	ID              uuid.UUID       `json:"student_id"`
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
	RollNumber      string          `json:"roll_number"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	Branch          string          `json:"branch"`
	BatchYear       int             `json:"batch_year"`
	CGPA            float64         `json:"cgpa"`
	HasBacklogs     bool            `json:"has_backlogs"`
	BacklogCount    int             `json:"backlog_count"`
	Skills          CommaList       `json:"skills"`
	PlacementStatus PlacementStatus `json:"placement_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsPlaced reports whether the placement ratchet has fired for this student.
func (s *Student) IsPlaced() bool {
	return s.PlacementStatus == PlacementPlaced
}

// StudentDetail is a student together with their applications.
type StudentDetail struct {
	Student
	Applications []ApplicationView `json:"applications"`
}

// StudentFilters holds optional filters for listing students.
type StudentFilters struct {
	Branch          string
	BatchYear       int
	PlacementStatus string
	Search          string
	SortBy          string
	Order           string
}

// StudentRequest is the body accepted when creating or editing a student.
type StudentRequest struct {
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	RollNumber      string     `json:"roll_number" validate:"required,max=32"`
	Name            string     `json:"name" validate:"required,max=255"`
	Email           string     `json:"email" validate:"required,email"`
	Phone           string     `json:"phone,omitempty" validate:"omitempty,max=20"`
	Branch          string     `json:"branch" validate:"required,max=32"`
	BatchYear       int        `json:"batch_year" validate:"required,gte=1990,lte=2100"`
	CGPA            float64    `json:"cgpa" validate:"gte=0,lte=10"`
	HasBacklogs     bool       `json:"has_backlogs"`
	BacklogCount    int        `json:"backlog_count" validate:"gte=0"`
	Skills          CommaList  `json:"skills"`
	PlacementStatus string     `json:"placement_status,omitempty"`
}

// ToStudent converts the request into a Student record. The placement status must
// already have been validated with ParsePlacementStatus; blank means Unplaced.
func (r *StudentRequest) ToStudent(status PlacementStatus) Student {
	if status == "" {
		status = PlacementUnplaced
	}
	skills := r.Skills
	if skills == nil {
		skills = CommaList{}
	}
	return Student{
		UserID:          r.UserID,
		RollNumber:      r.RollNumber,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Branch:          r.Branch,
		BatchYear:       r.BatchYear,
		CGPA:            r.CGPA,
		HasBacklogs:     r.HasBacklogs,
		BacklogCount:    r.BacklogCount,
		Skills:          skills,
		PlacementStatus: status,
	}
}

// EligibilityRequest is the body of a single eligibility check.
type EligibilityRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
}
