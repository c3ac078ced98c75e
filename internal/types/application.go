package types

import (
	"time"

	"github.com/google/uuid"
)

// Application links one student to one company. At most one exists per
// (student, company) pair.
type Application struct {
	ID                uuid.UUID         `json:"application_id"`
	StudentID         uuid.UUID         `json:"student_id"`
	CompanyID         uuid.UUID         `json:"company_id"`
	Status            ApplicationStatus `json:"application_status"`
	InterviewFeedback *string           `json:"interview_feedback"`
	InterviewScore    *float64          `json:"interview_score"`
	AppliedAt         time.Time         `json:"applied_date"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ApplicationView is an application joined with its student and company for listings.
type ApplicationView struct {
	Application
	StudentName   string        `json:"student_name"`
	RollNumber    string        `json:"roll_number"`
	Branch        string        `json:"branch"`
	BatchYear     int           `json:"batch_year"`
	CompanyName   string        `json:"company_name"`
	CompanyStatus CompanyStatus `json:"company_status"`
}

// ApplicationFilters holds optional filters for listing applications.
type ApplicationFilters struct {
	StudentID uuid.UUID
	CompanyID uuid.UUID
	Status    string
}

// CreateApplicationRequest is the body of a new application.
type CreateApplicationRequest struct {
	StudentID uuid.UUID `json:"student_id"`
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
}

// UpdateApplicationRequest is the body of an application status change.
type UpdateApplicationRequest struct {
	Status            string   `json:"application_status" validate:"required"`
	InterviewFeedback *string  `json:"interview_feedback,omitempty" validate:"omitempty,max=4000"`
	InterviewScore    *float64 `json:"interview_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}
