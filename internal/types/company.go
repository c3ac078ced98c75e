package types

import (
	"time"

	"github.com/google/uuid"
)

// Company is a recruiting company tracked by the placement office.
type Company struct {
	ID          uuid.UUID     `json:"company_id"`
	Name        string        `json:"company_name"`
	Industry    string        `json:"industry,omitempty"`
	City        string        `json:"city,omitempty"`
	State       string        `json:"state,omitempty"`
	CompanySize string        `json:"company_size,omitempty"`
	Website     string        `json:"website,omitempty"`
	Status      CompanyStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CompanySummary is a list row: the company plus its most recent remark.
type CompanySummary struct {
	Company
	LatestRemark *string `json:"latest_remark"`
}

// CompanyRequirement is a company's hiring criteria. A company has at most one,
// and it is replaced wholesale on every company create or update.
type CompanyRequirement struct {
	ID              uuid.UUID `json:"requirement_id"`
	CompanyID       uuid.UUID `json:"company_id"`
	BranchesAllowed CommaList `json:"branches_allowed"` // empty = all branches
	CGPACutoff      float64   `json:"cgpa_cutoff"`
	BacklogsAllowed bool      `json:"backlogs_allowed"`
	MaxBacklogs     int       `json:"max_backlogs"` // only meaningful when BacklogsAllowed
	RequiredSkills  CommaList `json:"required_skills"`
	JobType         JobType   `json:"job_type"`
	CTCMin          *float64  `json:"ctc_min,omitempty"`
	CTCMax          *float64  `json:"ctc_max,omitempty"`
	Stipend         *float64  `json:"stipend,omitempty"`
}

// HRContact is a recruiter contact at a company.
type HRContact struct {
	ID          uuid.UUID `json:"contact_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	Name        string    `json:"hr_name" validate:"required,max=255"`
	Email       string    `json:"hr_email,omitempty" validate:"omitempty,email"`
	Phone       string    `json:"hr_phone,omitempty" validate:"omitempty,max=20"`
	Designation string    `json:"hr_designation,omitempty"`
	IsPrimary   bool      `json:"is_primary"`
}

// Remark is a free-text note an officer attached to a company.
type Remark struct {
	ID        uuid.UUID `json:"remark_id"`
	CompanyID uuid.UUID `json:"company_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"remark_text"`
	CreatedAt time.Time `json:"created_at"`
}

// PlacementRecord is one year of a company's recruiting history at the college.
type PlacementRecord struct {
	ID             uuid.UUID `json:"history_id"`
	CompanyID      uuid.UUID `json:"company_id"`
	Year           int       `json:"year"`
	StudentsPlaced int       `json:"students_placed"`
	HighestCTC     *float64  `json:"highest_ctc,omitempty"`
	AverageCTC     *float64  `json:"average_ctc,omitempty"`
}

// StatusChange is one append-only entry of a company's status history.
type StatusChange struct {
	ID        uuid.UUID     `json:"history_id"`
	CompanyID uuid.UUID     `json:"company_id"`
	OldStatus CompanyStatus `json:"old_status"`
	NewStatus CompanyStatus `json:"new_status"`
	ChangedBy uuid.UUID     `json:"changed_by"`
	Reason    string        `json:"reason"`
	ChangedAt time.Time     `json:"changed_at"`
}

// CompanyDetail is the full view of a company.
type CompanyDetail struct {
	Company
	Contacts         []HRContact         `json:"contacts"`
	Requirement      *CompanyRequirement `json:"requirements"`
	Remarks          []Remark            `json:"remarks"`
	PlacementHistory []PlacementRecord   `json:"placement_history"`
	StatusHistory    []StatusChange      `json:"status_history"`
}

// CompanyFilters holds optional filters for listing companies.
type CompanyFilters struct {
	Status   string
	Industry string
	City     string
	State    string
	JobType  string
	Branch   string
	Search   string
	SortBy   string
	Order    string
}

// RequirementRequest is the requirement part of a company create/update body.
type RequirementRequest struct {
	BranchesAllowed CommaList `json:"branches_allowed"`
	CGPACutoff      float64   `json:"cgpa_cutoff" validate:"gte=0,lte=10"`
	BacklogsAllowed bool      `json:"backlogs_allowed"`
	MaxBacklogs     int       `json:"max_backlogs" validate:"gte=0"`
	RequiredSkills  CommaList `json:"required_skills"`
	JobType         string    `json:"job_type" validate:"required"`
	CTCMin          *float64  `json:"ctc_min,omitempty" validate:"omitempty,gte=0"`
	CTCMax          *float64  `json:"ctc_max,omitempty" validate:"omitempty,gte=0"`
	Stipend         *float64  `json:"stipend,omitempty" validate:"omitempty,gte=0"`
}

// CompanyRequest is the body accepted when creating or updating a company.
// Contacts and Requirements, when present, replace the stored ones wholesale.
type CompanyRequest struct {
	Name         string              `json:"company_name" validate:"required,max=255"`
	Industry     string              `json:"industry,omitempty" validate:"max=100"`
	City         string              `json:"city,omitempty" validate:"max=100"`
	State        string              `json:"state,omitempty" validate:"max=100"`
	CompanySize  string              `json:"company_size,omitempty"`
	Website      string              `json:"website,omitempty" validate:"omitempty,url"`
	Contacts     []HRContact         `json:"contacts,omitempty" validate:"dive"`
	Requirements *RequirementRequest `json:"requirements,omitempty"`
}

// CompanyWrite is a validated company write handed to storage.
type CompanyWrite struct {
	Company     Company
	Contacts    []HRContact         // nil leaves stored contacts untouched on update
	Requirement *CompanyRequirement // nil leaves the stored requirement untouched on update
}

// StatusUpdateRequest is the body of a company status transition.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// RemarkRequest is the body of a new remark.
type RemarkRequest struct {
	Text string `json:"remark_text" validate:"required,max=2000"`
}

// ToWrite converts the request into a storage write, validating the job type.
// New companies start out Prospective.
func (r *CompanyRequest) ToWrite() (*CompanyWrite, error) {
	w := &CompanyWrite{
		Company: Company{
			Name:        r.Name,
			Industry:    r.Industry,
			City:        r.City,
			State:       r.State,
			CompanySize: r.CompanySize,
			Website:     r.Website,
			Status:      CompanyProspective,
		},
	}
	if r.Contacts != nil {
		w.Contacts = make([]HRContact, len(r.Contacts))
		copy(w.Contacts, r.Contacts)
	}
	if r.Requirements != nil {
		jobType, err := ParseJobType(r.Requirements.JobType)
		if err != nil {
			return nil, err
		}
		branches := r.Requirements.BranchesAllowed
		if branches == nil {
			branches = CommaList{}
		}
		skills := r.Requirements.RequiredSkills
		if skills == nil {
			skills = CommaList{}
		}
		w.Requirement = &CompanyRequirement{
			BranchesAllowed: branches,
			CGPACutoff:      r.Requirements.CGPACutoff,
			BacklogsAllowed: r.Requirements.BacklogsAllowed,
			MaxBacklogs:     r.Requirements.MaxBacklogs,
			RequiredSkills:  skills,
			JobType:         jobType,
			CTCMin:          r.Requirements.CTCMin,
			CTCMax:          r.Requirements.CTCMax,
			Stipend:         r.Requirements.Stipend,
		}
	}
	return w, nil
}
