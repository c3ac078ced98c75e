package types

import "strings"

// PlacementStatus is a student's placement state.
type PlacementStatus string

// Placement statuses
const (
	PlacementUnplaced PlacementStatus = "Unplaced"
	PlacementPlaced   PlacementStatus = "Placed"
)

// CompanyStatus is the lifecycle state of a recruiting company.
type CompanyStatus string

// Company statuses
const (
	CompanyActive      CompanyStatus = "Active"
	CompanyProspective CompanyStatus = "Prospective"
	CompanyInactive    CompanyStatus = "Inactive"
	CompanyBlacklisted CompanyStatus = "Blacklisted"
)

// ApplicationStatus is the state of a student's application to a company.
type ApplicationStatus string

// Application statuses. Applied is the implicit initial state.
const (
	ApplicationApplied            ApplicationStatus = "Applied"
	ApplicationShortlisted        ApplicationStatus = "Shortlisted"
	ApplicationAptitudeTest       ApplicationStatus = "Aptitude Test"
	ApplicationTechnicalInterview ApplicationStatus = "Technical Interview"
	ApplicationHRInterview        ApplicationStatus = "HR Interview"
	ApplicationSelected           ApplicationStatus = "Selected"
	ApplicationRejected           ApplicationStatus = "Rejected"
	ApplicationWithdrawn          ApplicationStatus = "Withdrawn"
)

// JobType is the kind of offer described by a company requirement.
type JobType string

// Job types
const (
	JobFullTime          JobType = "Full-time"
	JobInternship        JobType = "Internship"
	JobInternshipWithPPO JobType = "Internship+PPO"
)

// Role is a user's access role.
type Role string

// Roles
const (
	RoleAdmin      Role = "admin"
	RoleTNPOfficer Role = "tnp_officer"
	RoleStudent    Role = "student"
)

var (
	placementStatuses   = []PlacementStatus{PlacementUnplaced, PlacementPlaced}
	companyStatuses     = []CompanyStatus{CompanyActive, CompanyProspective, CompanyInactive, CompanyBlacklisted}
	applicationStatuses = []ApplicationStatus{
		ApplicationApplied, ApplicationShortlisted, ApplicationAptitudeTest,
		ApplicationTechnicalInterview, ApplicationHRInterview,
		ApplicationSelected, ApplicationRejected, ApplicationWithdrawn,
	}
	jobTypes = []JobType{JobFullTime, JobInternship, JobInternshipWithPPO}
	roles    = []Role{RoleAdmin, RoleTNPOfficer, RoleStudent}
)

// CompanyStatuses returns every valid company status.
func CompanyStatuses() []CompanyStatus {
	return append([]CompanyStatus(nil), companyStatuses...)
}

// ApplicationStatuses returns every valid application status.
func ApplicationStatuses() []ApplicationStatus {
	return append([]ApplicationStatus(nil), applicationStatuses...)
}

func parseEnum[S ~string](field, value string, valid []S) (S, error) {
	v := S(strings.TrimSpace(value))
	for _, candidate := range valid {
		if v == candidate {
			return v, nil
		}
	}
	return "", &ErrInvalidState{Field: field, Value: value}
}

// ParsePlacementStatus validates a placement status value.
func ParsePlacementStatus(s string) (PlacementStatus, error) {
	return parseEnum("placement_status", s, placementStatuses)
}

// ParseCompanyStatus validates a company status value.
func ParseCompanyStatus(s string) (CompanyStatus, error) {
	return parseEnum("company status", s, companyStatuses)
}

// ParseApplicationStatus validates an application status value.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	return parseEnum("application_status", s, applicationStatuses)
}

// ParseJobType validates a job type value.
func ParseJobType(s string) (JobType, error) {
	return parseEnum("job_type", s, jobTypes)
}

// ParseRole validates a role value.
func ParseRole(s string) (Role, error) {
	return parseEnum("role", s, roles)
}

// CanManage reports whether the role may run officer-level operations.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleTNPOfficer
}
