package db

import (
	"context"
	"fmt"

	"github.com/jonathan/placement-cell/internal/types"
)

// SeedAccount is a demo login created by Seed.
type SeedAccount struct {
	Username string
	Email    string
	Role     types.Role
}

// SeedAccounts are the demo logins. They all share the password given to Seed.
var SeedAccounts = []SeedAccount{
	{Username: "admin", Email: "admin@tnp.com", Role: types.RoleAdmin},
	{Username: "officer", Email: "officer@tnp.com", Role: types.RoleTNPOfficer},
	{Username: "student", Email: "student@tnp.com", Role: types.RoleStudent},
}

// SeedReport lists what Seed created; existing records are skipped.
type SeedReport struct {
	Users     []string
	Students  []string
	Companies []string
}

type seedCompany struct {
	name, industry, city string
	status               types.CompanyStatus
	requirement          *types.CompanyRequirement
}

var seedCompanies = []seedCompany{
	{
		name: "TechCorp", industry: "IT", city: "Bangalore", status: types.CompanyActive,
		requirement: &types.CompanyRequirement{
			BranchesAllowed: types.CommaList{"CSE", "IT"},
			CGPACutoff:      7,
			RequiredSkills:  types.CommaList{"React", "Node.js"},
			JobType:         types.JobFullTime,
		},
	},
	{name: "InnoSystems", industry: "Consulting", city: "Pune", status: types.CompanyProspective},
	{
		name: "BizSolutions", industry: "Finance", city: "Mumbai", status: types.CompanyActive,
		requirement: &types.CompanyRequirement{
			CGPACutoff:      6.5,
			BacklogsAllowed: true,
			MaxBacklogs:     1,
			JobType:         types.JobInternshipWithPPO,
		},
	},
}

// Seed creates the demo accounts, the demo student profile and the demo
// companies. It is idempotent.
func (db *DB) Seed(ctx context.Context, passwordHash string) (*SeedReport, error) {
	report := &SeedReport{}

	users := make(map[string]*types.User)
	for _, a := range SeedAccounts {
		u, err := db.GetUserByEmail(ctx, a.Email)
		if err != nil {
			return nil, err
		}
		if u == nil {
			if u, err = db.CreateUser(ctx, a.Username, a.Email, passwordHash, a.Role); err != nil {
				return nil, fmt.Errorf("failed to seed user %s: %w", a.Email, err)
			}
			report.Users = append(report.Users, a.Email)
		}
		users[a.Email] = u
	}

	studentUser := users["student@tnp.com"]
	existing, err := db.FindStudentByUserID(ctx, studentUser.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		_, err := db.CreateStudent(ctx, types.Student{
			UserID:          &studentUser.ID,
			RollNumber:      "CS101",
			Name:            "Demo Student",
			Email:           "student@tnp.com",
			Branch:          "CSE",
			BatchYear:       2024,
			CGPA:            8.5,
			Skills:          types.CommaList{"React", "Node.js"},
			PlacementStatus: types.PlacementUnplaced,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed student: %w", err)
		}
		report.Students = append(report.Students, "CS101")
	}

	current, err := db.ListCompanies(ctx, types.CompanyFilters{})
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(current))
	for _, c := range current {
		have[c.Name] = true
	}
	for _, c := range seedCompanies {
		if have[c.name] {
			continue
		}
		w := &types.CompanyWrite{
			Company:     types.Company{Name: c.name, Industry: c.industry, City: c.city, Status: c.status},
			Requirement: c.requirement,
		}
		if _, err := db.CreateCompany(ctx, w); err != nil {
			return nil, fmt.Errorf("failed to seed company %s: %w", c.name, err)
		}
		report.Companies = append(report.Companies, c.name)
	}

	return report, nil
}
