package eligibility

import (
	"testing"

	"github.com/jonathan/placement-cell/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unplaced(cgpa float64, branch string) types.Student {
	return types.Student{
		CGPA:            cgpa,
		Branch:          branch,
		PlacementStatus: types.PlacementUnplaced,
	}
}

func TestEvaluate_Example1_Eligible(t *testing.T) {
	student := types.Student{CGPA: 7.5, HasBacklogs: false, Branch: "CS", PlacementStatus: types.PlacementUnplaced}
	req := types.CompanyRequirement{CGPACutoff: 7.0, BacklogsAllowed: false, BranchesAllowed: types.ParseCommaList("CS,IT")}

	result := Evaluate(student, req)

	assert.True(t, result.IsEligible)
	assert.NotNil(t, result.Reasons)
	assert.Empty(t, result.Reasons)
	assert.Empty(t, result.Failed)
}

func TestEvaluate_Example2_FailsThreeRulesInOrder(t *testing.T) {
	student := types.Student{CGPA: 6.0, HasBacklogs: true, BacklogCount: 2, Branch: "ME", PlacementStatus: types.PlacementUnplaced}
	req := types.CompanyRequirement{CGPACutoff: 7.0, BacklogsAllowed: false, BranchesAllowed: types.ParseCommaList("CS,IT")}

	result := Evaluate(student, req)

	assert.False(t, result.IsEligible)
	require.Len(t, result.Reasons, 3)
	assert.Equal(t, "CGPA 6.00 is below cutoff 7.00", result.Reasons[0])
	assert.Equal(t, ReasonBacklogsNotAllowed, result.Reasons[1])
	assert.Equal(t, "Branch ME is not eligible", result.Reasons[2])
	assert.Equal(t, []Rule{RuleCGPA, RuleBacklogs, RuleBranch}, result.Failed)
}

func TestEvaluate_CGPABoundary(t *testing.T) {
	req := types.CompanyRequirement{CGPACutoff: 7.25}

	assert.True(t, Evaluate(unplaced(7.25, "CS"), req).IsEligible, "cgpa equal to cutoff passes")
	assert.True(t, Evaluate(unplaced(7.26, "CS"), req).IsEligible)

	below := Evaluate(unplaced(7.24, "CS"), req)
	assert.False(t, below.IsEligible)
	assert.Equal(t, []string{"CGPA 7.24 is below cutoff 7.25"}, below.Reasons)
}

func TestEvaluate_BacklogPolicy(t *testing.T) {
	tests := []struct {
		name     string
		student  types.Student
		req      types.CompanyRequirement
		expected []string
	}{
		{
			name:     "clean record passes when backlogs disallowed",
			student:  types.Student{},
			req:      types.CompanyRequirement{BacklogsAllowed: false},
			expected: []string{},
		},
		{
			name:     "clean record passes when backlogs allowed with zero max",
			student:  types.Student{},
			req:      types.CompanyRequirement{BacklogsAllowed: true, MaxBacklogs: 0},
			expected: []string{},
		},
		{
			name:     "active backlogs rejected when disallowed",
			student:  types.Student{HasBacklogs: true, BacklogCount: 1},
			req:      types.CompanyRequirement{BacklogsAllowed: false, MaxBacklogs: 5},
			expected: []string{ReasonBacklogsNotAllowed},
		},
		{
			name:     "count within maximum passes",
			student:  types.Student{HasBacklogs: true, BacklogCount: 2},
			req:      types.CompanyRequirement{BacklogsAllowed: true, MaxBacklogs: 2},
			expected: []string{},
		},
		{
			name:     "count above maximum fails",
			student:  types.Student{HasBacklogs: true, BacklogCount: 3},
			req:      types.CompanyRequirement{BacklogsAllowed: true, MaxBacklogs: 2},
			expected: []string{"Backlogs 3 exceed maximum 2"},
		},
		{
			name:     "inconsistent record judged by flag when disallowed",
			student:  types.Student{HasBacklogs: false, BacklogCount: 4},
			req:      types.CompanyRequirement{BacklogsAllowed: false},
			expected: []string{},
		},
		{
			name:     "inconsistent record judged by count when allowed",
			student:  types.Student{HasBacklogs: false, BacklogCount: 4},
			req:      types.CompanyRequirement{BacklogsAllowed: true, MaxBacklogs: 1},
			expected: []string{"Backlogs 4 exceed maximum 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.student.PlacementStatus = types.PlacementUnplaced
			result := Evaluate(tt.student, tt.req)
			assert.Equal(t, tt.expected, result.Reasons)
			assert.Equal(t, len(tt.expected) == 0, result.IsEligible)
		})
	}
}

func TestEvaluate_BranchMatching(t *testing.T) {
	req := types.CompanyRequirement{BranchesAllowed: types.ParseCommaList("CS, IT")}

	assert.True(t, Evaluate(unplaced(9, "IT"), req).IsEligible)
	assert.True(t, Evaluate(unplaced(9, "CS"), req).IsEligible)

	lower := Evaluate(unplaced(9, "it"), req)
	assert.Equal(t, []string{"Branch it is not eligible"}, lower.Reasons)

	longer := Evaluate(unplaced(9, "ITX"), req)
	assert.Equal(t, []string{"Branch ITX is not eligible"}, longer.Reasons)

	// Untrimmed tokens built without ParseCommaList still match after trimming.
	raw := types.CompanyRequirement{BranchesAllowed: types.CommaList{"CS", " IT"}}
	assert.True(t, Evaluate(unplaced(9, "IT"), raw).IsEligible)

	open := types.CompanyRequirement{}
	assert.True(t, Evaluate(unplaced(9, "Anything"), open).IsEligible, "empty list admits all branches")
}

func TestEvaluate_PlacedStudentAlwaysIneligible(t *testing.T) {
	student := types.Student{CGPA: 9.9, Branch: "CS", PlacementStatus: types.PlacementPlaced}
	req := types.CompanyRequirement{CGPACutoff: 6, BranchesAllowed: types.ParseCommaList("CS")}

	result := Evaluate(student, req)

	assert.False(t, result.IsEligible)
	assert.Equal(t, []string{ReasonAlreadyPlaced}, result.Reasons)
}

func TestEvaluate_AllRulesFail(t *testing.T) {
	student := types.Student{CGPA: 5, HasBacklogs: true, BacklogCount: 6, Branch: "ME", PlacementStatus: types.PlacementPlaced}
	req := types.CompanyRequirement{CGPACutoff: 8, BacklogsAllowed: true, MaxBacklogs: 1, BranchesAllowed: types.ParseCommaList("CS")}

	result := Evaluate(student, req)

	assert.Equal(t, []string{
		"CGPA 5.00 is below cutoff 8.00",
		"Backlogs 6 exceed maximum 1",
		"Branch ME is not eligible",
		ReasonAlreadyPlaced,
	}, result.Reasons)
}

func TestEvaluate_EligibleIffNoReasons(t *testing.T) {
	cgpas := []float64{0, 5.5, 7, 7.01, 10}
	branches := []string{"CS", "IT", "ME", "cs"}
	statuses := []types.PlacementStatus{types.PlacementUnplaced, types.PlacementPlaced}
	reqs := []types.CompanyRequirement{
		{},
		{CGPACutoff: 7, BranchesAllowed: types.ParseCommaList("CS,IT")},
		{CGPACutoff: 6, BacklogsAllowed: true, MaxBacklogs: 1},
		{CGPACutoff: 8.5, BacklogsAllowed: false, BranchesAllowed: types.ParseCommaList("ME")},
	}

	for _, cgpa := range cgpas {
		for _, branch := range branches {
			for _, status := range statuses {
				for _, backlogs := range []int{0, 1, 3} {
					for _, req := range reqs {
						student := types.Student{
							CGPA:            cgpa,
							Branch:          branch,
							PlacementStatus: status,
							HasBacklogs:     backlogs > 0,
							BacklogCount:    backlogs,
						}
						result := Evaluate(student, req)
						assert.Equal(t, len(result.Reasons) == 0, result.IsEligible)
						assert.Len(t, result.Failed, len(result.Reasons))
						if status == types.PlacementPlaced {
							assert.False(t, result.IsEligible)
						}
					}
				}
			}
		}
	}
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	student := types.Student{CGPA: 6, Branch: "ME", Skills: types.CommaList{"Go"}, PlacementStatus: types.PlacementUnplaced}
	req := types.CompanyRequirement{CGPACutoff: 7, BranchesAllowed: types.CommaList{"CS"}}

	_ = Evaluate(student, req)

	assert.Equal(t, types.CommaList{"Go"}, student.Skills)
	assert.Equal(t, types.CommaList{"CS"}, req.BranchesAllowed)
	assert.Equal(t, types.PlacementUnplaced, student.PlacementStatus)
}
