// Package eligibility decides whether a student's profile satisfies a company's
// hiring requirements.
package eligibility

import (
	"fmt"

	"github.com/jonathan/placement-cell/internal/types"
)

// Reasons for failed rules that carry no values.
const (
	ReasonBacklogsNotAllowed = "Company does not allow active backlogs"
	ReasonAlreadyPlaced      = "Student is already placed"
)

// Rule names one eligibility check. The names are stable identifiers; the
// reason text that accompanies a failure may change.
type Rule string

// Rules, in evaluation order.
const (
	RuleCGPA      Rule = "cgpa"
	RuleBacklogs  Rule = "backlogs"
	RuleBranch    Rule = "branch"
	RulePlacement Rule = "placement"
)

// Result is the outcome of evaluating one student against one requirement.
// IsEligible is true iff Reasons is empty. Failed[i] is the rule behind Reasons[i].
type Result struct {
	IsEligible bool     `json:"isEligible"`
	Reasons    []string `json:"reasons"`
	Failed     []Rule   `json:"-"`
}

// check returns a failure reason, or "" when the student passes.
type check func(s *types.Student, r *types.CompanyRequirement) string

// rules run in declaration order; every failing rule contributes its reason.
var rules = []struct {
	name  Rule
	check check
}{
	{RuleCGPA, checkCGPA},
	{RuleBacklogs, checkBacklogs},
	{RuleBranch, checkBranch},
	{RulePlacement, checkPlacement},
}

// Evaluate applies every rule to the student and requirement. It never
// short-circuits, so a student can fail several rules at once.
func Evaluate(student types.Student, requirement types.CompanyRequirement) Result {
	reasons := make([]string, 0, len(rules))
	failed := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if reason := r.check(&student, &requirement); reason != "" {
			reasons = append(reasons, reason)
			failed = append(failed, r.name)
		}
	}
	return Result{
		IsEligible: len(reasons) == 0,
		Reasons:    reasons,
		Failed:     failed,
	}
}

func checkCGPA(s *types.Student, r *types.CompanyRequirement) string {
	if s.CGPA < r.CGPACutoff {
		return fmt.Sprintf("CGPA %.2f is below cutoff %.2f", s.CGPA, r.CGPACutoff)
	}
	return ""
}

// checkBacklogs branches on BacklogsAllowed, so it yields at most one reason.
// The flag and the count are read independently; an inconsistent record is judged
// by whichever field its branch looks at.
func checkBacklogs(s *types.Student, r *types.CompanyRequirement) string {
	if !r.BacklogsAllowed {
		if s.HasBacklogs {
			return ReasonBacklogsNotAllowed
		}
		return ""
	}
	if s.BacklogCount > r.MaxBacklogs {
		return fmt.Sprintf("Backlogs %d exceed maximum %d", s.BacklogCount, r.MaxBacklogs)
	}
	return ""
}

// checkBranch matches exactly (case-sensitive) against the trimmed tokens.
// An empty list admits every branch.
func checkBranch(s *types.Student, r *types.CompanyRequirement) string {
	if len(r.BranchesAllowed) == 0 {
		return ""
	}
	if !r.BranchesAllowed.Contains(s.Branch) {
		return fmt.Sprintf("Branch %s is not eligible", s.Branch)
	}
	return ""
}

func checkPlacement(s *types.Student, _ *types.CompanyRequirement) string {
	if s.IsPlaced() {
		return ReasonAlreadyPlaced
	}
	return ""
}
