package transition

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/types"
)

// DefaultReason is recorded when a company status change arrives without one.
const DefaultReason = "Status update"

// CompanyTransitions is the company lifecycle graph. It is nil: officers may move
// a company between any two states.
var CompanyTransitions Graph[types.CompanyStatus]

// ApplicationTransitions is the application lifecycle graph. It is nil: any status
// may be set directly from any other.
var ApplicationTransitions Graph[types.ApplicationStatus]

// CompanyTransition is a planned company status change and its history entry.
type CompanyTransition struct {
	Company types.Company      `json:"company"`
	Record  types.StatusChange `json:"history"`
}

// ApplicationTransition is a planned application status change. PlaceStudent is
// set iff the new status is Selected; storage fills Student when it applies it.
type ApplicationTransition struct {
	Previous     types.ApplicationStatus `json:"previous_status"`
	Application  types.Application       `json:"application"`
	PlaceStudent bool                    `json:"place_student"`
	Student      *types.Student          `json:"student,omitempty"`
}

// ApplicationUpdate carries the fields written by an application status change.
type ApplicationUpdate struct {
	Status   types.ApplicationStatus
	Feedback *string
	Score    *float64
}

// PlanCompanyTransition computes the updated company and its history record.
// It does not touch storage.
func PlanCompanyTransition(graph Graph[types.CompanyStatus], company types.Company, newStatus types.CompanyStatus, reason string, actorID uuid.UUID, now time.Time) (*CompanyTransition, error) {
	if !graph.Allows(company.Status, newStatus) {
		return nil, &types.ErrInvalidState{
			Field: "company status transition",
			Value: string(company.Status) + " -> " + string(newStatus),
		}
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReason
	}

	updated := company
	updated.Status = newStatus
	updated.UpdatedAt = now

	return &CompanyTransition{
		Company: updated,
		Record: types.StatusChange{
			CompanyID: company.ID,
			OldStatus: company.Status,
			NewStatus: newStatus,
			ChangedBy: actorID,
			Reason:    reason,
			ChangedAt: now,
		},
	}, nil
}

// PlanApplicationTransition computes the updated application and whether the
// student must be marked placed. Nothing here ever un-places a student.
func PlanApplicationTransition(graph Graph[types.ApplicationStatus], app types.Application, update ApplicationUpdate, now time.Time) (*ApplicationTransition, error) {
	if !graph.Allows(app.Status, update.Status) {
		return nil, &types.ErrInvalidState{
			Field: "application status transition",
			Value: string(app.Status) + " -> " + string(update.Status),
		}
	}

	updated := app
	updated.Status = update.Status
	updated.InterviewFeedback = update.Feedback
	updated.InterviewScore = update.Score
	updated.UpdatedAt = now

	return &ApplicationTransition{
		Previous:     app.Status,
		Application:  updated,
		PlaceStudent: update.Status == types.ApplicationSelected,
	}, nil
}
