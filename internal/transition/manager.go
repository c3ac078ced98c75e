package transition

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/types"
)

// Validation errors returned before the store is called.
var (
	ErrMissingActor = errors.New("status change requires an acting user")
	ErrMissingParty = errors.New("application requires a student and a company")
)

// CompanyPlan is called by the store inside its transaction with the locked,
// current company row.
type CompanyPlan func(current types.Company) (*CompanyTransition, error)

// ApplicationPlan is called by the store inside its transaction with the locked,
// current application row.
type ApplicationPlan func(current types.Application) (*ApplicationTransition, error)

// Store applies planned transitions. Each Apply* call is one atomic unit: either
// every write it makes is committed or none is. Missing rows are *types.ErrNotFound;
// duplicate applications are *types.ErrConflict; failed commits are *types.ErrAtomicity.
type Store interface {
	ApplyCompanyStatusTransition(ctx context.Context, companyID uuid.UUID, plan CompanyPlan) (*CompanyTransition, error)
	ApplyApplicationStatusTransition(ctx context.Context, applicationID uuid.UUID, plan ApplicationPlan) (*ApplicationTransition, error)
	InsertApplication(ctx context.Context, studentID, companyID uuid.UUID) (*types.Application, error)
}

// Observer is told about applied transitions.
type Observer interface {
	ObserveCompanyTransition(from, to types.CompanyStatus)
	ObserveApplicationTransition(from, to types.ApplicationStatus, placedStudent bool)
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver registers an observer for applied transitions.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithCompanyGraph replaces the company lifecycle graph.
func WithCompanyGraph(g Graph[types.CompanyStatus]) Option {
	return func(m *Manager) {
		m.companyGraph = g
	}
}

// WithApplicationGraph replaces the application lifecycle graph.
func WithApplicationGraph(g Graph[types.ApplicationStatus]) Option {
	return func(m *Manager) {
		m.applicationGraph = g
	}
}

// Manager validates status changes and hands them to the store as atomic units.
// It holds no mutable state between calls.
type Manager struct {
	store            Store
	observer         Observer
	now              func() time.Time
	companyGraph     Graph[types.CompanyStatus]
	applicationGraph Graph[types.ApplicationStatus]
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:            store,
		now:              func() time.Time { return time.Now().UTC() },
		companyGraph:     CompanyTransitions,
		applicationGraph: ApplicationTransitions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TransitionCompany moves a company to newStatus and appends a history record.
// An unknown status is rejected before anything is written.
func (m *Manager) TransitionCompany(ctx context.Context, companyID uuid.UUID, newStatus, reason string, actorID uuid.UUID) (*CompanyTransition, error) {
	status, err := types.ParseCompanyStatus(newStatus)
	if err != nil {
		return nil, err
	}
	if actorID == uuid.Nil {
		return nil, ErrMissingActor
	}

	now := m.now()
	result, err := m.store.ApplyCompanyStatusTransition(ctx, companyID, func(current types.Company) (*CompanyTransition, error) {
		return PlanCompanyTransition(m.companyGraph, current, status, reason, actorID, now)
	})
	if err != nil {
		return nil, err
	}

	if m.observer != nil {
		m.observer.ObserveCompanyTransition(result.Record.OldStatus, result.Record.NewStatus)
	}
	return result, nil
}

// TransitionApplication sets an application's status, feedback and score. Moving
// to Selected marks the student placed in the same atomic unit.
func (m *Manager) TransitionApplication(ctx context.Context, applicationID uuid.UUID, newStatus string, feedback *string, score *float64) (*ApplicationTransition, error) {
	status, err := types.ParseApplicationStatus(newStatus)
	if err != nil {
		return nil, err
	}

	update := ApplicationUpdate{Status: status, Feedback: feedback, Score: score}
	now := m.now()
	result, err := m.store.ApplyApplicationStatusTransition(ctx, applicationID, func(current types.Application) (*ApplicationTransition, error) {
		return PlanApplicationTransition(m.applicationGraph, current, update, now)
	})
	if err != nil {
		return nil, err
	}

	if m.observer != nil {
		m.observer.ObserveApplicationTransition(result.Previous, result.Application.Status, result.PlaceStudent)
	}
	return result, nil
}

// Apply creates an application in the Applied state. A second application for
// the same student and company is a *types.ErrConflict.
func (m *Manager) Apply(ctx context.Context, studentID, companyID uuid.UUID) (*types.Application, error) {
	if studentID == uuid.Nil || companyID == uuid.Nil {
		return nil, ErrMissingParty
	}
	return m.store.InsertApplication(ctx, studentID, companyID)
}
