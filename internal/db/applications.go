package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/placement-cell/internal/transition"
	"github.com/jonathan/placement-cell/internal/types"
)

const applicationColumns = `application_id, student_id, company_id, application_status,
	interview_feedback, interview_score, applied_date, updated_at`

func scanApplication(row pgx.Row) (*types.Application, error) {
	var a types.Application
	err := row.Scan(&a.ID, &a.StudentID, &a.CompanyID, &a.Status,
		&a.InterviewFeedback, &a.InterviewScore, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetApplication retrieves an application by ID. Returns (nil, nil) when absent.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE application_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// FindApplication retrieves the application for a (student, company) pair.
// Returns (nil, nil) when the student has not applied.
func (db *DB) FindApplication(ctx context.Context, studentID, companyID uuid.UUID) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE student_id = $1 AND company_id = $2`,
		studentID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return a, nil
}

// ListApplications retrieves applications joined with student and company names,
// newest first.
func (db *DB) ListApplications(ctx context.Context, filters types.ApplicationFilters) ([]types.ApplicationView, error) {
	q := newFilterQuery(`SELECT a.application_id, a.student_id, a.company_id, a.application_status,
			a.interview_feedback, a.interview_score, a.applied_date, a.updated_at,
			s.name, s.roll_number, s.branch, s.batch_year, c.company_name, c.status
		FROM applications a
		JOIN students s ON s.student_id = a.student_id
		JOIN companies c ON c.company_id = a.company_id
		WHERE 1=1`)
	if filters.StudentID != uuid.Nil {
		q.add("a.student_id = $%d", filters.StudentID)
	}
	if filters.CompanyID != uuid.Nil {
		q.add("a.company_id = $%d", filters.CompanyID)
	}
	if filters.Status != "" {
		q.add("a.application_status = $%d", filters.Status)
	}
	q.append(" ORDER BY a.applied_date DESC, a.application_id")

	rows, err := db.pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.ApplicationView{}
	for rows.Next() {
		var v types.ApplicationView
		a := &v.Application
		if err := rows.Scan(&a.ID, &a.StudentID, &a.CompanyID, &a.Status,
			&a.InterviewFeedback, &a.InterviewScore, &a.AppliedAt, &a.UpdatedAt,
			&v.StudentName, &v.RollNumber, &v.Branch, &v.BatchYear, &v.CompanyName, &v.CompanyStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// InsertApplication creates an Applied application. The unique (student_id,
// company_id) constraint decides concurrent duplicates: exactly one insert wins
// and every other caller gets *types.ErrConflict.
func (db *DB) InsertApplication(ctx context.Context, studentID, companyID uuid.UUID) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`INSERT INTO applications (student_id, company_id, application_status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT ON CONSTRAINT applications_student_company_key DO NOTHING
		 RETURNING `+applicationColumns,
		studentID, companyID, types.ApplicationApplied,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ErrConflict{Entity: "application", Message: "student has already applied to this company"}
		}
		if isForeignKeyViolation(err) {
			return nil, db.missingParty(ctx, studentID, companyID)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return a, nil
}

func (db *DB) missingParty(ctx context.Context, studentID, companyID uuid.UUID) error {
	s, err := db.FindStudentByID(ctx, studentID)
	if err != nil {
		return err
	}
	if s == nil {
		return &types.ErrNotFound{Entity: "student", ID: studentID.String()}
	}
	return &types.ErrNotFound{Entity: "company", ID: companyID.String()}
}

// ApplyApplicationStatusTransition locks the application row, plans the change,
// writes it and, when the plan places the student, marks the student placed.
// All writes commit together or not at all.
func (db *DB) ApplyApplicationStatusTransition(ctx context.Context, applicationID uuid.UUID, plan transition.ApplicationPlan) (*transition.ApplicationTransition, error) {
	var result *transition.ApplicationTransition
	err := db.withTx(ctx, "application status transition", func(tx pgx.Tx) error {
		current, err := scanApplication(tx.QueryRow(ctx,
			`SELECT `+applicationColumns+` FROM applications WHERE application_id = $1 FOR UPDATE`,
			applicationID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &types.ErrNotFound{Entity: "application", ID: applicationID.String()}
			}
			return fmt.Errorf("failed to lock application: %w", err)
		}

		planned, err := plan(*current)
		if err != nil {
			return err
		}

		a := planned.Application
		if _, err := tx.Exec(ctx,
			`UPDATE applications
			 SET application_status = $2, interview_feedback = $3, interview_score = $4, updated_at = $5
			 WHERE application_id = $1`,
			applicationID, a.Status, a.InterviewFeedback, a.InterviewScore, a.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		if planned.PlaceStudent {
			if db.beforePlaceStudent != nil {
				if err := db.beforePlaceStudent(ctx); err != nil {
					return fmt.Errorf("failed to mark student placed: %w", err)
				}
			}
			student, err := scanStudent(tx.QueryRow(ctx,
				`UPDATE students SET placement_status = $2, updated_at = $3
				 WHERE student_id = $1
				 RETURNING `+studentColumns,
				current.StudentID, types.PlacementPlaced, a.UpdatedAt,
			))
			if err != nil {
				return fmt.Errorf("failed to mark student placed: %w", err)
			}
			planned.Student = student
		}

		result = planned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteApplication removes an application.
func (db *DB) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM applications WHERE application_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &types.ErrNotFound{Entity: "application", ID: id.String()}
	}
	return nil
}
