package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/placement-cell/internal/types"
)

const studentColumns = `student_id, user_id, roll_number, name, email, phone, branch, batch_year,
	cgpa, has_backlogs, backlog_count, skills, placement_status, created_at, updated_at`

var studentSort = sortSpec{
	columns: map[string]string{
		"name":        "name",
		"cgpa":        "cgpa",
		"roll_number": "roll_number",
		"batch_year":  "batch_year",
	},
	defaultOrder: "roll_number ASC",
}

func scanStudent(row pgx.Row) (*types.Student, error) {
	var (
		s      types.Student
		skills []string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.RollNumber, &s.Name, &s.Email, &s.Phone, &s.Branch, &s.BatchYear,
		&s.CGPA, &s.HasBacklogs, &s.BacklogCount, &skills, &s.PlacementStatus, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Skills = types.NewCommaList(skills)
	return &s, nil
}

func studentConflict(err error) error {
	switch {
	case isUniqueViolation(err, "students_roll_number_key"):
		return &types.ErrConflict{Entity: "student", Message: "roll number already exists"}
	case isUniqueViolation(err, "students_email_key"):
		return &types.ErrConflict{Entity: "student", Message: "email already exists"}
	case isUniqueViolation(err, ""):
		return &types.ErrConflict{Entity: "student", Message: "student already exists"}
	}
	return nil
}

// FindStudentByID retrieves a student by ID. Returns (nil, nil) when absent.
func (db *DB) FindStudentByID(ctx context.Context, id uuid.UUID) (*types.Student, error) {
	s, err := scanStudent(db.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE student_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

// FindStudentByUserID retrieves the student profile linked to an account.
// Returns (nil, nil) when the account has none.
func (db *DB) FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*types.Student, error) {
	s, err := scanStudent(db.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student by user: %w", err)
	}
	return s, nil
}

// GetStudentDetail returns a student with their applications, newest first.
// Returns (nil, nil) when the student does not exist.
func (db *DB) GetStudentDetail(ctx context.Context, id uuid.UUID) (*types.StudentDetail, error) {
	s, err := db.FindStudentByID(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}

	apps, err := db.ListApplications(ctx, types.ApplicationFilters{StudentID: id})
	if err != nil {
		return nil, err
	}
	return &types.StudentDetail{Student: *s, Applications: apps}, nil
}

// ListStudents retrieves students with optional filters and whitelisted sorting.
func (db *DB) ListStudents(ctx context.Context, filters types.StudentFilters) ([]types.Student, error) {
	q := newFilterQuery(`SELECT ` + studentColumns + ` FROM students WHERE 1=1`)
	if filters.Branch != "" {
		q.add("branch = $%d", filters.Branch)
	}
	if filters.BatchYear != 0 {
		q.add("batch_year = $%d", filters.BatchYear)
	}
	if filters.PlacementStatus != "" {
		q.add("placement_status = $%d", filters.PlacementStatus)
	}
	if filters.Search != "" {
		q.add("(name ILIKE $%d OR roll_number ILIKE $%d)", likePattern(filters.Search), likePattern(filters.Search))
	}
	q.append(studentSort.orderBy(filters.SortBy, filters.Order))

	rows, err := db.pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []types.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// CreateStudent inserts a student. Duplicate roll numbers or emails are *types.ErrConflict.
func (db *DB) CreateStudent(ctx context.Context, s types.Student) (*types.Student, error) {
	if s.PlacementStatus == "" {
		s.PlacementStatus = types.PlacementUnplaced
	}
	created, err := scanStudent(db.pool.QueryRow(ctx,
		`INSERT INTO students (user_id, roll_number, name, email, phone, branch, batch_year,
			cgpa, has_backlogs, backlog_count, skills, placement_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+studentColumns,
		s.UserID, s.RollNumber, s.Name, s.Email, s.Phone, s.Branch, s.BatchYear,
		s.CGPA, s.HasBacklogs, s.BacklogCount, []string(types.NewCommaList(s.Skills)), s.PlacementStatus,
	))
	if err != nil {
		if conflict := studentConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return created, nil
}

// UpdateStudent overwrites a student's profile. When keepPlacement is set, or the
// status is blank, the stored placement status is left as is; otherwise it is
// written as sent, which is how an officer corrects a mistaken placement.
func (db *DB) UpdateStudent(ctx context.Context, id uuid.UUID, s types.Student, keepPlacement bool) (*types.Student, error) {
	if s.PlacementStatus == "" {
		keepPlacement = true
	}
	updated, err := scanStudent(db.pool.QueryRow(ctx,
		`UPDATE students SET
			roll_number = $2, name = $3, email = $4, phone = $5, branch = $6, batch_year = $7,
			cgpa = $8, has_backlogs = $9, backlog_count = $10, skills = $11,
			placement_status = CASE
				WHEN $12 THEN placement_status
				ELSE $13
			END,
			updated_at = NOW()
		 WHERE student_id = $1
		 RETURNING `+studentColumns,
		id, s.RollNumber, s.Name, s.Email, s.Phone, s.Branch, s.BatchYear,
		s.CGPA, s.HasBacklogs, s.BacklogCount, []string(types.NewCommaList(s.Skills)),
		keepPlacement, string(s.PlacementStatus),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ErrNotFound{Entity: "student", ID: id.String()}
		}
		if conflict := studentConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return updated, nil
}

// DeleteStudent removes a student and, by cascade, their applications.
func (db *DB) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM students WHERE student_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &types.ErrNotFound{Entity: "student", ID: id.String()}
	}
	return nil
}
