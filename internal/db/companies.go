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

const companyColumns = `c.company_id, c.company_name, c.industry, c.city, c.state, c.company_size,
	c.website, c.status, c.created_at, c.updated_at`

const requirementColumns = `requirement_id, company_id, branches_allowed, cgpa_cutoff, backlogs_allowed,
	max_backlogs, required_skills, job_type, ctc_min, ctc_max, stipend`

var companySort = sortSpec{
	columns: map[string]string{
		"company_name": "c.company_name",
		"created_at":   "c.created_at",
		"status":       "c.status",
	},
	defaultOrder: "c.created_at DESC",
	defaultDesc:  true,
}

func companyScanTargets(c *types.Company) []any {
	return []any{&c.ID, &c.Name, &c.Industry, &c.City, &c.State, &c.CompanySize,
		&c.Website, &c.Status, &c.CreatedAt, &c.UpdatedAt}
}

func scanRequirement(row pgx.Row) (*types.CompanyRequirement, error) {
	var (
		r        types.CompanyRequirement
		branches []string
		skills   []string
	)
	err := row.Scan(&r.ID, &r.CompanyID, &branches, &r.CGPACutoff, &r.BacklogsAllowed,
		&r.MaxBacklogs, &skills, &r.JobType, &r.CTCMin, &r.CTCMax, &r.Stipend)
	if err != nil {
		return nil, err
	}
	r.BranchesAllowed = types.NewCommaList(branches)
	r.RequiredSkills = types.NewCommaList(skills)
	return &r, nil
}

// GetCompany retrieves a company by ID. Returns (nil, nil) when absent.
func (db *DB) GetCompany(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	var c types.Company
	err := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies c WHERE c.company_id = $1`, id,
	).Scan(companyScanTargets(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// ListCompanies retrieves companies with optional filters, each with its latest remark.
func (db *DB) ListCompanies(ctx context.Context, filters types.CompanyFilters) ([]types.CompanySummary, error) {
	q := newFilterQuery(`SELECT ` + companyColumns + `,
		(SELECT remark_text FROM company_remarks WHERE company_id = c.company_id
		 ORDER BY created_at DESC LIMIT 1) AS latest_remark
		FROM companies c
		LEFT JOIN company_requirements cr ON cr.company_id = c.company_id
		WHERE 1=1`)
	if filters.Status != "" {
		q.add("c.status = $%d", filters.Status)
	}
	if filters.Industry != "" {
		q.add("c.industry ILIKE $%d", likePattern(filters.Industry))
	}
	if filters.City != "" {
		q.add("c.city ILIKE $%d", likePattern(filters.City))
	}
	if filters.State != "" {
		q.add("c.state ILIKE $%d", likePattern(filters.State))
	}
	if filters.JobType != "" {
		q.add("cr.job_type = $%d", filters.JobType)
	}
	if filters.Branch != "" {
		q.add("$%d = ANY(cr.branches_allowed)", filters.Branch)
	}
	if filters.Search != "" {
		q.add("(c.company_name ILIKE $%d OR c.industry ILIKE $%d)", likePattern(filters.Search), likePattern(filters.Search))
	}
	q.append(companySort.orderBy(filters.SortBy, filters.Order))

	rows, err := db.pool.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []types.CompanySummary{}
	for rows.Next() {
		var s types.CompanySummary
		targets := append(companyScanTargets(&s.Company), &s.LatestRemark)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCompanyDetail returns a company with its contacts, requirement, remarks,
// placement history and status history. Returns (nil, nil) when absent.
func (db *DB) GetCompanyDetail(ctx context.Context, id uuid.UUID) (*types.CompanyDetail, error) {
	c, err := db.GetCompany(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}

	detail := &types.CompanyDetail{Company: *c}
	if detail.Contacts, err = db.ListContacts(ctx, id); err != nil {
		return nil, err
	}
	if detail.Requirement, err = db.FindRequirementByCompanyID(ctx, id); err != nil {
		return nil, err
	}
	if detail.Remarks, err = db.ListRemarks(ctx, id); err != nil {
		return nil, err
	}
	if detail.PlacementHistory, err = db.ListPlacementHistory(ctx, id); err != nil {
		return nil, err
	}
	if detail.StatusHistory, err = db.ListStatusHistory(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

// FindRequirementByCompanyID retrieves a company's requirement. Returns (nil, nil)
// when the company has none.
func (db *DB) FindRequirementByCompanyID(ctx context.Context, companyID uuid.UUID) (*types.CompanyRequirement, error) {
	r, err := scanRequirement(db.pool.QueryRow(ctx,
		`SELECT `+requirementColumns+` FROM company_requirements WHERE company_id = $1`, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	return r, nil
}

// ListRequirements retrieves the requirement of every company that has one.
func (db *DB) ListRequirements(ctx context.Context) ([]types.CompanyRequirement, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+requirementColumns+` FROM company_requirements ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	reqs := []types.CompanyRequirement{}
	for rows.Next() {
		r, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		reqs = append(reqs, *r)
	}
	return reqs, rows.Err()
}

// ListContacts retrieves a company's HR contacts, primary contacts first.
func (db *DB) ListContacts(ctx context.Context, companyID uuid.UUID) ([]types.HRContact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT contact_id, company_id, hr_name, hr_email, hr_phone, hr_designation, is_primary
		 FROM company_hr_contacts WHERE company_id = $1
		 ORDER BY is_primary DESC, hr_name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []types.HRContact{}
	for rows.Next() {
		var h types.HRContact
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Name, &h.Email, &h.Phone, &h.Designation, &h.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, h)
	}
	return contacts, rows.Err()
}

// ListRemarks retrieves a company's remarks with their authors, newest first.
func (db *DB) ListRemarks(ctx context.Context, companyID uuid.UUID) ([]types.Remark, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT r.remark_id, r.company_id, r.user_id, u.username, r.remark_text, r.created_at
		 FROM company_remarks r
		 JOIN users u ON u.user_id = r.user_id
		 WHERE r.company_id = $1
		 ORDER BY r.created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remarks: %w", err)
	}
	defer rows.Close()

	remarks := []types.Remark{}
	for rows.Next() {
		var r types.Remark
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.UserID, &r.Username, &r.Text, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan remark: %w", err)
		}
		remarks = append(remarks, r)
	}
	return remarks, rows.Err()
}

// ListPlacementHistory retrieves a company's yearly placement records, latest year first.
func (db *DB) ListPlacementHistory(ctx context.Context, companyID uuid.UUID) ([]types.PlacementRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT history_id, company_id, year, students_placed, highest_ctc, average_ctc
		 FROM company_placement_history WHERE company_id = $1
		 ORDER BY year DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list placement history: %w", err)
	}
	defer rows.Close()

	records := []types.PlacementRecord{}
	for rows.Next() {
		var p types.PlacementRecord
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Year, &p.StudentsPlaced, &p.HighestCTC, &p.AverageCTC); err != nil {
			return nil, fmt.Errorf("failed to scan placement record: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// ListStatusHistory retrieves a company's status changes, newest first.
func (db *DB) ListStatusHistory(ctx context.Context, companyID uuid.UUID) ([]types.StatusChange, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT history_id, company_id, old_status, new_status, user_id, reason, changed_at
		 FROM company_status_history WHERE company_id = $1
		 ORDER BY changed_at DESC, history_id DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	history := []types.StatusChange{}
	for rows.Next() {
		var h types.StatusChange
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.OldStatus, &h.NewStatus, &h.ChangedBy, &h.Reason, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// CreateCompany inserts a company with its contacts and requirement in one transaction.
func (db *DB) CreateCompany(ctx context.Context, w *types.CompanyWrite) (*types.CompanyDetail, error) {
	if w.Company.Status == "" {
		w.Company.Status = types.CompanyProspective
	}

	var id uuid.UUID
	err := db.withTx(ctx, "company create", func(tx pgx.Tx) error {
		c := w.Company
		if err := tx.QueryRow(ctx,
			`INSERT INTO companies (company_name, industry, city, state, company_size, website, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING company_id`,
			c.Name, c.Industry, c.City, c.State, c.CompanySize, c.Website, c.Status,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert company: %w", err)
		}
		return writeCompanyChildren(ctx, tx, id, w)
	})
	if err != nil {
		return nil, err
	}
	return db.GetCompanyDetail(ctx, id)
}

// UpdateCompany overwrites a company's profile. Contacts and requirement are
// replaced wholesale when present in w and left untouched when nil.
func (db *DB) UpdateCompany(ctx context.Context, id uuid.UUID, w *types.CompanyWrite) (*types.CompanyDetail, error) {
	err := db.withTx(ctx, "company update", func(tx pgx.Tx) error {
		c := w.Company
		tag, err := tx.Exec(ctx,
			`UPDATE companies SET company_name = $2, industry = $3, city = $4, state = $5,
				company_size = $6, website = $7, updated_at = NOW()
			 WHERE company_id = $1`,
			id, c.Name, c.Industry, c.City, c.State, c.CompanySize, c.Website,
		)
		if err != nil {
			return fmt.Errorf("failed to update company: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &types.ErrNotFound{Entity: "company", ID: id.String()}
		}
		return writeCompanyChildren(ctx, tx, id, w)
	})
	if err != nil {
		return nil, err
	}
	return db.GetCompanyDetail(ctx, id)
}

func writeCompanyChildren(ctx context.Context, tx pgx.Tx, companyID uuid.UUID, w *types.CompanyWrite) error {
	if w.Contacts != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM company_hr_contacts WHERE company_id = $1`, companyID); err != nil {
			return fmt.Errorf("failed to clear contacts: %w", err)
		}
		for _, h := range w.Contacts {
			if _, err := tx.Exec(ctx,
				`INSERT INTO company_hr_contacts (company_id, hr_name, hr_email, hr_phone, hr_designation, is_primary)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				companyID, h.Name, h.Email, h.Phone, h.Designation, h.IsPrimary,
			); err != nil {
				return fmt.Errorf("failed to insert contact: %w", err)
			}
		}
	}

	if r := w.Requirement; r != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM company_requirements WHERE company_id = $1`, companyID); err != nil {
			return fmt.Errorf("failed to clear requirement: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO company_requirements (company_id, branches_allowed, cgpa_cutoff, backlogs_allowed,
				max_backlogs, required_skills, job_type, ctc_min, ctc_max, stipend)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			companyID, []string(types.NewCommaList(r.BranchesAllowed)), r.CGPACutoff, r.BacklogsAllowed,
			r.MaxBacklogs, []string(types.NewCommaList(r.RequiredSkills)), r.JobType, r.CTCMin, r.CTCMax, r.Stipend,
		); err != nil {
			return fmt.Errorf("failed to insert requirement: %w", err)
		}
	}
	return nil
}

// DeleteCompany removes a company and everything that references it.
func (db *DB) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM companies WHERE company_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &types.ErrNotFound{Entity: "company", ID: id.String()}
	}
	return nil
}

// AddRemark attaches a remark by userID to a company.
func (db *DB) AddRemark(ctx context.Context, companyID, userID uuid.UUID, text string) (*types.Remark, error) {
	r := types.Remark{CompanyID: companyID, UserID: userID, Text: text}
	err := db.pool.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO company_remarks (company_id, user_id, remark_text)
			VALUES ($1, $2, $3)
			RETURNING remark_id, user_id, created_at
		 )
		 SELECT i.remark_id, u.username, i.created_at
		 FROM inserted i JOIN users u ON u.user_id = i.user_id`,
		companyID, userID, text,
	).Scan(&r.ID, &r.Username, &r.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &types.ErrNotFound{Entity: "company", ID: companyID.String()}
		}
		return nil, fmt.Errorf("failed to add remark: %w", err)
	}
	return &r, nil
}

// AddPlacementRecord records one year of placements for a company.
func (db *DB) AddPlacementRecord(ctx context.Context, p types.PlacementRecord) (*types.PlacementRecord, error) {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO company_placement_history (company_id, year, students_placed, highest_ctc, average_ctc)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING history_id`,
		p.CompanyID, p.Year, p.StudentsPlaced, p.HighestCTC, p.AverageCTC,
	).Scan(&p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &types.ErrNotFound{Entity: "company", ID: p.CompanyID.String()}
		}
		return nil, fmt.Errorf("failed to add placement record: %w", err)
	}
	return &p, nil
}

// ApplyCompanyStatusTransition locks the company row, plans the change and writes
// the new status together with its history record.
func (db *DB) ApplyCompanyStatusTransition(ctx context.Context, companyID uuid.UUID, plan transition.CompanyPlan) (*transition.CompanyTransition, error) {
	var result *transition.CompanyTransition
	err := db.withTx(ctx, "company status transition", func(tx pgx.Tx) error {
		var current types.Company
		err := tx.QueryRow(ctx,
			`SELECT `+companyColumns+` FROM companies c WHERE c.company_id = $1 FOR UPDATE`, companyID,
		).Scan(companyScanTargets(&current)...)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &types.ErrNotFound{Entity: "company", ID: companyID.String()}
			}
			return fmt.Errorf("failed to lock company: %w", err)
		}

		planned, err := plan(current)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE companies SET status = $2, updated_at = $3 WHERE company_id = $1`,
			companyID, planned.Company.Status, planned.Company.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to update company status: %w", err)
		}

		rec := &planned.Record
		if err := tx.QueryRow(ctx,
			`INSERT INTO company_status_history (company_id, user_id, old_status, new_status, reason, changed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING history_id`,
			rec.CompanyID, rec.ChangedBy, rec.OldStatus, rec.NewStatus, rec.Reason, rec.ChangedAt,
		).Scan(&rec.ID); err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}

		result = planned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
