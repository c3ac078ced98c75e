package db

import (
	"context"
	"fmt"

	"github.com/jonathan/placement-cell/internal/types"
	"golang.org/x/sync/errgroup"
)

// DashboardStats is the placement office overview.
type DashboardStats struct {
	ActiveCompanies         int            `json:"active_companies"`
	TotalCompanies          int            `json:"total_companies"`
	TotalStudents           int            `json:"total_students"`
	PlacedStudents          int            `json:"placed_students"`
	TotalApplications       int            `json:"total_applications"`
	ApplicationsByStatus    map[string]int `json:"applications_by_status"`
	PlacementRatePercentage float64        `json:"placement_rate_percentage"`
}

// GetDashboardStats gathers the dashboard counters concurrently.
func (db *DB) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{ApplicationsByStatus: make(map[string]int)}
	for _, s := range types.ApplicationStatuses() {
		stats.ApplicationsByStatus[string(s)] = 0
	}

	counters := []struct {
		name  string
		query string
		dest  *int
	}{
		{"active companies", `SELECT COUNT(*) FROM companies WHERE status = 'Active'`, &stats.ActiveCompanies},
		{"companies", `SELECT COUNT(*) FROM companies`, &stats.TotalCompanies},
		{"students", `SELECT COUNT(*) FROM students`, &stats.TotalStudents},
		{"placed students", `SELECT COUNT(*) FROM students WHERE placement_status = 'Placed'`, &stats.PlacedStudents},
		{"applications", `SELECT COUNT(*) FROM applications`, &stats.TotalApplications},
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			if err := db.pool.QueryRow(gCtx, c.query).Scan(c.dest); err != nil {
				return fmt.Errorf("failed to count %s: %w", c.name, err)
			}
			return nil
		})
	}

	byStatus := make(map[string]int)
	g.Go(func() error {
		rows, err := db.pool.Query(gCtx,
			`SELECT application_status, COUNT(*) FROM applications GROUP BY application_status`)
		if err != nil {
			return fmt.Errorf("failed to count applications by status: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				status string
				n      int
			)
			if err := rows.Scan(&status, &n); err != nil {
				return fmt.Errorf("failed to scan status count: %w", err)
			}
			byStatus[status] = n
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for status, n := range byStatus {
		stats.ApplicationsByStatus[status] = n
	}
	stats.PlacementRatePercentage = placementRate(stats.PlacedStudents, stats.TotalStudents)
	return stats, nil
}

func placementRate(placed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(placed)/float64(total)*10000+0.5)) / 100
}
