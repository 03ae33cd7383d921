package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ambi360/ambi360-backend/internal/admin/domain"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Counts returns the number of active projects, hotspots and users.
func (r *StatsRepository) Counts(ctx context.Context) (projects, hotspots, users int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM hotspots WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE)
	`
	err = r.db.QueryRowContext(ctx, query).Scan(&projects, &hotspots, &users)
	return projects, hotspots, users, err
}

// TopProjects ranks active projects by visits over the last days.
func (r *StatsRepository) TopProjects(ctx context.Context, days, limit int) ([]domain.ProjectAccess, error) {
	query := `
		SELECT p.id::text, p.name, p.title,
			COUNT(al.id) AS accesses,
			COUNT(DISTINCT al.user_session) AS unique_visitors
		FROM projects p
		JOIN access_logs al ON al.project_id = p.id
		WHERE p.is_active = TRUE
			AND al.accessed_at >= NOW() - make_interval(days => $1::int)
		GROUP BY p.id, p.name, p.title
		ORDER BY accesses DESC, p.name ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, days, limit)
	if err != nil {
		return nil, fmt.Errorf("query top projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProjectAccess, 0, limit)
	for rows.Next() {
		var pa domain.ProjectAccess
		if err := rows.Scan(&pa.ProjectID, &pa.Name, &pa.Title, &pa.Accesses, &pa.UniqueVisitors); err != nil {
			return nil, err
		}
		out = append(out, pa)
	}
	return out, rows.Err()
}

// DailyAccess returns one row per day for the last days, today included,
// with zero counts for days without visits.
func (r *StatsRepository) DailyAccess(ctx context.Context, days int) ([]domain.DailyAccess, error) {
	query := `
		SELECT to_char(d, 'YYYY-MM-DD'), COUNT(al.id)
		FROM generate_series(CURRENT_DATE - ($1::int - 1), CURRENT_DATE, INTERVAL '1 day') AS d
		LEFT JOIN access_logs al ON al.accessed_at::date = d::date
		GROUP BY d
		ORDER BY d
	`

	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("query daily access: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DailyAccess, 0, days)
	for rows.Next() {
		var da domain.DailyAccess
		if err := rows.Scan(&da.Day, &da.Count); err != nil {
			return nil, err
		}
		out = append(out, da)
	}
	return out, rows.Err()
}
