package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

type AccessLogRepository struct {
	db *sql.DB
}

func NewAccessLogRepository(db *sql.DB) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

func (r *AccessLogRepository) Record(ctx context.Context, l domain.AccessLog) error {
	query := `
		INSERT INTO access_logs (project_id, user_session, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, l.ProjectID, l.UserSession, l.IPAddress, l.UserAgent)
	return err
}

// List pages through access logs newest first. An empty projectID lists
// every project. It also returns the total number of matching rows.
func (r *AccessLogRepository) List(ctx context.Context, projectID string, limit, offset int) ([]domain.AccessLog, int, error) {
	var filter any
	if projectID != "" {
		filter = projectID
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM access_logs WHERE $1::uuid IS NULL OR project_id = $1::uuid`
	if err := r.db.QueryRowContext(ctx, countQuery, filter).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT al.id, al.project_id::text, p.name, al.user_session, al.ip_address, al.user_agent, al.accessed_at
		FROM access_logs al
		JOIN projects p ON p.id = al.project_id
		WHERE $1::uuid IS NULL OR al.project_id = $1::uuid
		ORDER BY al.accessed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.AccessLog, 0, limit)
	for rows.Next() {
		var l domain.AccessLog
		var session, ip, agent sql.NullString
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.ProjectName, &session, &ip, &agent, &l.AccessedAt); err != nil {
			return nil, 0, err
		}
		l.UserSession = session.String
		l.IPAddress = ip.String
		l.UserAgent = agent.String
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// PurgeOlderThan deletes access logs recorded before cutoff.
func (r *AccessLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM access_logs WHERE accessed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
