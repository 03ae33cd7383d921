package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

// ProgressRepository is the Postgres backed progress.Store.
type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) FindActiveHotspot(ctx context.Context, projectID, hotspotID string) (*domain.Hotspot, error) {
	query := `SELECT` + hotspotColumns + `
		FROM hotspots
		WHERE id = $1 AND project_id = $2 AND is_active = TRUE`

	h, err := scanHotspot(r.db.QueryRowContext(ctx, query, hotspotID, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// CountPriorUnlocks counts the session's unlocks in the project whose hotspot
// has a lower unlock order.
func (r *ProgressRepository) CountPriorUnlocks(ctx context.Context, sessionID, projectID string, belowOrder int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_progress up
		JOIN hotspots h ON up.hotspot_id = h.id
		WHERE up.user_session = $1 AND up.project_id = $2 AND h.unlock_order < $3
	`

	var n int
	if err := r.db.QueryRowContext(ctx, query, sessionID, projectID, belowOrder).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertProgress records an unlock; a repeated unlock is ignored and reported
// as false.
func (r *ProgressRepository) InsertProgress(ctx context.Context, sessionID, projectID, hotspotID string) (bool, error) {
	query := `
		INSERT INTO user_progress (user_session, project_id, hotspot_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_session, project_id, hotspot_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, sessionID, projectID, hotspotID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProgressRepository) ListProgress(ctx context.Context, sessionID, projectID string) ([]domain.ProgressEntry, error) {
	query := `
		SELECT
			h.id::text, h.name, h.description, h.hotspot_type, h.unlock_order,
			h.requires_previous, up.unlocked_at
		FROM hotspots h
		LEFT JOIN user_progress up ON h.id = up.hotspot_id
			AND up.user_session = $1 AND up.project_id = $2
		WHERE h.project_id = $2 AND h.is_active = TRUE
		ORDER BY h.unlock_order ASC, h.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProgressEntry, 0, 16)
	for rows.Next() {
		var e domain.ProgressEntry
		var unlockedAt sql.NullTime
		if err := rows.Scan(
			&e.HotspotID,
			&e.Name,
			&e.Description,
			&e.HotspotType,
			&e.UnlockOrder,
			&e.RequiresPrevious,
			&unlockedAt,
		); err != nil {
			return nil, err
		}
		if unlockedAt.Valid {
			e.Unlocked = true
			e.UnlockedAt = &unlockedAt.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ProgressRepository) DeleteProgress(ctx context.Context, sessionID, projectID string) (int64, error) {
	query := `DELETE FROM user_progress WHERE project_id = $1 AND user_session = $2`

	result, err := r.db.ExecContext(ctx, query, projectID, sessionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
