package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ambi360/ambi360-backend/internal/storage/postgres"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const hotspotColumns = `
	id::text, project_id::text, parent_hotspot_id::text, name, description,
	pitch, yaw, hotspot_type, icon_type, target_image_url,
	unlock_order, requires_previous, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotspot(row rowScanner) (*domain.Hotspot, error) {
	var h domain.Hotspot
	var parentID, target sql.NullString
	err := row.Scan(
		&h.ID,
		&h.ProjectID,
		&parentID,
		&h.Name,
		&h.Description,
		&h.Pitch,
		&h.Yaw,
		&h.HotspotType,
		&h.IconType,
		&target,
		&h.UnlockOrder,
		&h.RequiresPrevious,
		&h.IsActive,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		h.ParentHotspotID = &parentID.String
	}
	if target.Valid {
		h.TargetImageURL = &target.String
	}
	return &h, nil
}

type HotspotRepository struct {
	db *sql.DB
}

func NewHotspotRepository(db *sql.DB) *HotspotRepository {
	return &HotspotRepository{db: db}
}

// ListActiveByProject returns the project's active hotspots ordered by
// unlock order, then creation time.
func (r *HotspotRepository) ListActiveByProject(ctx context.Context, projectID string) ([]domain.Hotspot, error) {
	query := `SELECT` + hotspotColumns + `
		FROM hotspots
		WHERE project_id = $1 AND is_active = TRUE
		ORDER BY unlock_order ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Hotspot, 0, 16)
	for rows.Next() {
		h, err := scanHotspot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// GetActive returns an active hotspot by id.
func (r *HotspotRepository) GetActive(ctx context.Context, id string) (*domain.Hotspot, error) {
	query := `SELECT` + hotspotColumns + `
		FROM hotspots
		WHERE id = $1 AND is_active = TRUE`

	h, err := scanHotspot(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts h and fills its id and timestamps.
func (r *HotspotRepository) Create(ctx context.Context, h *domain.Hotspot) error {
	query := `
		INSERT INTO hotspots
		(project_id, parent_hotspot_id, name, description, pitch, yaw,
		 hotspot_type, icon_type, target_image_url, unlock_order, requires_previous)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text, is_active, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		h.ProjectID,
		h.ParentHotspotID,
		h.Name,
		h.Description,
		h.Pitch,
		h.Yaw,
		h.HotspotType,
		h.IconType,
		h.TargetImageURL,
		h.UnlockOrder,
		h.RequiresPrevious,
	).Scan(&h.ID, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert hotspot: %w", err)
	}
	return nil
}

// CreateMany inserts hotspots in one transaction. Parents must precede their
// children; parent references are remapped to the ids the database assigns.
func (r *HotspotRepository) CreateMany(ctx context.Context, hotspots []domain.Hotspot) ([]domain.Hotspot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO hotspots
		(project_id, parent_hotspot_id, name, description, pitch, yaw,
		 hotspot_type, icon_type, target_image_url, unlock_order, requires_previous)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text, is_active, created_at, updated_at
	`

	ids := make(map[string]string, len(hotspots))
	out := make([]domain.Hotspot, 0, len(hotspots))
	for _, h := range hotspots {
		if pid := h.ParentID(); pid != "" {
			mapped, ok := ids[pid]
			if !ok {
				return nil, fmt.Errorf("parent %q of %q: %w", pid, h.ID, domain.ErrNotFound)
			}
			h.ParentHotspotID = &mapped
		}
		draftID := h.ID
		err := tx.QueryRowContext(ctx, query,
			h.ProjectID,
			h.ParentHotspotID,
			h.Name,
			h.Description,
			h.Pitch,
			h.Yaw,
			h.HotspotType,
			h.IconType,
			h.TargetImageURL,
			h.UnlockOrder,
			h.RequiresPrevious,
		).Scan(&h.ID, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert hotspot %q: %w", draftID, err)
		}
		ids[draftID] = h.ID
		out = append(out, h)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// Save writes every mutable column of an active hotspot.
func (r *HotspotRepository) Save(ctx context.Context, h *domain.Hotspot) error {
	query := `
		UPDATE hotspots
		SET parent_hotspot_id = $2, name = $3, description = $4, pitch = $5, yaw = $6,
		    hotspot_type = $7, icon_type = $8, target_image_url = $9,
		    unlock_order = $10, requires_previous = $11, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		h.ID,
		h.ParentHotspotID,
		h.Name,
		h.Description,
		h.Pitch,
		h.Yaw,
		h.HotspotType,
		h.IconType,
		h.TargetImageURL,
		h.UnlockOrder,
		h.RequiresPrevious,
	).Scan(&h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update hotspot: %w", err)
	}
	return nil
}

// SoftDelete deactivates a hotspot. Its children keep pointing at it and are
// shown on the root scene until they are moved.
func (r *HotspotRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE hotspots SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}
