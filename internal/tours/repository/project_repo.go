package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const projectSummary = `
	SELECT
		p.id::text, p.name, p.title, p.description, p.main_image_url, p.logo_url,
		p.is_public, p.unlock_order, p.password_hash IS NOT NULL, p.created_by::text,
		p.is_active, p.created_at, p.updated_at,
		COUNT(h.id) AS total_hotspots,
		COUNT(h.id) FILTER (WHERE h.hotspot_type = 'door') AS door_hotspots
	FROM projects p
	LEFT JOIN hotspots h ON h.project_id = p.id AND h.is_active = TRUE`

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var logo, createdBy sql.NullString
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Title,
		&p.Description,
		&p.MainImageURL,
		&logo,
		&p.IsPublic,
		&p.UnlockOrder,
		&p.HasPassword,
		&createdBy,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.TotalHotspots,
		&p.DoorHotspots,
	)
	if err != nil {
		return nil, err
	}
	if logo.Valid {
		p.LogoURL = &logo.String
	}
	if createdBy.Valid {
		p.CreatedBy = &createdBy.String
	}
	return &p, nil
}

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ListPublic returns public active projects with their hotspot counts.
func (r *ProjectRepository) ListPublic(ctx context.Context) ([]domain.Project, error) {
	return r.list(ctx, projectSummary+`
		WHERE p.is_public = TRUE AND p.is_active = TRUE
		GROUP BY p.id
		ORDER BY p.unlock_order ASC, p.created_at DESC`)
}

// ListAll returns every project, inactive ones included, newest first.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	return r.list(ctx, projectSummary+`
		GROUP BY p.id
		ORDER BY p.created_at DESC`)
}

func (r *ProjectRepository) list(ctx context.Context, query string) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetActive returns an active project by id.
func (r *ProjectRepository) GetActive(ctx context.Context, id string) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, projectSummary+`
		WHERE p.id = $1 AND p.is_active = TRUE
		GROUP BY p.id`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a project. passwordHash may be nil. A duplicate name yields
// domain.ErrConflict.
func (r *ProjectRepository) Create(ctx context.Context, np domain.NewProject, passwordHash *string) (string, error) {
	query := `
		INSERT INTO projects
		(name, title, description, main_image_url, logo_url, password_hash, is_public, unlock_order, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id::text
	`

	isPublic := true
	if np.IsPublic != nil {
		isPublic = *np.IsPublic
	}

	var id string
	err := r.db.QueryRowContext(ctx, query,
		np.Name,
		np.Title,
		np.Description,
		np.MainImageURL,
		np.LogoURL,
		passwordHash,
		isPublic,
		np.UnlockOrder,
		np.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert project: %w", translate(err))
	}
	return id, nil
}

// Update applies the non-nil fields of upd. A non-nil empty PasswordHash
// removes the password gate.
func (r *ProjectRepository) Update(ctx context.Context, id string, upd domain.ProjectUpdate) error {
	sets := make([]string, 0, 8)
	args := []any{id}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.MainImageURL != nil {
		set("main_image_url", *upd.MainImageURL)
	}
	if upd.LogoURL != nil {
		set("logo_url", domain.StringPtr(*upd.LogoURL))
	}
	if upd.IsPublic != nil {
		set("is_public", *upd.IsPublic)
	}
	if upd.UnlockOrder != nil {
		set("unlock_order", *upd.UnlockOrder)
	}
	if upd.PasswordHash != nil {
		set("password_hash", domain.StringPtr(*upd.PasswordHash))
	}
	if len(sets) == 0 {
		return domain.ErrNoFields
	}

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") +
		`, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", translate(err))
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

func (r *ProjectRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE projects SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

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

// PasswordHash returns the bcrypt hash guarding an active project, or ""
// when the project is open.
func (r *ProjectRepository) PasswordHash(ctx context.Context, id string) (string, error) {
	query := `SELECT password_hash FROM projects WHERE id = $1 AND is_active = TRUE`

	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}
