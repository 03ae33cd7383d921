// Package drafts persists tour editing sessions between requests and
// publishes finished drafts as project hotspots.
package drafts

import (
	"context"
	"time"

	"github.com/ambi360/ambi360-backend/internal/tours/scenegraph"
)

// Draft is a stored editing session.
type Draft struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"project_id,omitempty"`
	CreatedBy string              `json:"created_by,omitempty"`
	Session   scenegraph.Snapshot `json:"session"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Store keeps drafts until they expire. Load and Delete return
// domain.ErrNotFound for unknown or expired drafts.
type Store interface {
	Load(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Draft, error)
}
